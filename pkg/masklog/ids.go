package masklog

import (
	"crypto/rand"
	"encoding/hex"
	mrand "math/rand/v2"
)

// Correlation id sizes in random bytes. Ids are lowercase hex, so they are
// twice as many characters long.
const (
	SessionIDBytes     = 16
	TransactionIDBytes = 8
	RequestIDBytes     = 8
)

// IDGenerator returns n random bytes encoded as lowercase hex.
type IDGenerator func(n int) string

// RandomHex is the default IDGenerator, backed by crypto/rand.
func RandomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		// unreachable on supported platforms; keep ids unique regardless
		for i := range b {
			b[i] = byte(mrand.Uint32())
		}
	}
	return hex.EncodeToString(b)
}

package backends

import "time"

// Backend is a byte sink for formatted records. Each Write call carries one
// complete line.
type Backend interface {
	// Write writes a log entry to the backend
	Write(entry []byte) (int, error)

	// Flush ensures all buffered data is written
	Flush() error

	// Close closes the backend
	Close() error

	// SupportsAtomic returns whether a single Write is never interleaved
	// with writes from other processes
	SupportsAtomic() bool

	// Stats returns backend statistics
	Stats() BackendStats
}

// BackendStats represents statistics for a backend
type BackendStats struct {
	Name         string
	WriteCount   uint64
	BytesWritten uint64
	ErrorCount   uint64
	LastError    time.Time
}

// counters is embedded by backends to keep BackendStats.
type counters struct {
	writes  uint64
	bytes   uint64
	errors  uint64
	lastErr time.Time
}

func (c *counters) record(n int, err error) {
	if err != nil {
		c.errors++
		c.lastErr = time.Now()
		return
	}
	c.writes++
	if n > 0 {
		c.bytes += uint64(n)
	}
}

func (c *counters) stats(name string) BackendStats {
	return BackendStats{
		Name:         name,
		WriteCount:   c.writes,
		BytesWritten: c.bytes,
		ErrorCount:   c.errors,
		LastError:    c.lastErr,
	}
}

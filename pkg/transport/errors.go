package transport

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// SinkError describes a record that could not be delivered.
type SinkError struct {
	Operation   string // "format" or "write"
	Destination string // backend name
	Message     string
	Err         error
	Timestamp   time.Time
}

// Error implements the error interface
func (e SinkError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

// Unwrap returns the underlying error
func (e SinkError) Unwrap() error {
	return e.Err
}

// ErrorHandler receives delivery failures. Handlers must not log through
// the transport that failed.
type ErrorHandler func(err SinkError)

// SilentErrorHandler discards all errors (used in tests)
var SilentErrorHandler ErrorHandler = func(SinkError) {}

var diagnostics = zerolog.New(os.Stderr).With().Timestamp().Str("component", "masklog").Logger()

// StderrErrorHandler writes a structured diagnostic line to stderr.
var StderrErrorHandler ErrorHandler = func(e SinkError) {
	diagnostics.Error().
		Err(e.Err).
		Str("operation", e.Operation).
		Str("destination", e.Destination).
		Time("at", e.Timestamp).
		Msg(e.Message)
}

// DefaultErrorHandler returns the silent handler under go test and the
// stderr handler otherwise.
func DefaultErrorHandler() ErrorHandler {
	if isTestMode() {
		return SilentErrorHandler
	}
	return StderrErrorHandler
}

// isTestMode detects if we're running under go test
func isTestMode() bool {
	for _, arg := range os.Args {
		if strings.HasPrefix(arg, "-test.") {
			return true
		}
	}
	if exe, err := os.Executable(); err == nil {
		if strings.HasSuffix(filepath.Base(exe), ".test") {
			return true
		}
	}
	return false
}

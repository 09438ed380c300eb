package backends

import (
	"io"
	"os"
	"sync"
)

// Stream writes entries to an io.Writer such as stdout or stderr.
type Stream struct {
	mu   sync.Mutex
	name string
	w    io.Writer
	counters
}

// NewStream wraps w. name identifies the stream in stats and error reports.
func NewStream(name string, w io.Writer) *Stream {
	return &Stream{name: name, w: w}
}

// Stdout returns a stream backend for the process's standard output.
func Stdout() *Stream {
	return NewStream("stdout", os.Stdout)
}

// Stderr returns a stream backend for the process's standard error.
func Stderr() *Stream {
	return NewStream("stderr", os.Stderr)
}

// Write writes entry in a single call to the underlying writer.
func (s *Stream) Write(entry []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.w.Write(entry)
	s.record(n, err)
	return n, err
}

// Flush flushes the writer when it buffers (for example a *bufio.Writer).
func (s *Stream) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f, ok := s.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// Close leaves the underlying writer open; streams are owned by the caller.
func (s *Stream) Close() error {
	return s.Flush()
}

// SupportsAtomic returns false: other writers may share the stream.
func (s *Stream) SupportsAtomic() bool {
	return false
}

// Stats returns backend statistics
func (s *Stream) Stats() BackendStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats(s.name)
}

// Name returns the stream name.
func (s *Stream) Name() string {
	return s.name
}

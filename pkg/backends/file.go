package backends

import (
	"bufio"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"
)

// DefaultBufferSize for file operations
const DefaultBufferSize = 32 * 1024

// File appends entries to a file shared by several processes. Every write
// takes an advisory flock on the file and flushes before releasing it, so
// lines from different processes never interleave. There is no rotation.
type File struct {
	mu     sync.Mutex
	file   *os.File
	writer *bufio.Writer
	lock   *flock.Flock
	path   string
	size   int64
	closed bool
	counters
}

// NewFile opens (creating if needed) the file at path for appending.
func NewFile(path string) (*File, error) {
	cleanPath := filepath.Clean(path)

	// #nosec G301 - log directories need to be accessible by other processes
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0755); err != nil {
		return nil, errors.Wrap(err, "create directory")
	}

	file, err := os.OpenFile(cleanPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644) // #nosec G302 - log files need to be readable
	if err != nil {
		return nil, errors.Wrap(err, "open file")
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, errors.Wrap(err, "stat file")
	}

	return &File{
		file:   file,
		writer: bufio.NewWriterSize(file, DefaultBufferSize),
		lock:   flock.New(cleanPath),
		path:   cleanPath,
		size:   info.Size(),
	}, nil
}

// Write appends entry under the file lock.
func (fb *File) Write(entry []byte) (int, error) {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	n, err := fb.writeLocked(entry)
	fb.record(n, err)
	return n, err
}

func (fb *File) writeLocked(entry []byte) (int, error) {
	if fb.closed {
		return 0, errors.Errorf("file backend %s is closed", fb.path)
	}

	if err := fb.lock.Lock(); err != nil {
		return 0, errors.Wrap(err, "acquire lock")
	}
	defer func() {
		_ = fb.lock.Unlock() // Best effort unlock
	}()

	n, err := fb.writer.Write(entry)
	if err != nil {
		return n, errors.Wrap(err, "write entry")
	}
	if err := fb.writer.Flush(); err != nil {
		return n, errors.Wrap(err, "flush entry")
	}

	fb.size += int64(n)
	return n, nil
}

// Flush flushes buffered data to the file
func (fb *File) Flush() error {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	if fb.closed {
		return nil
	}
	return fb.writer.Flush()
}

// Sync flushes and fsyncs the file.
func (fb *File) Sync() error {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	if fb.closed {
		return nil
	}
	if err := fb.writer.Flush(); err != nil {
		return err
	}
	return fb.file.Sync()
}

// Close flushes and closes the file. Closing twice is a no-op.
func (fb *File) Close() error {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	if fb.closed {
		return nil
	}
	fb.closed = true

	var first error
	if err := fb.writer.Flush(); err != nil {
		first = errors.Wrap(err, "flush")
	}
	if err := fb.lock.Close(); err != nil && first == nil {
		first = errors.Wrap(err, "release lock")
	}
	if err := fb.file.Close(); err != nil && first == nil {
		first = errors.Wrap(err, "close file")
	}
	return first
}

// SupportsAtomic returns true as file backend supports atomic writes via locking
func (fb *File) SupportsAtomic() bool {
	return true
}

// Size returns the current file size
func (fb *File) Size() int64 {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.size
}

// Path returns the file path
func (fb *File) Path() string {
	return fb.path
}

// Stats returns backend statistics
func (fb *File) Stats() BackendStats {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.stats(fb.path)
}

package transport

import (
	"sync"

	"github.com/wachat/masklog/pkg/types"
)

// Entry is one record captured by a Recorder, with the method that
// received it.
type Entry struct {
	Method types.Level
	Record types.Record
}

// Recorder keeps records in memory. It implements every optional
// capability and is safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Info(rec types.Record)  { r.add(types.LevelInfo, rec) }
func (r *Recorder) Debug(rec types.Record) { r.add(types.LevelDebug, rec) }
func (r *Recorder) Warn(rec types.Record)  { r.add(types.LevelWarn, rec) }
func (r *Recorder) Error(rec types.Record) { r.add(types.LevelError, rec) }

func (r *Recorder) add(method types.Level, rec types.Record) {
	r.mu.Lock()
	r.entries = append(r.entries, Entry{Method: method, Record: rec.Clone()})
	r.mu.Unlock()
}

// Entries returns a copy of everything recorded so far.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

// Records returns the recorded records without their methods.
func (r *Recorder) Records() []types.Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]types.Record, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Record
	}
	return out
}

// Last returns the most recent record.
func (r *Recorder) Last() (types.Record, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.entries) == 0 {
		return types.Record{}, false
	}
	return r.entries[len(r.entries)-1].Record, true
}

// Reset discards all recorded entries.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.entries = nil
	r.mu.Unlock()
}

package transport

import "github.com/wachat/masklog/pkg/types"

type multi struct {
	transports []Transport
}

// Multi fans every record out to all transports. Each child gets its own
// capability fallback, so a child without an error sink receives error
// records through Info.
func Multi(transports ...Transport) Transport {
	ts := make([]Transport, 0, len(transports))
	for _, t := range transports {
		if t != nil {
			ts = append(ts, t)
		}
	}
	return &multi{transports: ts}
}

func (m *multi) Info(rec types.Record)  { m.emit(types.LevelInfo, rec) }
func (m *multi) Debug(rec types.Record) { m.emit(types.LevelDebug, rec) }
func (m *multi) Warn(rec types.Record)  { m.emit(types.LevelWarn, rec) }
func (m *multi) Error(rec types.Record) { m.emit(types.LevelError, rec) }

func (m *multi) emit(level types.Level, rec types.Record) {
	for _, t := range m.transports {
		Emit(t, level, rec.Clone())
	}
}

// Close closes every child, returning the first error.
func (m *multi) Close() error {
	var first error
	for _, t := range m.transports {
		if err := Close(t); err != nil && first == nil {
			first = err
		}
	}
	return first
}

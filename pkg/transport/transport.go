// Package transport delivers finished log records to their destinations.
//
// A Transport must implement Info and Debug. Warn and Error are optional
// capabilities (Warner, ErrorSink); Emit falls back to Info when a
// transport lacks them, so a minimal transport still receives every record.
package transport

import (
	"io"

	"github.com/wachat/masklog/pkg/types"
)

// Transport is the required sink surface.
type Transport interface {
	Info(rec types.Record)
	Debug(rec types.Record)
}

// Warner is implemented by transports with a dedicated warn sink.
type Warner interface {
	Warn(rec types.Record)
}

// ErrorSink is implemented by transports with a dedicated error sink.
type ErrorSink interface {
	Error(rec types.Record)
}

// Emit routes rec to the method matching level, falling back to Info for
// warn and error records when t does not implement Warner or ErrorSink.
func Emit(t Transport, level types.Level, rec types.Record) {
	switch level {
	case types.LevelDebug:
		t.Debug(rec)
	case types.LevelWarn:
		if w, ok := t.(Warner); ok {
			w.Warn(rec)
			return
		}
		t.Info(rec)
	case types.LevelError:
		if e, ok := t.(ErrorSink); ok {
			e.Error(rec)
			return
		}
		t.Info(rec)
	default:
		t.Info(rec)
	}
}

// Close closes t if it holds resources.
func Close(t Transport) error {
	if c, ok := t.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

package transport

import (
	"time"

	"github.com/wachat/masklog/pkg/backends"
	"github.com/wachat/masklog/pkg/formatters"
	"github.com/wachat/masklog/pkg/types"
)

// Writer formats records and writes them to backends: info, debug and warn
// to out, error to errOut. Failures go to the error handler and are never
// returned to the caller.
type Writer struct {
	formatter types.Formatter
	out       backends.Backend
	errOut    backends.Backend
	onError   ErrorHandler
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithFormatter replaces the default JSON formatter.
func WithFormatter(f types.Formatter) WriterOption {
	return func(w *Writer) {
		if f != nil {
			w.formatter = f
		}
	}
}

// WithErrorHandler sets the handler for format and write failures.
func WithErrorHandler(h ErrorHandler) WriterOption {
	return func(w *Writer) {
		if h != nil {
			w.onError = h
		}
	}
}

// NewWriter builds a writer transport. errOut may be nil, in which case
// error records go to out as well.
func NewWriter(out, errOut backends.Backend, opts ...WriterOption) *Writer {
	if errOut == nil {
		errOut = out
	}
	w := &Writer{
		formatter: formatters.NewJSONFormatter(),
		out:       out,
		errOut:    errOut,
		onError:   DefaultErrorHandler(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// NewConsole returns the default transport: JSON lines on stdout, errors on
// stderr.
func NewConsole(opts ...WriterOption) *Writer {
	return NewWriter(backends.Stdout(), backends.Stderr(), opts...)
}

// Info writes rec to the main backend.
func (w *Writer) Info(rec types.Record) { w.write(w.out, rec) }

// Debug writes rec to the main backend.
func (w *Writer) Debug(rec types.Record) { w.write(w.out, rec) }

// Warn writes rec to the main backend.
func (w *Writer) Warn(rec types.Record) { w.write(w.out, rec) }

// Error writes rec to the error backend.
func (w *Writer) Error(rec types.Record) { w.write(w.errOut, rec) }

func (w *Writer) write(b backends.Backend, rec types.Record) {
	data, err := w.formatter.Format(rec)
	if err != nil {
		w.onError(SinkError{
			Operation:   "format",
			Destination: b.Stats().Name,
			Message:     "failed to format record",
			Err:         err,
			Timestamp:   time.Now(),
		})
		return
	}

	if _, err := b.Write(data); err != nil {
		w.onError(SinkError{
			Operation:   "write",
			Destination: b.Stats().Name,
			Message:     "failed to write record",
			Err:         err,
			Timestamp:   time.Now(),
		})
	}
}

// Flush flushes both backends.
func (w *Writer) Flush() error {
	err := w.out.Flush()
	if w.errOut != w.out {
		if e := w.errOut.Flush(); err == nil {
			err = e
		}
	}
	return err
}

// Close closes both backends.
func (w *Writer) Close() error {
	err := w.out.Close()
	if w.errOut != w.out {
		if e := w.errOut.Close(); err == nil {
			err = e
		}
	}
	return err
}

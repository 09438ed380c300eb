package masklog

import (
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wachat/masklog/internal/metrics"
	"github.com/wachat/masklog/pkg/backends"
	"github.com/wachat/masklog/pkg/masking"
	"github.com/wachat/masklog/pkg/transport"
	"github.com/wachat/masklog/pkg/types"
)

// Option configures a Logger.
type Option func(*options) error

type options struct {
	service   string
	version   string
	hostname  string
	module    string
	transport transport.Transport
	masker    *masking.Service
	registry  prometheus.Registerer
	metrics   bool
	now       func() time.Time
	newID     IDGenerator
	minLevel  types.Level

	// used when the logger builds its own writer transport
	out, errOut backends.Backend
	writerOpts  []transport.WriterOption
	onSinkError transport.ErrorHandler
}

func defaultOptions() *options {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	return &options{
		hostname: host,
		now:      time.Now,
		newID:    RandomHex,
		minLevel: types.LevelDebug,
	}
}

// WithService sets the service name stamped on every record.
func WithService(name string) Option {
	return func(o *options) error {
		o.service = name
		return nil
	}
}

// WithVersion sets the service version.
func WithVersion(version string) Option {
	return func(o *options) error {
		o.version = version
		return nil
	}
}

// WithHostname overrides the hostname taken from the OS.
func WithHostname(host string) Option {
	return func(o *options) error {
		if strings.TrimSpace(host) == "" {
			return errors.New("hostname cannot be empty")
		}
		o.hostname = host
		return nil
	}
}

// WithModule sets the module used by Init when none is given.
func WithModule(module string) Option {
	return func(o *options) error {
		o.module = module
		return nil
	}
}

// WithTransport sets the record sink. The default is transport.NewConsole.
func WithTransport(t transport.Transport) Option {
	return func(o *options) error {
		if t == nil {
			return errors.New("transport cannot be nil")
		}
		o.transport = t
		return nil
	}
}

// WithMasker sets the masking service. The default is
// masking.DefaultService.
func WithMasker(s *masking.Service) Option {
	return func(o *options) error {
		if s == nil {
			return errors.New("masking service cannot be nil")
		}
		o.masker = s
		return nil
	}
}

// WithMetrics enables Prometheus counters on reg. A nil reg uses the
// default registerer.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) error {
		o.metrics = true
		o.registry = reg
		return nil
	}
}

// WithClock replaces time.Now for timestamps and response times.
func WithClock(now func() time.Time) Option {
	return func(o *options) error {
		if now == nil {
			return errors.New("clock cannot be nil")
		}
		o.now = now
		return nil
	}
}

// WithIDGenerator replaces the random hex id generator.
func WithIDGenerator(gen IDGenerator) Option {
	return func(o *options) error {
		if gen == nil {
			return errors.New("id generator cannot be nil")
		}
		o.newID = gen
		return nil
	}
}

// WithLevel drops detail records below level. Summaries always emit.
func WithLevel(level types.Level) Option {
	return func(o *options) error {
		switch level {
		case types.LevelDebug, types.LevelInfo, types.LevelWarn, types.LevelError:
			o.minLevel = level
			return nil
		default:
			return errors.Errorf("invalid level: %q", level)
		}
	}
}

// WithErrorHandler sets the handler for sink failures of the writer
// transport the logger builds. It has no effect together with WithTransport.
func WithErrorHandler(h transport.ErrorHandler) Option {
	return func(o *options) error {
		if h == nil {
			return errors.New("error handler cannot be nil")
		}
		o.onSinkError = h
		return nil
	}
}

// withWriter has the logger build a writer transport over out and errOut.
func withWriter(out, errOut backends.Backend, opts ...transport.WriterOption) Option {
	return func(o *options) error {
		o.out, o.errOut = out, errOut
		o.writerOpts = append(o.writerOpts, opts...)
		return nil
	}
}

// build resolves defaults and wires metrics into the masker and the
// writer transport.
func (o *options) build() (*metrics.Collector, error) {
	var collector *metrics.Collector
	if o.metrics {
		c, err := metrics.NewCollector(o.registry)
		if err != nil {
			return nil, errors.Wrap(err, "failed to register metrics")
		}
		collector = c
	}

	if o.masker == nil {
		o.masker = masking.DefaultService()
	}
	if collector != nil {
		matcher := o.masker.Matcher()
		o.masker = o.masker.With(masking.WithObserver(func(maskingType string, outcome masking.Outcome) {
			if !matcher.Knows(maskingType) {
				maskingType = metrics.UnknownMaskingType
			}
			collector.TrackMask(maskingType, string(outcome))
		}))
	}

	if o.transport != nil {
		// WithTransport won over configured backends
		o.closeBackends()
		return collector, nil
	}

	handler := o.onSinkError
	if handler == nil {
		handler = transport.DefaultErrorHandler()
	}
	if collector != nil {
		base := handler
		handler = func(e transport.SinkError) {
			collector.TrackSinkError(e.Destination)
			base(e)
		}
	}
	writerOpts := append(o.writerOpts[:len(o.writerOpts):len(o.writerOpts)], transport.WithErrorHandler(handler))

	if o.out != nil {
		o.transport = transport.NewWriter(o.out, o.errOut, writerOpts...)
	} else {
		o.transport = transport.NewConsole(writerOpts...)
	}
	return collector, nil
}

func (o *options) closeBackends() {
	if o.out != nil {
		_ = o.out.Close()
	}
	if o.errOut != nil && o.errOut != o.out {
		_ = o.errOut.Close()
	}
}

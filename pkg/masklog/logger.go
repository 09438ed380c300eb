package masklog

import (
	"fmt"
	"reflect"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"github.com/wachat/masklog/internal/metrics"
	"github.com/wachat/masklog/pkg/masking"
	"github.com/wachat/masklog/pkg/sanitize"
	"github.com/wachat/masklog/pkg/transport"
	"github.com/wachat/masklog/pkg/types"
)

// TimestampLayout is the format of the timestamp field, always in UTC.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Logger accumulates a structured record over one unit of work and emits
// detail records for each Info/Debug/Warn/Error call and a summary record on
// Flush or FlushError.
//
// A Logger carries per-request state. Give each concurrent request its own
// Logger, typically via Fork from a process-wide template.
type Logger struct {
	mu      sync.Mutex
	rec     types.Record
	summary map[string]any
	start   time.Time
	started bool

	transport transport.Transport
	masker    *masking.Service
	metrics   *metrics.Collector
	now       func() time.Time
	newID     IDGenerator
	minLevel  types.Level
	module    string
}

// InitOptions seeds a unit of work. Empty ids are generated.
type InitOptions struct {
	SessionID     string
	TransactionID string
	UserID        string
	Module        string
}

// New creates a Logger. Without options it writes JSON lines to
// stdout/stderr and masks with the built-in rules.
func New(opts ...Option) (*Logger, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	collector, err := o.build()
	if err != nil {
		return nil, err
	}

	return &Logger{
		rec: types.Record{
			Service:  o.service,
			Version:  o.version,
			Hostname: o.hostname,
		},
		transport: o.transport,
		masker:    o.masker,
		metrics:   collector,
		now:       o.now,
		newID:     o.newID,
		minLevel:  o.minLevel,
		module:    o.module,
	}, nil
}

// Fork returns a fresh Logger with the same identity, transport and masker
// and no unit of work in progress.
func (l *Logger) Fork() *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	return &Logger{
		rec:       l.identity(),
		transport: l.transport,
		masker:    l.masker,
		metrics:   l.metrics,
		now:       l.now,
		newID:     l.newID,
		minLevel:  l.minLevel,
		module:    l.module,
	}
}

// Init starts a unit of work. The session and transaction ids are kept if
// already present, the request id is regenerated and the timer restarts.
func (l *Logger) Init(opts InitOptions) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch {
	case opts.SessionID != "":
		l.rec.SessionID = opts.SessionID
	case l.rec.SessionID == "":
		l.rec.SessionID = l.newID(SessionIDBytes)
	}
	switch {
	case opts.TransactionID != "":
		l.rec.TransactionID = opts.TransactionID
	case l.rec.TransactionID == "":
		l.rec.TransactionID = l.newID(TransactionIDBytes)
	}
	l.rec.RequestID = l.newID(RequestIDBytes)

	if opts.UserID != "" {
		l.rec.UserID = opts.UserID
	}
	switch {
	case opts.Module != "":
		l.rec.Module = opts.Module
	case l.rec.Module == "":
		l.rec.Module = l.module
	}

	l.start = l.now()
	l.started = true
	return l
}

// Info emits a detail record at info level.
func (l *Logger) Info(action LogAction, data any, rules ...masking.Rule) {
	l.detail(types.LevelInfo, action, data, rules)
}

// Debug emits a detail record at debug level.
func (l *Logger) Debug(action LogAction, data any, rules ...masking.Rule) {
	l.detail(types.LevelDebug, action, data, rules)
}

// Warn emits a detail record at warn level. Transports without a Warn
// method receive it through Info.
func (l *Logger) Warn(action LogAction, data any, rules ...masking.Rule) {
	l.detail(types.LevelWarn, action, data, rules)
}

// Error emits a detail record at error level. Transports without an Error
// method receive it through Info.
func (l *Logger) Error(action LogAction, data any, rules ...masking.Rule) {
	l.detail(types.LevelError, action, data, rules)
}

func (l *Logger) detail(level types.Level, action LogAction, data any, rules []masking.Rule) {
	if level.Severity() < l.minLevel.Severity() {
		l.mu.Lock()
		l.clearPerCall()
		l.mu.Unlock()
		return
	}

	msg := l.render(data, rules)

	l.mu.Lock()
	rec := l.rec.Clone()
	rec.Level = level
	rec.Type = types.TypeDetail
	rec.Action = action.Action
	rec.ActionDescription = action.Description
	rec.SubAction = action.SubAction
	rec.Message = msg
	rec.Timestamp = l.timestamp()
	l.clearPerCall()
	l.mu.Unlock()

	l.emit(level, rec)
}

// Flush emits the summary record for a successful unit of work and resets
// the logger to its identity fields. A zero code means "20000", an empty
// message means "Success".
func (l *Logger) Flush(code any, message string) {
	if message == "" {
		message = DefaultSuccessMessage
	}

	l.mu.Lock()
	rec := l.summaryRecord(types.LevelInfo)
	rec.ResultCode = normalizeResultCode(code, DefaultSuccessCode)
	rec.ResultMessage = message
	l.reset()
	l.mu.Unlock()

	l.emit(types.LevelInfo, rec)
}

// FlushError emits the summary record for a failed unit of work and resets
// the logger. The result code comes from a Coder in err's chain, defaulting
// to "50000". A resultMessage staged with SetSummaryLogAdditionalInfo takes
// precedence over err's message.
func (l *Logger) FlushError(err error) {
	l.mu.Lock()
	message := ""
	if staged, ok := l.summary[string(FieldResultMessage)]; ok {
		delete(l.summary, string(FieldResultMessage))
		message = str(staged)
	}
	if message == "" {
		message = errorMessage(err)
	}

	rec := l.summaryRecord(types.LevelError)
	rec.ResultCode = errorCode(err)
	rec.ResultMessage = message
	if stack := errorStack(err); stack != "" {
		rec.ErrorStack = stack
	}
	l.reset()
	l.mu.Unlock()

	l.emit(types.LevelError, rec)
}

// Update sets one record field. Unknown keys become custom fields.
func (l *Logger) Update(key Field, value any) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	setField(&l.rec, key, value)
	return l
}

// SetDependencyMetadata merges the non-zero parts of d into the next detail
// record.
func (l *Logger) SetDependencyMetadata(d Dependency) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	if d.Name != "" {
		l.rec.Dependency = d.Name
	}
	if d.ResponseTime > 0 {
		l.rec.ResponseTime = millis(d.ResponseTime)
	}
	if d.ResultCode != "" {
		l.rec.ResultCode = d.ResultCode
	}
	if d.ResultFlag != "" {
		l.rec.ResultFlag = d.ResultFlag
	}
	return l
}

// SetSummaryLogAdditionalInfo stages a field for the next summary record.
func (l *Logger) SetSummaryLogAdditionalInfo(key string, value any) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.summary == nil {
		l.summary = make(map[string]any)
	}
	l.summary[key] = value
	return l
}

// AddCustomField adds a top-level field kept until the next flush.
func (l *Logger) AddCustomField(key string, value any) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.rec.Fields == nil {
		l.rec.Fields = make(map[string]any)
	}
	l.rec.Fields[key] = value
	return l
}

// Record returns a copy of the accumulated record.
func (l *Logger) Record() types.Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rec.Clone()
}

// Close closes the transport if it holds resources.
func (l *Logger) Close() error {
	return transport.Close(l.transport)
}

// render turns a payload into the message string: sanitize, mask, encode.
func (l *Logger) render(data any, rules []masking.Rule) (msg string) {
	defer func() {
		if r := recover(); r != nil {
			msg = sanitize.UnserializableMarker
		}
	}()

	switch v := data.(type) {
	case nil:
		return "null"
	case string:
		return v
	}
	if !structured(data) {
		return fmt.Sprint(data)
	}

	// masking rewrites in place, so it only ever sees the scrubbed copy
	clean := sanitize.Scrub(data)
	if s, ok := clean.(string); ok {
		return s
	}
	if len(rules) > 0 {
		clean = l.masker.Mask(clean, rules)
	}
	b, err := json.Marshal(clean)
	if err != nil {
		return sanitize.UnserializableMarker
	}
	return string(b)
}

func structured(v any) bool {
	switch reflect.TypeOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct, reflect.Pointer, reflect.Interface:
		return true
	default:
		return false
	}
}

func (l *Logger) summaryRecord(level types.Level) types.Record {
	rec := l.rec.Clone()
	rec.Level = level
	rec.Type = types.TypeSummary
	rec.Timestamp = l.timestamp()

	var elapsed int64
	if l.started {
		elapsed = l.now().Sub(l.start).Milliseconds()
	}
	rec.ResponseTime = &elapsed

	if len(l.summary) > 0 {
		if rec.Fields == nil {
			rec.Fields = make(map[string]any, len(l.summary))
		}
		for k, v := range l.summary {
			rec.Fields[k] = v
		}
	}
	return rec
}

func (l *Logger) emit(level types.Level, rec types.Record) {
	// a panicking transport must not reach the caller
	defer func() { _ = recover() }()

	l.metrics.TrackRecord(string(level), string(rec.Type))
	transport.Emit(l.transport, level, rec)
}

func (l *Logger) timestamp() string {
	return l.now().UTC().Format(TimestampLayout)
}

func (l *Logger) identity() types.Record {
	return types.Record{
		Service:  l.rec.Service,
		Version:  l.rec.Version,
		Hostname: l.rec.Hostname,
	}
}

func (l *Logger) reset() {
	l.rec = l.identity()
	l.summary = nil
	l.start = time.Time{}
	l.started = false
}

func (l *Logger) clearPerCall() {
	r := &l.rec
	r.Level = ""
	r.Type = ""
	r.Action = ""
	r.ActionDescription = ""
	r.SubAction = ""
	r.Dependency = ""
	r.Message = ""
	r.Timestamp = ""
	r.ResponseTime = nil
	r.ResultCode = ""
	r.ResultMessage = ""
	r.ResultFlag = ""
	r.ErrorStack = ""
}

package types

import (
	"strings"

	json "github.com/goccy/go-json"
)

// Level is the severity of an emitted record.
type Level string

// Log levels understood by transports and formatters.
const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Severity orders levels for gating; unknown levels rank as info.
func (l Level) Severity() int {
	switch l {
	case LevelDebug:
		return 1
	case LevelWarn:
		return 3
	case LevelError:
		return 4
	default:
		return 2
	}
}

// ParseLevel converts a configuration string into a Level.
// Unrecognized names fall back to LevelDebug so nothing is silently dropped.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelDebug
	}
}

// RecordType distinguishes per-call detail records from the terminal summary.
type RecordType string

const (
	TypeDetail  RecordType = "detail"
	TypeSummary RecordType = "summary"
)

// Record is the structured log record accumulated over one unit of work and
// handed to transports. It marshals to a flat JSON object; entries in Fields
// are spread at the top level and win over the named fields.
type Record struct {
	// Identity
	Service  string
	Version  string
	Hostname string
	Module   string

	// Correlation
	SessionID     string
	TransactionID string
	RequestID     string
	UserID        string

	// Per call
	Level             Level
	Type              RecordType
	Action            string
	ActionDescription string
	SubAction         string
	Dependency        string
	Message           string
	Timestamp         string
	ResponseTime      *int64
	ResultCode        string
	ResultMessage     string
	ResultFlag        string
	ErrorStack        string

	// Custom fields and spread summary fields
	Fields map[string]any
}

// Clone returns a copy of r with its own Fields map.
func (r Record) Clone() Record {
	c := r
	if r.ResponseTime != nil {
		rt := *r.ResponseTime
		c.ResponseTime = &rt
	}
	if r.Fields != nil {
		c.Fields = make(map[string]any, len(r.Fields))
		for k, v := range r.Fields {
			c.Fields[k] = v
		}
	}
	return c
}

// Map flattens the record into the wire shape. Empty named fields are omitted.
func (r Record) Map() map[string]any {
	m := make(map[string]any, 24+len(r.Fields))
	put := func(key, value string) {
		if value != "" {
			m[key] = value
		}
	}

	put("service", r.Service)
	put("version", r.Version)
	put("hostname", r.Hostname)
	put("module", r.Module)
	put("sessionId", r.SessionID)
	put("transactionId", r.TransactionID)
	put("requestId", r.RequestID)
	put("userId", r.UserID)
	put("level", string(r.Level))
	put("type", string(r.Type))
	put("action", r.Action)
	put("actionDescription", r.ActionDescription)
	put("subAction", r.SubAction)
	put("dependency", r.Dependency)
	put("message", r.Message)
	put("timestamp", r.Timestamp)
	if r.ResponseTime != nil {
		m["responseTime"] = *r.ResponseTime
	}
	put("resultCode", r.ResultCode)
	put("resultMessage", r.ResultMessage)
	put("resultFlag", r.ResultFlag)
	put("errorStack", r.ErrorStack)

	for k, v := range r.Fields {
		m[k] = v
	}
	return m
}

// MarshalJSON implements json.Marshaler.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Map())
}

// Formatter turns a record into the bytes written by a backend.
type Formatter interface {
	Format(rec Record) ([]byte, error)
}

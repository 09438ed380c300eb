package formatters

import (
	json "github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/wachat/masklog/pkg/sanitize"
	"github.com/wachat/masklog/pkg/types"
)

// JSONFormatter formats records as line-delimited JSON objects.
type JSONFormatter struct {
	IncludeFields []string // Optional: specific fields to include
	ExcludeFields []string // Optional: fields to exclude
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Format encodes rec as one JSON object followed by a newline.
func (f *JSONFormatter) Format(rec types.Record) ([]byte, error) {
	entry := rec.Map()
	for k := range entry {
		if f.shouldExcludeField(k) {
			delete(entry, k)
		}
	}

	data, err := f.safeMarshal(entry)
	if err != nil {
		return nil, errors.Wrap(err, "encode record")
	}
	return append(data, '\n'), nil
}

// shouldExcludeField checks if a field should be excluded from output
func (f *JSONFormatter) shouldExcludeField(field string) bool {
	for _, excluded := range f.ExcludeFields {
		if field == excluded {
			return true
		}
	}

	if len(f.IncludeFields) > 0 {
		for _, included := range f.IncludeFields {
			if field == included {
				return false
			}
		}
		return true
	}

	return false
}

// WithIncludeFields sets fields to include in JSON output
func (f *JSONFormatter) WithIncludeFields(fields ...string) *JSONFormatter {
	f.IncludeFields = fields
	return f
}

// WithExcludeFields sets fields to exclude from JSON output
func (f *JSONFormatter) WithExcludeFields(fields ...string) *JSONFormatter {
	f.ExcludeFields = fields
	return f
}

// safeMarshal retries with a sanitized copy when custom fields hold values
// the encoder rejects (cycles, channels, NaN, failing marshalers).
func (f *JSONFormatter) safeMarshal(entry map[string]any) ([]byte, error) {
	result, err := json.Marshal(entry)
	if err == nil {
		return result, nil
	}
	return json.Marshal(sanitize.Scrub(entry))
}

package formatters

import (
	"fmt"
	"sort"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/wachat/masklog/pkg/types"
)

// TextFormatter formats records as human-readable lines:
//
//	[timestamp] [LEVEL] type action message key=value ...
type TextFormatter struct {
	Options FormatOptions
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter() *TextFormatter {
	return &TextFormatter{
		Options: DefaultFormatOptions(),
	}
}

// headline fields are rendered positionally and left out of key=value pairs.
var headline = []string{"timestamp", "level", "type", "action", "message"}

// Format formats a record as one line of text.
func (f *TextFormatter) Format(rec types.Record) ([]byte, error) {
	var result strings.Builder

	if f.Options.IncludeTime && rec.Timestamp != "" {
		result.WriteString("[")
		result.WriteString(rec.Timestamp)
		result.WriteString("] ")
	}

	if f.Options.IncludeLevel {
		result.WriteString("[")
		result.WriteString(levelLabel(rec.Level, f.Options.LevelFormat))
		result.WriteString("] ")
	}

	for _, part := range []string{string(rec.Type), rec.Action} {
		if part != "" {
			result.WriteString(part)
			result.WriteString(" ")
		}
	}
	result.WriteString(rec.Message)

	if fields := f.FormatFields(rec); fields != "" {
		result.WriteString(" ")
		result.WriteString(fields)
	}

	result.WriteString("\n")
	return []byte(result.String()), nil
}

// FormatFields renders every field except the headline ones as sorted
// key=value pairs.
func (f *TextFormatter) FormatFields(rec types.Record) string {
	m := rec.Map()
	for _, k := range headline {
		delete(m, k)
	}
	if len(m) == 0 {
		return ""
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sep := f.Options.FieldSeparator
	if sep == "" {
		sep = " "
	}
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+textValue(m[k]))
	}
	return strings.Join(parts, sep)
}

func textValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return "null"
	case map[string]any, []any:
		if b, err := json.Marshal(t); err == nil {
			return string(b)
		}
	}
	return fmt.Sprintf("%v", v)
}

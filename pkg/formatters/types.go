package formatters

import (
	"strings"

	"github.com/wachat/masklog/pkg/types"
)

// FormatOptions controls the text output format.
type FormatOptions struct {
	IncludeLevel   bool
	IncludeTime    bool
	LevelFormat    LevelFormat
	FieldSeparator string
}

// LevelFormat defines level format options
type LevelFormat int

const (
	// LevelFormatNameUpper formats levels as uppercase names (INFO)
	LevelFormatNameUpper LevelFormat = iota
	// LevelFormatNameLower formats levels as lowercase names (info)
	LevelFormatNameLower
	// LevelFormatSymbol formats levels as single-character symbols (I)
	LevelFormatSymbol
)

// DefaultFormatOptions returns default formatting options
func DefaultFormatOptions() FormatOptions {
	return FormatOptions{
		IncludeLevel:   true,
		IncludeTime:    true,
		LevelFormat:    LevelFormatNameUpper,
		FieldSeparator: " ",
	}
}

func levelLabel(level types.Level, format LevelFormat) string {
	name := string(level)
	if name == "" {
		name = "log"
	}
	switch format {
	case LevelFormatNameLower:
		return name
	case LevelFormatSymbol:
		return strings.ToUpper(name[:1])
	default:
		return strings.ToUpper(name)
	}
}

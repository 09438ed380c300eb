package masking

import (
	"testing"
	"unicode/utf8"
)

func TestApplyPattern(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		pattern string
		want    string
	}{
		{"email resynchronizes on separators", "test@test.com", "000xx@xxx.xx.xx", "tesxx@xxx.xx.xx"},
		{"idcard keeps first digit", "1234567890123", "0XXXXXXXXXXXX", "1XXXXXXXXXXXX"},
		{"dashed credit card", "1234-5678-9012-3456", "0000-xxxx-xxxx-0000", "1234-xxxx-xxxx-3456"},
		{"passport", "AB1234567", "00xxxxx00", "ABxxxxx67"},
		{"leading mask consumes a position", "0123456789", "*000xxx0000", "*123xxx7890"},
		{"missing separator leaves cursor", "abcdef", "0-00", "a-bc"},
		{"exhausted value emits pattern zeros", "ab", "0000", "ab00"},
		{"empty value", "", "0x0", "0x0"},
		{"empty pattern", "secret", "", ""},
		{"multibyte runes", "日本語", "0x0", "日x語"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyPattern(tt.value, tt.pattern)
			if got != tt.want {
				t.Errorf("ApplyPattern(%q, %q) = %q, want %q", tt.value, tt.pattern, got, tt.want)
			}
		})
	}
}

func TestApplyPatternLength(t *testing.T) {
	patterns := []string{"000xx@xxx.xx.xx", "*000xxx0000", "0-XXXX-XXXXX-XX-X", "********", "0"}
	values := []string{"", "a", "test@test.com", "0123456789", "a-very-long-value-that-exceeds-every-pattern@example.org"}

	for _, p := range patterns {
		for _, v := range values {
			got := ApplyPattern(v, p)
			if utf8.RuneCountInString(got) != utf8.RuneCountInString(p) {
				t.Errorf("ApplyPattern(%q, %q) = %q: length %d, want %d",
					v, p, got, utf8.RuneCountInString(got), utf8.RuneCountInString(p))
			}
		}
	}
}

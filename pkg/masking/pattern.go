package masking

import "strings"

// revealChar in a mask pattern copies the current source character.
const revealChar = '0'

func isMaskChar(r rune) bool {
	return r == 'x' || r == 'X' || r == '*'
}

// ApplyPattern masks value according to pattern.
//
// The pattern is walked left to right with an independent cursor into value:
//
//   - '0' copies the source character under the cursor and advances it
//   - 'x', 'X' and '*' are emitted as-is and advance the cursor
//   - any other character is emitted as-is, then the cursor jumps past the
//     next occurrence of that character in value (or stays put if there is
//     none), so separators such as '@', '.' and '-' re-synchronize
//
// The result always has exactly as many characters as pattern. A '0' that
// runs past the end of value emits '0' itself.
func ApplyPattern(value, pattern string) string {
	src := []rune(value)

	var b strings.Builder
	b.Grow(len(pattern))

	i := 0
	for _, pc := range pattern {
		switch {
		case pc == revealChar:
			if i < len(src) {
				b.WriteRune(src[i])
			} else {
				b.WriteRune(pc)
			}
			i++
		case isMaskChar(pc):
			b.WriteRune(pc)
			i++
		default:
			b.WriteRune(pc)
			if j := indexRuneFrom(src, pc, i); j >= 0 {
				i = j + 1
			}
		}
	}
	return b.String()
}

func indexRuneFrom(src []rune, r rune, from int) int {
	for j := from; j < len(src); j++ {
		if src[j] == r {
			return j
		}
	}
	return -1
}

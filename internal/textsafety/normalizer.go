package textsafety

import (
	"strings"
	"unicode"
)

// isSpace is unicode.IsSpace plus the ASCII information separators
// U+001C..U+001F.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

// Normalize trims s and collapses every run of whitespace, of any kind, into
// a single ASCII space. Nothing else about the content changes.
func Normalize(s string) string {
	s = strings.TrimFunc(s, isSpace)
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))

	space := false
	for _, r := range s {
		if isSpace(r) {
			if !space {
				b.WriteByte(' ')
				space = true
			}
			continue
		}
		space = false
		b.WriteRune(r)
	}

	return b.String()
}

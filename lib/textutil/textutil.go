package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

// NormalizeFullWidth folds full-width ASCII variants (U+FF01..U+FF5E),
// ideographic spaces and curly quotes into their plain ASCII forms.
// posting titles occasionally come typed with an IME in full-width
// mode, e.g. "１２월 ２일 식단".
func NormalizeFullWidth(s string) string {
	var out strings.Builder
	out.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 0xFF01 && r <= 0xFF5E:
			out.WriteRune(r - 0xFEE0)
		case r == 0x3000:
			out.WriteRune(' ')
		case r == '‘' || r == '’':
			out.WriteRune('\'')
		case r == '“' || r == '”':
			out.WriteRune('"')
		default:
			out.WriteRune(r)
		}
	}
	return out.String()
}

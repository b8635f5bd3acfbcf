// Package slug derives URL-safe identifiers from titles.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Separator joins the words of a slug.
const Separator = "-"

// Letters that do not decompose into an ASCII base plus combining marks.
var substitutions = map[rune]string{
	'ß': "ss",
	'æ': "ae",
	'Æ': "ae",
	'ø': "o",
	'Ø': "o",
	'œ': "oe",
	'Œ': "oe",
	'đ': "d",
	'Đ': "d",
	'ł': "l",
	'Ł': "l",
	'þ': "th",
	'Þ': "th",
	'&': " and ",
}

// Make lowercases s, folds accented letters to ASCII and joins the remaining
// alphanumeric runs with Separator. It is deterministic; distinct titles can
// produce the same slug.
func Make(s string) string {
	folded, _, err := transform.String(
		transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		s,
	)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	pending := false
	for _, r := range folded {
		if sub, ok := substitutions[r]; ok {
			for _, sr := range sub {
				pending = appendRune(&b, sr, pending)
			}
			continue
		}
		pending = appendRune(&b, r, pending)
	}
	return b.String()
}

func appendRune(b *strings.Builder, r rune, pending bool) bool {
	r = unicode.ToLower(r)
	if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
		if pending && b.Len() > 0 {
			b.WriteString(Separator)
		}
		b.WriteRune(r)
		return false
	}
	return true
}

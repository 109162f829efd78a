package tmx

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const bom = '\uFEFF'

func leadingJunk(r rune) bool {
	return r == bom || unicode.IsSpace(r)
}

// Normalize removes leading byte-order marks and whitespace, in any mix, so the text starts
// directly with the XML declaration or root element.
func Normalize(raw string) string {
	return strings.TrimLeftFunc(raw, leadingJunk)
}

// NormalizeBytes is Normalize for raw file content. Invalid UTF-8 sequences are replaced
// with U+FFFD, as a text decoder would.
func NormalizeBytes(raw []byte) string {
	s := string(raw)
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, string(utf8.RuneError))
	}
	return Normalize(s)
}

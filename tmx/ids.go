package tmx

import (
	"math/big"
	"strings"
	"unicode"
)

// leadingInt parses the integer at the start of s, after optional whitespace and sign, and
// ignores anything that follows it ("12a" is 12). ok is false when s does not start with
// digits. Values of any size are accepted.
func leadingInt(s string) (n *big.Int, ok bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return nil, false
	}
	return new(big.Int).SetString(strings.TrimPrefix(s[:end], "+"), 10)
}

// MaxNumericID returns the largest numeric id among the body's units, or 0 if there is none.
// Absent, empty and non-numeric ids are ignored.
func MaxNumericID(doc *Document) *big.Int {
	max := new(big.Int)
	if doc.Body == nil {
		return max
	}
	for _, tu := range doc.Body.Units {
		raw, ok := tu.ID()
		if !ok {
			continue
		}
		if n, ok := leadingInt(raw); ok && n.Cmp(max) > 0 {
			max = n
		}
	}
	return max
}

// AssignMissingIDs gives every unit without an id attribute the next number after the largest
// numeric id already in the document, in document order. Units that already carry an id, even
// an empty or non-numeric one, are left alone. Existing ids are never checked against each
// other or against the new ones.
//
// It returns the number of ids assigned. Running it again on the same document assigns none.
func AssignMissingIDs(doc *Document) int {
	if doc.Body == nil {
		return 0
	}

	next := MaxNumericID(doc)
	one := big.NewInt(1)
	assigned := 0
	for _, tu := range doc.Body.Units {
		if tu.Attr.Has("id") {
			continue
		}
		next.Add(next, one)
		tu.SetID(next.String())
		assigned++
	}

	return assigned
}

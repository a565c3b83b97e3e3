package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const MaxTermRunes = 100

// Normalize canonicalizes a search term: NFC, lower-case, only Latin and
// Hangul letters, ASCII digits and single spaces, at most MaxTermRunes runes.
// Everything else is dropped.
func Normalize(term string) string {
	term = strings.ToLower(norm.NFC.String(strings.TrimSpace(term)))

	var b strings.Builder
	b.Grow(len(term))
	n := 0
	pendingSpace := false
	for _, r := range term {
		if n >= MaxTermRunes {
			break
		}
		switch {
		case unicode.IsSpace(r):
			pendingSpace = n > 0
			continue
		case r >= '0' && r <= '9',
			unicode.IsLetter(r) && (unicode.Is(unicode.Latin, r) || unicode.Is(unicode.Hangul, r)):
		default:
			continue
		}
		if pendingSpace {
			if n+1 >= MaxTermRunes {
				break
			}
			b.WriteByte(' ')
			n++
			pendingSpace = false
		}
		b.WriteRune(r)
		n++
	}
	// Dropping marks can leave conjoining jamo adjacent; recompose them.
	return norm.NFC.String(b.String())
}

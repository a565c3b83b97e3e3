package steps

import (
	"strings"
	"unicode"

	"github.com/graduation-masterpiece/demo-repository/internal/platform/apierr"
)

var quoteReplacer = strings.NewReplacer(
	`"`, "",
	"“", "",
	"”", "",
	"„", "",
	"«", "",
	"»", "",
)

func isTerminal(r rune) bool {
	switch r {
	case '.', '!', '?', '…', '。', '！', '？':
		return true
	}
	return false
}

func hasWordRune(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// SplitSentences turns model output into the ordered sentence list stored on
// a card. Runs of terminal punctuation stay with their sentence, trailing text
// without punctuation is its own sentence, and punctuation-only fragments are
// folded into a neighbour so nothing is dropped. Only blank input fails.
func SplitSentences(text string) ([]string, error) {
	clean := strings.Join(strings.Fields(quoteReplacer.Replace(text)), " ")
	if clean == "" {
		return nil, apierr.Parse("summary has no sentences")
	}

	var (
		out   []string
		carry string
		cur   strings.Builder
	)
	emit := func() {
		seg := strings.TrimSpace(cur.String())
		cur.Reset()
		if seg == "" {
			return
		}
		if !hasWordRune(seg) {
			if len(out) > 0 {
				out[len(out)-1] += seg
			} else {
				carry += seg
			}
			return
		}
		if carry != "" {
			seg = carry + " " + seg
			carry = ""
		}
		out = append(out, seg)
	}

	runes := []rune(clean)
	for i := 0; i < len(runes); i++ {
		cur.WriteRune(runes[i])
		if !isTerminal(runes[i]) {
			continue
		}
		for i+1 < len(runes) && isTerminal(runes[i+1]) {
			i++
			cur.WriteRune(runes[i])
		}
		emit()
	}
	emit()

	if len(out) == 0 {
		out = []string{carry}
	}
	return out, nil
}

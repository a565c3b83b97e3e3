package steps

import (
	"errors"
	"slices"
	"strings"
	"testing"
	"unicode"

	"pgregory.net/rapid"

	"github.com/graduation-masterpiece/demo-repository/internal/platform/apierr"
)

func TestSplitSentences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "basic terminals",
			in:   "What hides in the fog? A *secret* waits.   Read it now!",
			want: []string{"What hides in the fog?", "A *secret* waits.", "Read it now!"},
		},
		{
			name: "collapses whitespace and strips quotes",
			in:   "He said \"run.\"\n\n\tShe  stayed.",
			want: []string{"He said run.", "She stayed."},
		},
		{
			name: "punctuation runs stay together",
			in:   "Really?! Yes... Fine.",
			want: []string{"Really?!", "Yes...", "Fine."},
		},
		{
			name: "no terminal punctuation",
			in:   "a teaser without an ending",
			want: []string{"a teaser without an ending"},
		},
		{
			name: "trailing fragment kept",
			in:   "First one. then this",
			want: []string{"First one.", "then this"},
		},
		{
			name: "orphan punctuation folds into previous sentence",
			in:   "Hello. . World.",
			want: []string{"Hello..", "World."},
		},
		{
			name: "leading punctuation folds into next sentence",
			in:   "... it begins.",
			want: []string{"... it begins."},
		},
		{
			name: "punctuation only",
			in:   "?!",
			want: []string{"?!"},
		},
		{
			name: "korean text",
			in:   "*사랑*은 끝났을까? 그녀는 다시 돌아왔다.",
			want: []string{"*사랑*은 끝났을까?", "그녀는 다시 돌아왔다."},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := SplitSentences(tc.in)
			if err != nil {
				t.Fatalf("SplitSentences(%q): %v", tc.in, err)
			}
			if !slices.Equal(got, tc.want) {
				t.Fatalf("SplitSentences(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSplitSentencesBlank(t *testing.T) {
	for _, in := range []string{"", "   ", "\"\"", "\n\t"} {
		if _, err := SplitSentences(in); !errors.Is(err, apierr.ErrParse) {
			t.Fatalf("SplitSentences(%q): expected parse error, got %v", in, err)
		}
	}
}

func squash(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, quoteReplacer.Replace(s))
}

func TestSplitSentencesCoverageProperty(t *testing.T) {
	alphabet := []rune("ab가 .!?\"\n\t*")
	rapid.Check(t, func(t *rapid.T) {
		runes := rapid.SliceOfN(rapid.SampledFrom(alphabet), 1, 80).Draw(t, "runes")
		in := string(runes)
		got, err := SplitSentences(in)
		if squash(in) == "" {
			if err == nil {
				t.Fatalf("expected parse error for %q", in)
			}
			return
		}
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", in, err)
		}
		if len(got) == 0 {
			t.Fatalf("no sentences for %q", in)
		}
		for _, s := range got {
			if s == "" || s != strings.TrimSpace(s) {
				t.Fatalf("bad sentence %q from %q", s, in)
			}
		}
		if squash(strings.Join(got, "")) != squash(in) {
			t.Fatalf("content not preserved: %q -> %q", in, got)
		}
	})
}

package keyword

import (
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// fold normalises text for matching. A transformer chain is not safe for
// concurrent use, so one is built per call.
func fold(s string) string {
	t := transform.Chain(norm.NFKC, width.Fold, cases.Fold())
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// tokenize splits folded text into terms.
func tokenize(s string) []string {
	var (
		terms []string
		word  []rune
		han   []rune
	)

	flushWord := func() {
		if len(word) > 0 {
			terms = append(terms, string(word))
			word = word[:0]
		}
	}
	flushHan := func() {
		for i, r := range han {
			terms = append(terms, string(r))
			if i+1 < len(han) {
				terms = append(terms, string(han[i:i+2]))
			}
		}
		han = han[:0]
	}

	for _, r := range fold(s) {
		switch {
		case unicode.Is(unicode.Han, r):
			flushWord()
			han = append(han, r)
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			flushHan()
			word = append(word, r)
		default:
			flushWord()
			flushHan()
		}
	}
	flushWord()
	flushHan()

	return terms
}

// termFrequencies counts each term of s.
func termFrequencies(s string) (map[string]int, int) {
	terms := tokenize(s)
	tf := make(map[string]int, len(terms))
	for _, t := range terms {
		tf[t]++
	}
	return tf, len(terms)
}

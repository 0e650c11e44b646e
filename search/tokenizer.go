package search

import (
	"strings"
	"unicode"

	"github.com/kljensen/snowball"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// minTokenLength drops single-character tokens.
const minTokenLength = 2

// Tokenize splits text into index terms. Text is lowercased and stripped
// of diacritics, split on anything that is not a letter or digit, English
// stop words and single characters are dropped, and the remaining words
// are reduced to their Snowball stems.
func Tokenize(text string) []string {
	folded := foldAccents(strings.ToLower(text))
	words := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	tokens := make([]string, 0, len(words))
	for _, w := range words {
		if len([]rune(w)) < minTokenLength || stopWords[w] {
			continue
		}
		stem, err := snowball.Stem(w, "english", true)
		if err != nil || stem == "" {
			stem = w
		}
		tokens = append(tokens, stem)
	}
	return tokens
}

// foldAccents strips combining marks, so "café" and "cafe" share a term.
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

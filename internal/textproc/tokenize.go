package textproc

import "strings"

const DefaultMinWordLength = 3

type Tokenizer struct {
	Stopwords StopwordSet
	MinLength int
}

func NewTokenizer(stop StopwordSet, minLength int) Tokenizer {
	if minLength <= 0 {
		minLength = DefaultMinWordLength
	}
	return Tokenizer{Stopwords: stop, MinLength: minLength}
}

// Tokenize splits cleaned text on whitespace and keeps alphabetic tokens of
// at least MinLength characters that are not stopwords. Order is preserved.
func (t Tokenizer) Tokenize(cleaned string) []string {
	fields := strings.Fields(cleaned)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < t.MinLength || !isAlphaWord(f) {
			continue
		}
		if t.Stopwords.Contains(f) {
			continue
		}
		out = append(out, f)
	}
	return out
}

func isAlphaWord(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !isASCIIAlpha(r) {
			return false
		}
	}
	return true
}

// Package pos assigns Penn Treebank part-of-speech tags with an averaged
// perceptron model.
package pos

import (
	"strings"
	"unicode"

	"github.com/jdkato/prose/tag"
)

const Unknown = "UNKNOWN"

// Tagger wraps a trained perceptron. The model is read-only after
// construction, so one Tagger can be shared across workers.
type Tagger struct {
	model *tag.PerceptronTagger
}

// NewTagger loads the embedded pretrained weights. Loading is slow enough
// that callers should build one Tagger and reuse it.
func NewTagger() *Tagger {
	return &Tagger{model: tag.NewPerceptronTagger()}
}

// Tag returns one tag per token, in order. The tokens are tagged as one
// sequence, so neighbours influence each other. Tokens without letters or
// digits get Unknown.
func (t *Tagger) Tag(tokens []string) []string {
	out := make([]string, len(tokens))
	if len(tokens) == 0 {
		return out
	}

	words := make([]string, 0, len(tokens))
	idx := make([]int, 0, len(tokens))
	for i, tok := range tokens {
		if !hasWordRune(tok) {
			out[i] = Unknown
			continue
		}
		words = append(words, strings.ToLower(tok))
		idx = append(idx, i)
	}
	if len(words) == 0 {
		return out
	}

	tagged := t.model.Tag(words)
	for j, i := range idx {
		out[i] = Unknown
		if j < len(tagged) && tagged[j].Tag != "" {
			out[i] = tagged[j].Tag
		}
	}
	return out
}

func hasWordRune(s string) bool {
	return strings.ContainsFunc(s, func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) })
}

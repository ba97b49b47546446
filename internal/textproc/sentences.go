package textproc

import (
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

var (
	punktOnce sync.Once
	punkt     *sentences.DefaultSentenceTokenizer
)

// splitter loads the pretrained English Punkt model on first use.
func splitter() *sentences.DefaultSentenceTokenizer {
	punktOnce.Do(func() {
		tok, err := english.NewSentenceTokenizer(nil)
		if err != nil {
			panic(fmt.Sprintf("textproc: load punkt model: %v", err))
		}
		punkt = tok
	})
	return punkt
}

// Sentences splits text with an unsupervised Punkt model trained on
// English, so abbreviations and initials do not end a sentence. Returned
// sentences are trimmed and non-empty.
func Sentences(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var out []string
	for _, s := range splitter().Tokenize(text) {
		if t := strings.TrimSpace(s.Text); t != "" {
			out = append(out, t)
		}
	}
	return out
}

const (
	openPunct  = "\"([{`"
	closePunct = ",;:!?)]}\"…"
)

var clitics = []string{"'s", "'re", "'ve", "'ll", "'d", "'m"}

// Words splits text into word tokens the way a Treebank tokenizer does:
// quotes, brackets and trailing punctuation become their own tokens, and
// contractions split off "n't" and the short clitics.
func Words(text string) []string {
	var out []string
	for _, sent := range Sentences(text) {
		fields := strings.Fields(sent)
		for i, f := range fields {
			out = appendChunk(out, f, i == len(fields)-1)
		}
	}
	return out
}

func appendChunk(out []string, chunk string, last bool) []string {
	for chunk != "" {
		r, size := utf8.DecodeRuneInString(chunk)
		if !strings.ContainsRune(openPunct, r) {
			break
		}
		out = append(out, string(r))
		chunk = chunk[size:]
	}

	var trail []string
	for chunk != "" {
		if strings.HasSuffix(chunk, "...") {
			trail = append(trail, "...")
			chunk = chunk[:len(chunk)-3]
			continue
		}
		r, size := utf8.DecodeLastRuneInString(chunk)
		if strings.ContainsRune(closePunct, r) || (r == '.' && last) {
			trail = append(trail, string(r))
			chunk = chunk[:len(chunk)-size]
			continue
		}
		break
	}

	if chunk != "" {
		out = appendWord(out, chunk)
	}
	for i := len(trail) - 1; i >= 0; i-- {
		out = append(out, trail[i])
	}
	return out
}

func appendWord(out []string, w string) []string {
	norm := strings.ReplaceAll(strings.ToLower(w), "’", "'")
	if len(norm) == len(w) {
		if strings.HasSuffix(norm, "n't") && len(w) > 3 {
			return append(out, w[:len(w)-3], w[len(w)-3:])
		}
		for _, c := range clitics {
			if strings.HasSuffix(norm, c) && len(w) > len(c) {
				return append(out, w[:len(w)-len(c)], w[len(w)-len(c):])
			}
		}
	}
	return append(out, w)
}

package textproc

import (
	"strings"
)

const vowels = "aeiouy"

// CountSyllables counts vowel groups in the lowercased word. Every word has
// at least one syllable.
func CountSyllables(word string) int {
	n := 0
	prevVowel := false
	for _, r := range strings.ToLower(word) {
		v := strings.ContainsRune(vowels, r)
		if v && !prevVowel {
			n++
		}
		prevVowel = v
	}
	if n < 1 {
		return 1
	}
	return n
}

// Readability returns a Flesch reading-ease score for raw text, clamped to
// [0, 100]. Text with no sentences or words scores 0.
func Readability(text string) float64 {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	sentences := Sentences(text)
	words := Words(text)
	if len(sentences) == 0 || len(words) == 0 {
		return 0
	}

	syllables := 0
	for _, w := range words {
		syllables += CountSyllables(w)
	}
	avgSentence := float64(len(words)) / float64(len(sentences))
	avgSyllables := float64(syllables) / float64(len(words))

	score := 206.835 - 1.015*avgSentence - 84.6*avgSyllables
	return clamp(score, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

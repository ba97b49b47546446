package transform

import (
	"sort"
	"time"

	"lyricflow/internal/models"
	"lyricflow/internal/pos"
	"lyricflow/internal/textproc"
	"lyricflow/internal/tfidf"
)

const topTaggedWords = 50

// ExtractWordFrequency emits one entry per distinct token in first-occurrence
// order. Only the most frequent tokens are POS-tagged; the rest are UNKNOWN.
func ExtractWordFrequency(id string, tokens []string, row tfidf.Row, tagger *pos.Tagger, stop textproc.StopwordSet, now time.Time) []models.WordFrequency {
	counts := make(map[string]int, len(tokens))
	var order []string
	for _, tok := range tokens {
		if counts[tok] == 0 {
			order = append(order, tok)
		}
		counts[tok]++
	}

	top := make([]string, len(order))
	copy(top, order)
	sort.SliceStable(top, func(i, j int) bool { return counts[top[i]] > counts[top[j]] })
	if len(top) > topTaggedWords {
		top = top[:topTaggedWords]
	}
	tags := make(map[string]string, len(top))
	for i, tag := range tagger.Tag(top) {
		tags[top[i]] = tag
	}

	out := make([]models.WordFrequency, 0, len(order))
	for _, w := range order {
		tag, ok := tags[w]
		if !ok {
			tag = pos.Unknown
		}
		out = append(out, models.WordFrequency{
			LyricsID:   id,
			Word:       w,
			Frequency:  counts[w],
			TFIDF:      row.Weight(w),
			POSTag:     tag,
			IsStopword: stop.Contains(w),
			CreatedAt:  now,
		})
	}
	return out
}

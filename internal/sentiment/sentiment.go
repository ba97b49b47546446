// Package sentiment scores lyric texts with the VADER lexicon.
package sentiment

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jonreiter/govader"

	"lyricflow/internal/models"
)

const (
	PositiveThreshold = 0.05
	NegativeThreshold = -0.05

	wordThreshold = 0.1
	maxBucketSize = 10
	minWordRunes  = 3
)

// Scorer returns a compound polarity in [-1, 1].
type Scorer interface {
	Compound(text string) float64
}

type vaderScorer struct {
	sia *govader.SentimentIntensityAnalyzer
}

func (v vaderScorer) Compound(text string) float64 {
	return v.sia.PolarityScores(text).Compound
}

// Analyzer is read-only after construction.
type Analyzer struct {
	scorer Scorer
}

// NewAnalyzer loads the VADER lexicon.
func NewAnalyzer() *Analyzer {
	return &Analyzer{scorer: vaderScorer{sia: govader.NewSentimentIntensityAnalyzer()}}
}

func NewAnalyzerWithScorer(s Scorer) *Analyzer {
	return &Analyzer{scorer: s}
}

// Label maps a compound score to its label. Both thresholds are inclusive.
func Label(score float64) models.SentimentLabel {
	switch {
	case score >= PositiveThreshold:
		return models.SentimentPositive
	case score <= NegativeThreshold:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

// Analyze scores raw text and buckets its words. LyricsID and AnalyzedAt are
// left for the caller.
func (a *Analyzer) Analyze(raw string) models.SentimentResult {
	res := models.SentimentResult{
		SentimentLabel: models.SentimentNeutral,
		PositiveWords:  []string{},
		NegativeWords:  []string{},
		NeutralWords:   []string{},
	}
	if strings.TrimSpace(raw) == "" {
		return res
	}

	score := clamp(a.scorer.Compound(raw))
	res.SentimentScore = score
	res.SentimentLabel = Label(score)
	res.Confidence = math.Abs(score)

	for _, w := range strings.Fields(strings.ToLower(raw)) {
		if utf8.RuneCountInString(w) < minWordRunes || !isAlpha(w) {
			continue
		}
		ws := a.scorer.Compound(w)
		switch {
		case ws > wordThreshold:
			res.PositiveWords = appendCapped(res.PositiveWords, w)
		case ws < -wordThreshold:
			res.NegativeWords = appendCapped(res.NegativeWords, w)
		default:
			res.NeutralWords = appendCapped(res.NeutralWords, w)
		}
	}
	return res
}

func appendCapped(b []string, w string) []string {
	if len(b) >= maxBucketSize {
		return b
	}
	return append(b, w)
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return s != ""
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(-1, math.Min(1, v))
}

package sentiment

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"lyricflow/internal/models"
)

type fixedScorer map[string]float64

func (f fixedScorer) Compound(text string) float64 { return f[text] }

func TestLabelBoundaries(t *testing.T) {
	require.Equal(t, models.SentimentPositive, Label(0.05))
	require.Equal(t, models.SentimentNeutral, Label(0.0499))
	require.Equal(t, models.SentimentNegative, Label(-0.05))
	require.Equal(t, models.SentimentNeutral, Label(-0.0499))
}

func TestAnalyzeEmpty(t *testing.T) {
	res := NewAnalyzerWithScorer(fixedScorer{}).Analyze("  ")
	require.Equal(t, 0.0, res.SentimentScore)
	require.Equal(t, models.SentimentNeutral, res.SentimentLabel)
	require.Equal(t, 0.0, res.Confidence)
	require.Empty(t, res.PositiveWords)
	require.Empty(t, res.NegativeWords)
	require.Empty(t, res.NeutralWords)
}

func TestAnalyzeBucketsWords(t *testing.T) {
	text := "Love hurts, love heals no ok sad"
	s := fixedScorer{
		text:    -0.3,
		"love":  0.6,
		"hurts": -0.5,
		"heals": 0.1,
		"sad":   -0.4,
	}
	res := NewAnalyzerWithScorer(s).Analyze(text)
	require.Equal(t, -0.3, res.SentimentScore)
	require.Equal(t, models.SentimentNegative, res.SentimentLabel)
	require.Equal(t, 0.3, res.Confidence)
	// "hurts," is not alphabetic; "no" and "ok" are too short.
	require.Equal(t, []string{"love", "love"}, res.PositiveWords)
	require.Equal(t, []string{"sad"}, res.NegativeWords)
	require.Equal(t, []string{"heals"}, res.NeutralWords)
}

func TestBucketsAreCapped(t *testing.T) {
	text := strings.Repeat("joy ", 25)
	res := NewAnalyzerWithScorer(fixedScorer{"joy": 0.5}).Analyze(text)
	require.Len(t, res.PositiveWords, maxBucketSize)
}

func TestVaderScoresHappyLyrics(t *testing.T) {
	a := NewAnalyzer()
	res := a.Analyze("This is a happy beautiful wonderful song about love and joy")
	require.Equal(t, models.SentimentPositive, res.SentimentLabel)
	require.LessOrEqual(t, res.SentimentScore, 1.0)
	require.Equal(t, math.Abs(res.SentimentScore), res.Confidence)
	require.Contains(t, res.PositiveWords, "happy")

	neg := a.Analyze("I hate this terrible awful pain")
	require.Equal(t, models.SentimentNegative, neg.SentimentLabel)
	require.GreaterOrEqual(t, neg.SentimentScore, -1.0)
}

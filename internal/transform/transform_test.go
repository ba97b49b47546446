package transform

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"lyricflow/internal/ingest"
	"lyricflow/internal/models"
	"lyricflow/internal/pos"
	"lyricflow/internal/textproc"
	"lyricflow/internal/tfidf"
	"lyricflow/internal/util"
)

var testResources = LoadResources()

func newTestTransformer() *Transformer {
	return New(testResources, Options{MinWordLength: 3, MaxFeatures: 5000}, nil)
}

func TestHappySongEndToEnd(t *testing.T) {
	p := ingest.NewParser()
	recs, err := p.Parse("happy.json", []byte(`{"title":"Happy Song","artist":"Test Artist","lyrics":"This is a happy beautiful wonderful song about love and joy"}`))
	require.NoError(t, err)

	res, err := newTestTransformer().Transform(context.Background(), recs)
	require.NoError(t, err)
	require.Len(t, res.Processed, 1)

	pl := res.Processed[0]
	require.Equal(t, []string{"happy", "beautiful", "wonderful", "song", "love", "joy"}, pl.Tokens)
	require.Equal(t, len(pl.Tokens), pl.WordCount)
	require.Equal(t, 6, pl.UniqueWords)
	require.Equal(t, "en", pl.Language)
	require.InDelta(t, 34.0/6.0, pl.AvgWordLength, 1e-9)

	require.Len(t, res.WordFrequency, 6)
	for _, wf := range res.WordFrequency {
		require.Equal(t, pl.ID, wf.LyricsID)
		require.Equal(t, 1, wf.Frequency)
		require.Zero(t, wf.TFIDF) // single document corpus
		require.False(t, wf.IsStopword)
	}

	require.Len(t, res.Sentiment, 1)
	require.Equal(t, models.SentimentPositive, res.Sentiment[0].SentimentLabel)
	require.Equal(t, pl.ID, res.Sentiment[0].LyricsID)
}

func TestRowsFollowRecordsNotCorpusPositions(t *testing.T) {
	recs := []models.LyricRecord{
		{ID: "empty", Lyrics: ""},
		{ID: "a", Lyrics: "river river mountain"},
		{ID: "b", Lyrics: "mountain sunshine"},
		{ID: "c", Lyrics: "sunshine river"},
		{ID: "d", Lyrics: "thunder"},
	}
	res, err := newTestTransformer().Transform(context.Background(), recs)
	require.NoError(t, err)
	require.Len(t, res.Processed, 5)
	require.Greater(t, res.VocabularySize, 0)

	weights := map[string]map[string]float64{}
	for _, wf := range res.WordFrequency {
		if weights[wf.LyricsID] == nil {
			weights[wf.LyricsID] = map[string]float64{}
		}
		weights[wf.LyricsID][wf.Word] = wf.TFIDF
	}
	require.Empty(t, weights["empty"])
	require.Greater(t, weights["a"]["river"], 0.0)
	require.Greater(t, weights["b"]["sunshine"], 0.0)
	require.Zero(t, weights["d"]["thunder"])
}

func TestOversizedAndIDlessRecordsAreSkipped(t *testing.T) {
	tr := New(testResources, Options{MaxLyricsBytes: 16}, nil)
	recs := []models.LyricRecord{
		{ID: "big", Lyrics: strings.Repeat("love ", 10)},
		{ID: "", Lyrics: "short"},
		{ID: "ok", Lyrics: "short song"},
	}
	res, err := tr.Transform(context.Background(), recs)
	require.NoError(t, err)
	require.Len(t, res.Processed, 1)
	require.Equal(t, "ok", res.Processed[0].ID)
	require.Len(t, res.Skips, 2)
	require.Equal(t, "big", res.Skips[0].ID)
	require.Contains(t, res.Skips[0].Reason, util.ErrLyricsTooLarge.Error())
	require.Contains(t, res.Skips[1].Reason, util.ErrEmptyRecordID.Error())
}

func TestTransformHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestTransformer().Transform(ctx, []models.LyricRecord{{ID: "x", Lyrics: "a b c"}})
	require.True(t, errors.Is(err, context.Canceled))
}

func TestExtractWordFrequency(t *testing.T) {
	tokens := []string{"love", "night", "love", "dancing", "night", "love"}
	row := tfidf.Row{"love": 0.8}
	now := time.Unix(0, 0)
	stop := textproc.StopwordSet{"night": {}}

	got := ExtractWordFrequency("id1", tokens, row, pos.NewTagger(), stop, now)
	require.Len(t, got, 3)
	require.Equal(t, "love", got[0].Word)
	require.Equal(t, 3, got[0].Frequency)
	require.Equal(t, 0.8, got[0].TFIDF)
	require.NotEqual(t, pos.Unknown, got[0].POSTag)
	require.Equal(t, "night", got[1].Word)
	require.True(t, got[1].IsStopword)
	require.Zero(t, got[1].TFIDF)
	require.Contains(t, []string{"VBG", "NN"}, got[2].POSTag)
}

func TestOnlyTopFiftyWordsAreTagged(t *testing.T) {
	var tokens []string
	for i := 0; i < 60; i++ {
		tokens = append(tokens, "word"+string(rune('a'+i%26))+string(rune('a'+i/26)))
	}
	tokens = append(tokens, tokens[59]) // last word now the most frequent
	got := ExtractWordFrequency("id", tokens, nil, pos.NewTagger(), textproc.StopwordSet{}, time.Now())
	require.Len(t, got, 60)

	unknown := 0
	for _, wf := range got {
		if wf.POSTag == pos.Unknown {
			unknown++
		}
	}
	require.Equal(t, 10, unknown)
	require.NotEqual(t, pos.Unknown, got[59].POSTag)
	require.Equal(t, pos.Unknown, got[58].POSTag)
}

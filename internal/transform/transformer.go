// Package transform runs the NLP stage over a batch of lyric records.
package transform

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"lyricflow/internal/models"
	"lyricflow/internal/textproc"
	"lyricflow/internal/tfidf"
	"lyricflow/internal/util"
)

const (
	DefaultMaxLyricsBytes = 1 << 20 // 1 MiB
	languageEnglish       = "en"
)

type Options struct {
	MinWordLength  int
	MaxFeatures    int
	MaxLyricsBytes int
}

type Result struct {
	Processed      []models.ProcessedLyric  `json:"processed"`
	WordFrequency  []models.WordFrequency   `json:"word_frequency"`
	Sentiment      []models.SentimentResult `json:"sentiment"`
	Skips          []models.Skip            `json:"skips,omitempty"`
	VocabularySize int                      `json:"vocabulary_size"`
}

type Transformer struct {
	res      *Resources
	tok      textproc.Tokenizer
	vec      tfidf.Vectorizer
	maxBytes int
	log      *zap.SugaredLogger
	now      func() time.Time
}

func New(res *Resources, opts Options, log *zap.SugaredLogger) *Transformer {
	if opts.MaxLyricsBytes <= 0 {
		opts.MaxLyricsBytes = DefaultMaxLyricsBytes
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Transformer{
		res:      res,
		tok:      textproc.NewTokenizer(res.Stopwords, opts.MinWordLength),
		vec:      tfidf.NewVectorizer(opts.MaxFeatures),
		maxBytes: opts.MaxLyricsBytes,
		log:      log,
		now:      time.Now,
	}
}

// Transform fits TF-IDF over every record with lyrics, then scores each
// record against its own row. Records that cannot be processed are skipped
// with a reason; the batch continues.
func (t *Transformer) Transform(ctx context.Context, records []models.LyricRecord) (Result, error) {
	var res Result

	rowOf := make(map[int]int, len(records))
	corpus := make([]string, 0, len(records))
	for i, r := range records {
		if r.Lyrics == "" || len(r.Lyrics) > t.maxBytes {
			continue
		}
		rowOf[i] = len(corpus)
		corpus = append(corpus, r.Lyrics)
	}

	var rows []tfidf.Row
	if len(corpus) > 0 {
		model, fitted, err := t.vec.FitTransform(corpus)
		if err != nil {
			return Result{}, fmt.Errorf("fit tfidf: %w", err)
		}
		rows = fitted
		res.VocabularySize = len(model.FeatureNames())
		if model.Empty() {
			t.log.Warnw("tfidf vocabulary is empty; all weights are zero", "documents", len(corpus))
		}
	}

	for i, r := range records {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		var row tfidf.Row
		if j, ok := rowOf[i]; ok {
			row = rows[j]
		}
		p, wf, s, err := t.one(r, row)
		if err != nil {
			t.log.Warnw("skipping record", "id", r.ID, "source", r.Source, "error", err)
			res.Skips = append(res.Skips, models.Skip{ID: r.ID, Source: r.Source, Reason: err.Error()})
			continue
		}
		res.Processed = append(res.Processed, p)
		res.WordFrequency = append(res.WordFrequency, wf...)
		res.Sentiment = append(res.Sentiment, s)
	}
	t.log.Infow("transformed lyrics", "processed", len(res.Processed), "skipped", len(res.Skips), "vocabulary", res.VocabularySize)
	return res, nil
}

func (t *Transformer) one(r models.LyricRecord, row tfidf.Row) (models.ProcessedLyric, []models.WordFrequency, models.SentimentResult, error) {
	if r.ID == "" {
		return models.ProcessedLyric{}, nil, models.SentimentResult{}, util.ErrEmptyRecordID
	}
	if len(r.Lyrics) > t.maxBytes {
		return models.ProcessedLyric{}, nil, models.SentimentResult{}, fmt.Errorf("%w: %d bytes", util.ErrLyricsTooLarge, len(r.Lyrics))
	}

	now := t.now().UTC()
	cleaned := textproc.Clean(r.Lyrics)
	tokens := t.tok.Tokenize(cleaned)

	p := models.ProcessedLyric{
		ID:               r.ID,
		Title:            r.Title,
		Artist:           r.Artist,
		WordCount:        len(tokens),
		UniqueWords:      countUnique(tokens),
		AvgWordLength:    avgLen(tokens),
		ReadabilityScore: textproc.Readability(r.Lyrics),
		Language:         languageEnglish,
		ProcessedText:    cleaned,
		Tokens:           tokens,
		ProcessedAt:      now,
	}
	wf := ExtractWordFrequency(r.ID, tokens, row, t.res.Tagger, t.res.Stopwords, now)

	s := t.res.Sentiment.Analyze(r.Lyrics)
	s.LyricsID = r.ID
	s.AnalyzedAt = now
	return p, wf, s, nil
}

func countUnique(tokens []string) int {
	seen := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		seen[t] = struct{}{}
	}
	return len(seen)
}

func avgLen(tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	n := 0
	for _, t := range tokens {
		n += len(t)
	}
	return float64(n) / float64(len(tokens))
}

// Package report aggregates warehouse tables into a run-independent summary.
package report

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"lyricflow/internal/models"
	"lyricflow/internal/util"
	"lyricflow/internal/warehouse"
)

type Options struct {
	FromYear           int
	ToYear             int
	MinSongsPerYear    int
	MinSongsPerGenre   int
	MinWordFrequency   int
	TopWords           int
	ComplexityFromYear int
	ComplexityToYear   int
	MinSongsPerDecade  int
}

func DefaultOptions() Options {
	return Options{
		FromYear:           1980,
		ToYear:             2024,
		MinSongsPerYear:    5,
		MinSongsPerGenre:   20,
		MinWordFrequency:   10,
		TopWords:           20,
		ComplexityFromYear: 1970,
		ComplexityToYear:   2020,
		MinSongsPerDecade:  5,
	}
}

type YearSentiment struct {
	Year         int     `json:"year"`
	AvgSentiment float64 `json:"avg_sentiment"`
	SongCount    int     `json:"song_count"`
	PositivePct  float64 `json:"positive_pct"`
	NegativePct  float64 `json:"negative_pct"`
}

type GenreSentiment struct {
	Genre        string  `json:"genre"`
	SongCount    int     `json:"song_count"`
	AvgSentiment float64 `json:"avg_sentiment"`
	StdDev       float64 `json:"sentiment_stddev"`
	PositivePct  float64 `json:"positive_pct"`
}

type WordCount struct {
	Word      string `json:"word"`
	Frequency int    `json:"total_frequency"`
}

type GenreComplexity struct {
	Genre          string  `json:"genre"`
	Decade         int     `json:"decade"`
	SongCount      int     `json:"song_count"`
	AvgWordCount   float64 `json:"avg_word_count"`
	AvgUniqueWords float64 `json:"avg_unique_words"`
	AvgReadability float64 `json:"avg_readability"`
}

type Summary struct {
	GeneratedAt      time.Time              `json:"generated_at"`
	SentimentByYear  []YearSentiment        `json:"sentiment_by_year"`
	SentimentByGenre []GenreSentiment       `json:"sentiment_by_genre"`
	TopWords         map[string][]WordCount `json:"top_words"`
	Complexity       []GenreComplexity      `json:"complexity"`
}

type Builder struct {
	q    warehouse.Querier
	opts Options
	log  *zap.SugaredLogger
	now  func() time.Time
}

func NewBuilder(q warehouse.Querier, opts Options, log *zap.SugaredLogger) *Builder {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Builder{q: q, opts: opts, log: log, now: time.Now}
}

func (b *Builder) Build(ctx context.Context) (Summary, error) {
	s := Summary{GeneratedAt: b.now().UTC(), TopWords: map[string][]WordCount{}}

	rows, err := b.q.Query(ctx, sentimentByYearSQL(b.q, b.opts))
	if err != nil {
		return Summary{}, fmt.Errorf("sentiment by year: %w", err)
	}
	for _, r := range rows {
		s.SentimentByYear = append(s.SentimentByYear, YearSentiment{
			Year:         toInt(r["year"]),
			AvgSentiment: toFloat(r["avg_sentiment"]),
			SongCount:    toInt(r["song_count"]),
			PositivePct:  toFloat(r["positive_pct"]),
			NegativePct:  toFloat(r["negative_pct"]),
		})
	}

	rows, err = b.q.Query(ctx, sentimentByGenreSQL(b.q, b.opts))
	if err != nil {
		return Summary{}, fmt.Errorf("sentiment by genre: %w", err)
	}
	for _, r := range rows {
		mean := toFloat(r["avg_sentiment"])
		variance := toFloat(r["avg_sq_sentiment"]) - mean*mean
		s.SentimentByGenre = append(s.SentimentByGenre, GenreSentiment{
			Genre:        toString(r["genre"]),
			SongCount:    toInt(r["song_count"]),
			AvgSentiment: mean,
			StdDev:       math.Sqrt(math.Max(variance, 0)),
			PositivePct:  toFloat(r["positive_pct"]),
		})
	}

	rows, err = b.q.Query(ctx, topWordsSQL(b.q, b.opts))
	if err != nil {
		return Summary{}, fmt.Errorf("top words: %w", err)
	}
	for _, r := range rows {
		label := toString(r["label"])
		if len(s.TopWords[label]) >= b.opts.TopWords {
			continue
		}
		s.TopWords[label] = append(s.TopWords[label], WordCount{Word: toString(r["word"]), Frequency: toInt(r["total_frequency"])})
	}

	rows, err = b.q.Query(ctx, complexitySQL(b.q, b.opts))
	if err != nil {
		return Summary{}, fmt.Errorf("complexity: %w", err)
	}
	s.Complexity = byDecade(rows, b.opts.MinSongsPerDecade)

	b.log.Infow("report built",
		"years", len(s.SentimentByYear), "genres", len(s.SentimentByGenre),
		"labels", len(s.TopWords), "complexity_rows", len(s.Complexity))
	return s, nil
}

// byDecade folds per-year sums into genre/decade averages.
func byDecade(rows []warehouse.Row, minSongs int) []GenreComplexity {
	type acc struct {
		n                   int
		words, uniq, readab float64
	}
	type key struct {
		genre  string
		decade int
	}
	sums := map[key]*acc{}
	for _, r := range rows {
		year := toInt(r["year"])
		k := key{genre: toString(r["genre"]), decade: year - year%10}
		a := sums[k]
		if a == nil {
			a = &acc{}
			sums[k] = a
		}
		a.n += toInt(r["song_count"])
		a.words += toFloat(r["sum_word_count"])
		a.uniq += toFloat(r["sum_unique_words"])
		a.readab += toFloat(r["sum_readability"])
	}
	var out []GenreComplexity
	for k, a := range sums {
		if a.n < minSongs || a.n == 0 {
			continue
		}
		n := float64(a.n)
		out = append(out, GenreComplexity{
			Genre: k.genre, Decade: k.decade, SongCount: a.n,
			AvgWordCount: a.words / n, AvgUniqueWords: a.uniq / n, AvgReadability: a.readab / n,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Genre != out[j].Genre {
			return out[i].Genre < out[j].Genre
		}
		return out[i].Decade < out[j].Decade
	})
	return out
}

// Write stores summary.json and summary.md under dir.
func Write(dir string, s Summary) error {
	if err := util.WriteJSONAtomic(filepath.Join(dir, "summary.json"), s); err != nil {
		return err
	}
	return util.WriteTextAtomic(filepath.Join(dir, "summary.md"), Markdown(s))
}

func Markdown(s Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Lyrics analysis summary\n\nGenerated %s\n\n", s.GeneratedAt.Format(time.RFC3339))

	b.WriteString("## Sentiment by year\n\n")
	if len(s.SentimentByYear) == 0 {
		b.WriteString("_No years with enough songs._\n\n")
	} else {
		b.WriteString("| Year | Songs | Avg sentiment | Positive % | Negative % |\n|---|---|---|---|---|\n")
		for _, y := range s.SentimentByYear {
			fmt.Fprintf(&b, "| %d | %d | %.3f | %.1f | %.1f |\n", y.Year, y.SongCount, y.AvgSentiment, y.PositivePct, y.NegativePct)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Sentiment by genre\n\n")
	if len(s.SentimentByGenre) == 0 {
		b.WriteString("_No genres with enough songs._\n\n")
	} else {
		b.WriteString("| Genre | Songs | Avg sentiment | Std dev | Positive % |\n|---|---|---|---|---|\n")
		for _, g := range s.SentimentByGenre {
			fmt.Fprintf(&b, "| %s | %d | %.3f | %.3f | %.1f |\n", g.Genre, g.SongCount, g.AvgSentiment, g.StdDev, g.PositivePct)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Top words by sentiment\n\n")
	for _, label := range []models.SentimentLabel{models.SentimentPositive, models.SentimentNegative, models.SentimentNeutral} {
		words := s.TopWords[string(label)]
		fmt.Fprintf(&b, "- **%s**:", label)
		if len(words) == 0 {
			b.WriteString(" none\n")
			continue
		}
		for i, w := range words {
			sep := ","
			if i == 0 {
				sep = ""
			}
			fmt.Fprintf(&b, "%s %s (%d)", sep, w.Word, w.Frequency)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n## Complexity by genre and decade\n\n")
	if len(s.Complexity) == 0 {
		b.WriteString("_No genre/decade groups with enough songs._\n")
		return b.String()
	}
	b.WriteString("| Genre | Decade | Songs | Avg words | Avg unique | Avg readability |\n|---|---|---|---|---|---|\n")
	for _, c := range s.Complexity {
		fmt.Fprintf(&b, "| %s | %ds | %d | %.1f | %.1f | %.1f |\n", c.Genre, c.Decade, c.SongCount, c.AvgWordCount, c.AvgUniqueWords, c.AvgReadability)
	}
	return b.String()
}

// Package warehouse appends pipeline output to analytical tables and runs
// aggregate queries against them.
package warehouse

import (
	"encoding/json"
	"time"

	"lyricflow/internal/models"
)

// Row maps column name to value. Array fields are already JSON strings.
type Row map[string]any

// Tables is the output of one run, one slice per warehouse table.
type Tables struct {
	Raw           []models.LyricRecord     `json:"raw"`
	Processed     []models.ProcessedLyric  `json:"processed"`
	WordFrequency []models.WordFrequency   `json:"word_frequency"`
	Sentiment     []models.SentimentResult `json:"sentiment"`
}

// Rows converts every table to column rows, keyed by table name.
func (t Tables) Rows() map[string][]Row {
	out := map[string][]Row{
		models.TableRawLyrics:         make([]Row, 0, len(t.Raw)),
		models.TableProcessedLyrics:   make([]Row, 0, len(t.Processed)),
		models.TableWordFrequency:     make([]Row, 0, len(t.WordFrequency)),
		models.TableSentimentAnalysis: make([]Row, 0, len(t.Sentiment)),
	}
	for _, r := range t.Raw {
		var year any
		if r.Year != nil {
			year = int64(*r.Year)
		}
		out[models.TableRawLyrics] = append(out[models.TableRawLyrics], Row{
			"id": r.ID, "title": r.Title, "artist": r.Artist, "album": r.Album,
			"genre": r.Genre, "year": year, "lyrics": r.Lyrics, "source": r.Source,
			"created_at": ts(r.CreatedAt), "file_path": r.FilePath,
		})
	}
	for _, p := range t.Processed {
		out[models.TableProcessedLyrics] = append(out[models.TableProcessedLyrics], Row{
			"id": p.ID, "title": p.Title, "artist": p.Artist,
			"word_count": int64(p.WordCount), "unique_words": int64(p.UniqueWords),
			"avg_word_length": p.AvgWordLength, "readability_score": p.ReadabilityScore,
			"language": p.Language, "processed_text": p.ProcessedText,
			"tokens": jsonString(p.Tokens), "processed_at": ts(p.ProcessedAt),
		})
	}
	for _, w := range t.WordFrequency {
		out[models.TableWordFrequency] = append(out[models.TableWordFrequency], Row{
			"lyrics_id": w.LyricsID, "word": w.Word, "frequency": int64(w.Frequency),
			"tf_idf": w.TFIDF, "pos_tag": w.POSTag, "is_stopword": w.IsStopword,
			"created_at": ts(w.CreatedAt),
		})
	}
	for _, s := range t.Sentiment {
		out[models.TableSentimentAnalysis] = append(out[models.TableSentimentAnalysis], Row{
			"lyrics_id": s.LyricsID, "sentiment_score": s.SentimentScore,
			"sentiment_label": string(s.SentimentLabel), "confidence": s.Confidence,
			"positive_words": jsonString(s.PositiveWords), "negative_words": jsonString(s.NegativeWords),
			"neutral_words": jsonString(s.NeutralWords), "analyzed_at": ts(s.AnalyzedAt),
		})
	}
	return out
}

func ts(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}

func jsonString(v []string) string {
	if v == nil {
		v = []string{}
	}
	b, _ := json.Marshal(v)
	return string(b)
}

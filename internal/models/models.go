package models

import "time"

const (
	TableRawLyrics         = "raw_lyrics"
	TableProcessedLyrics   = "processed_lyrics"
	TableWordFrequency     = "word_frequency"
	TableSentimentAnalysis = "sentiment_analysis"
)

// OutputTables lists the warehouse tables in load order.
var OutputTables = []string{TableRawLyrics, TableProcessedLyrics, TableWordFrequency, TableSentimentAnalysis}

type LyricRecord struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Artist    string    `json:"artist"`
	Album     string    `json:"album"`
	Genre     string    `json:"genre"`
	Year      *int      `json:"year,omitempty"`
	Lyrics    string    `json:"lyrics"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
	FilePath  string    `json:"file_path"`
}

type ProcessedLyric struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Artist           string    `json:"artist"`
	WordCount        int       `json:"word_count"`
	UniqueWords      int       `json:"unique_words"`
	AvgWordLength    float64   `json:"avg_word_length"`
	ReadabilityScore float64   `json:"readability_score"`
	Language         string    `json:"language"`
	ProcessedText    string    `json:"processed_text"`
	Tokens           []string  `json:"tokens"`
	ProcessedAt      time.Time `json:"processed_at"`
}

type WordFrequency struct {
	LyricsID   string    `json:"lyrics_id"`
	Word       string    `json:"word"`
	Frequency  int       `json:"frequency"`
	TFIDF      float64   `json:"tf_idf"`
	POSTag     string    `json:"pos_tag"`
	IsStopword bool      `json:"is_stopword"`
	CreatedAt  time.Time `json:"created_at"`
}

type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNegative SentimentLabel = "negative"
	SentimentNeutral  SentimentLabel = "neutral"
)

type SentimentResult struct {
	LyricsID       string         `json:"lyrics_id"`
	SentimentScore float64        `json:"sentiment_score"`
	SentimentLabel SentimentLabel `json:"sentiment_label"`
	Confidence     float64        `json:"confidence"`
	PositiveWords  []string       `json:"positive_words"`
	NegativeWords  []string       `json:"negative_words"`
	NeutralWords   []string       `json:"neutral_words"`
	AnalyzedAt     time.Time      `json:"analyzed_at"`
}

// Skip records an input file or record that was left out of a run.
type Skip struct {
	Source string `json:"source,omitempty"`
	ID     string `json:"id,omitempty"`
	Reason string `json:"reason"`
}

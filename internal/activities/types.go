package activities

import "lyricflow/internal/models"

type ExtractLyricsInput struct {
	RunID  string `json:"run_id"`
	Prefix string `json:"prefix"`
}

type ExtractLyricsOutput struct {
	RecordsPath  string        `json:"records_path"`
	Extracted    int           `json:"extracted"`
	FilesSeen    int           `json:"files_seen"`
	FilesSkipped int           `json:"files_skipped"`
	Skips        []models.Skip `json:"skips,omitempty"`
}

type TransformLyricsInput struct {
	RunID       string `json:"run_id"`
	RecordsPath string `json:"records_path"`
}

type TransformLyricsOutput struct {
	ProcessedPath     string        `json:"processed_path"`
	WordFrequencyPath string        `json:"word_frequency_path"`
	SentimentPath     string        `json:"sentiment_path"`
	Processed         int           `json:"processed"`
	Skipped           int           `json:"skipped"`
	VocabularySize    int           `json:"vocabulary_size"`
	Skips             []models.Skip `json:"skips,omitempty"`
}

type LoadLyricsInput struct {
	RunID             string `json:"run_id"`
	RecordsPath       string `json:"records_path"`
	ProcessedPath     string `json:"processed_path"`
	WordFrequencyPath string `json:"word_frequency_path"`
	SentimentPath     string `json:"sentiment_path"`
}

type LoadLyricsOutput struct {
	TablesUpdated []string       `json:"tables_updated"`
	RowsLoaded    map[string]int `json:"rows_loaded"`
}

// RecordRunInput carries a run report to the audit store. Final is false for
// the row written when the run starts.
type RecordRunInput struct {
	Prefix string           `json:"prefix"`
	Report models.RunReport `json:"report"`
	Final  bool             `json:"final"`
}

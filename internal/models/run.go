package models

import "time"

type RunStatus string

const (
	StatusSuccess RunStatus = "success"
	StatusNoData  RunStatus = "no_data"
	StatusFailed  RunStatus = "failed"
)

type Stage string

const (
	StageExtracting   Stage = "extracting"
	StageTransforming Stage = "transforming"
	StageLoading      Stage = "loading"
	StageDone         Stage = "done"
	StageFailed       Stage = "failed"
	StageNoData       Stage = "no_data"
)

// Terminal reports whether no further transition can happen from s.
func (s Stage) Terminal() bool {
	return s == StageDone || s == StageFailed || s == StageNoData
}

type RunReport struct {
	RunID           string         `json:"run_id"`
	Status          RunStatus      `json:"status"`
	Stage           Stage          `json:"stage"`
	ExtractedCount  int            `json:"extracted_count"`
	ProcessedCount  int            `json:"processed_count"`
	SkippedCount    int            `json:"skipped_count"`
	FilesSeen       int            `json:"files_seen"`
	FilesSkipped    int            `json:"files_skipped"`
	DurationSeconds float64        `json:"duration_seconds"`
	StartTime       time.Time      `json:"start_time"`
	EndTime         time.Time      `json:"end_time"`
	TablesUpdated   []string       `json:"tables_updated,omitempty"`
	RowsLoaded      map[string]int `json:"rows_loaded,omitempty"`
	ErrorMessage    string         `json:"error_message,omitempty"`
	Skips           []Skip         `json:"skips,omitempty"`
}

// Succeeded is what the CLI maps to exit code 0.
func (r RunReport) Succeeded() bool {
	return r.Status == StatusSuccess
}

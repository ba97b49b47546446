package workflows

import "lyricflow/internal/models"

type LyricsETLInput struct {
	RunID  string `json:"run_id"`
	Prefix string `json:"prefix"`
}

type ETLProgress struct {
	RunID     string       `json:"run_id"`
	Stage     models.Stage `json:"stage"`
	Extracted int          `json:"extracted"`
	Processed int          `json:"processed"`
	Skipped   int          `json:"skipped"`
	Error     string       `json:"error,omitempty"`
}

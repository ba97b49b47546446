package activities

import (
	"context"
	"fmt"
	"path/filepath"

	"go.temporal.io/sdk/temporal"
	"go.uber.org/zap"

	"lyricflow/internal/config"
	"lyricflow/internal/ingest"
	"lyricflow/internal/models"
	"lyricflow/internal/pipeline"
	"lyricflow/internal/util"
	"lyricflow/internal/warehouse"
)

const (
	recordsFile       = "raw_lyrics.jsonl"
	processedFile     = "processed_lyrics.jsonl"
	wordFrequencyFile = "word_frequency.jsonl"
	sentimentFile     = "sentiment_analysis.jsonl"
	reportFile        = "report.json"

	loadFailedType = "LoadFailed"
)

type Activities struct {
	cfg  config.Config
	deps pipeline.Deps
	log  *zap.SugaredLogger
}

func New(cfg config.Config, deps pipeline.Deps) *Activities {
	log := deps.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Activities{cfg: cfg, deps: deps, log: log}
}

func (a *Activities) runDir(runID string) string {
	return util.RunDir(a.cfg.DataOutRoot, runID)
}

func (a *Activities) ExtractLyricsActivity(ctx context.Context, in ExtractLyricsInput) (ExtractLyricsOutput, error) {
	log := a.log.With("run_id", in.RunID)
	ex, err := pipeline.Extract(ctx, a.deps.Store, ingest.NewParser(), in.Prefix, log)
	if err != nil {
		return ExtractLyricsOutput{}, err
	}
	out := ExtractLyricsOutput{
		Extracted:    len(ex.Records),
		FilesSeen:    ex.FilesSeen,
		FilesSkipped: ex.FilesSkipped,
		Skips:        ex.Skips,
	}
	if len(ex.Records) == 0 {
		return out, nil
	}
	out.RecordsPath = filepath.Join(a.runDir(in.RunID), recordsFile)
	if err := util.WriteRowsAtomic(out.RecordsPath, ex.Records); err != nil {
		return ExtractLyricsOutput{}, fmt.Errorf("write records: %w", err)
	}
	return out, nil
}

func (a *Activities) TransformLyricsActivity(ctx context.Context, in TransformLyricsInput) (TransformLyricsOutput, error) {
	records, err := util.ReadJSONLines[models.LyricRecord](in.RecordsPath)
	if err != nil {
		return TransformLyricsOutput{}, fmt.Errorf("read records: %w", err)
	}
	res, err := a.deps.Transformer.Transform(ctx, records)
	if err != nil {
		return TransformLyricsOutput{}, err
	}
	dir := a.runDir(in.RunID)
	out := TransformLyricsOutput{
		ProcessedPath:     filepath.Join(dir, processedFile),
		WordFrequencyPath: filepath.Join(dir, wordFrequencyFile),
		SentimentPath:     filepath.Join(dir, sentimentFile),
		Processed:         len(res.Processed),
		Skipped:           len(res.Skips),
		VocabularySize:    res.VocabularySize,
		Skips:             res.Skips,
	}
	if err := util.WriteRowsAtomic(out.ProcessedPath, res.Processed); err != nil {
		return TransformLyricsOutput{}, fmt.Errorf("write processed lyrics: %w", err)
	}
	if err := util.WriteRowsAtomic(out.WordFrequencyPath, res.WordFrequency); err != nil {
		return TransformLyricsOutput{}, fmt.Errorf("write word frequency: %w", err)
	}
	if err := util.WriteRowsAtomic(out.SentimentPath, res.Sentiment); err != nil {
		return TransformLyricsOutput{}, fmt.Errorf("write sentiment: %w", err)
	}
	return out, nil
}

// LoadLyricsActivity appends every artifact of a run to the warehouse. Load
// errors are non-retryable: warehouse tables carry no unique keys, so a
// second attempt after a partial load would append duplicates.
func (a *Activities) LoadLyricsActivity(ctx context.Context, in LoadLyricsInput) (LoadLyricsOutput, error) {
	var (
		t   warehouse.Tables
		err error
	)
	if t.Raw, err = util.ReadJSONLines[models.LyricRecord](in.RecordsPath); err != nil {
		return LoadLyricsOutput{}, fmt.Errorf("read records: %w", err)
	}
	if t.Processed, err = util.ReadJSONLines[models.ProcessedLyric](in.ProcessedPath); err != nil {
		return LoadLyricsOutput{}, fmt.Errorf("read processed lyrics: %w", err)
	}
	if t.WordFrequency, err = util.ReadJSONLines[models.WordFrequency](in.WordFrequencyPath); err != nil {
		return LoadLyricsOutput{}, fmt.Errorf("read word frequency: %w", err)
	}
	if t.Sentiment, err = util.ReadJSONLines[models.SentimentResult](in.SentimentPath); err != nil {
		return LoadLyricsOutput{}, fmt.Errorf("read sentiment: %w", err)
	}
	res, err := warehouse.LoadAll(ctx, a.deps.Loader, t, a.cfg.BatchSize, a.log.With("run_id", in.RunID))
	if err != nil {
		return LoadLyricsOutput{}, temporal.NewNonRetryableApplicationError(err.Error(), loadFailedType, err)
	}
	return LoadLyricsOutput{TablesUpdated: res.TablesUpdated, RowsLoaded: res.RowsLoaded}, nil
}

func (a *Activities) RecordRunActivity(ctx context.Context, in RecordRunInput) error {
	rep := in.Report
	if !in.Final {
		if a.deps.Runs == nil {
			return nil
		}
		if err := a.deps.Runs.Start(ctx, rep.RunID, in.Prefix, rep); err != nil {
			return fmt.Errorf("record run start: %w", err)
		}
		return nil
	}

	if err := util.WriteJSONAtomic(filepath.Join(a.runDir(rep.RunID), reportFile), rep); err != nil {
		return fmt.Errorf("write run report: %w", err)
	}
	a.deps.Metrics.ObserveRun(rep)
	if a.deps.Runs != nil {
		if err := a.deps.Runs.Finish(ctx, rep); err != nil {
			return fmt.Errorf("record run finish: %w", err)
		}
	}
	a.log.Infow("recorded run", "run_id", rep.RunID, "status", rep.Status)
	return nil
}

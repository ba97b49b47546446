// Package pipeline runs extract, transform and load in-process.
package pipeline

import (
	"context"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lyricflow/internal/ingest"
	"lyricflow/internal/metrics"
	"lyricflow/internal/models"
	"lyricflow/internal/objectstore"
	"lyricflow/internal/transform"
	"lyricflow/internal/util"
	"lyricflow/internal/warehouse"
)

// RunRecorder persists run audit rows. Failures are logged, never fatal.
type RunRecorder interface {
	Start(ctx context.Context, runID, prefix string, rep models.RunReport) error
	Finish(ctx context.Context, rep models.RunReport) error
}

type Deps struct {
	Store       objectstore.Store
	Transformer *transform.Transformer
	Loader      warehouse.Loader
	Runs        RunRecorder
	Metrics     *metrics.Metrics
	Log         *zap.SugaredLogger
}

type Options struct {
	BatchSize int
	OutRoot   string
}

type Runner struct {
	deps   Deps
	opts   Options
	parser ingest.Parser
	now    func() time.Time
	newID  func() string
}

func New(deps Deps, opts Options) *Runner {
	if deps.Log == nil {
		deps.Log = zap.NewNop().Sugar()
	}
	return &Runner{
		deps:   deps,
		opts:   opts,
		parser: ingest.NewParser(),
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
}

// Run executes one ETL pass over prefix. It never returns an error; the
// outcome is in the report's Status.
func (r *Runner) Run(ctx context.Context, prefix string) models.RunReport {
	rep := models.RunReport{
		RunID:     r.newID(),
		Stage:     models.StageExtracting,
		StartTime: r.now().UTC(),
	}
	log := r.deps.Log.With("run_id", rep.RunID)
	log.Infow("starting etl run", "prefix", prefix)
	if r.deps.Runs != nil {
		if err := r.deps.Runs.Start(ctx, rep.RunID, prefix, rep); err != nil {
			log.Warnw("record run start", "error", err)
		}
	}

	r.execute(ctx, prefix, &rep, log)
	r.finish(ctx, &rep, log)
	return rep
}

func (r *Runner) execute(ctx context.Context, prefix string, rep *models.RunReport, log *zap.SugaredLogger) {
	stageStart := r.now()
	ex, err := Extract(ctx, r.deps.Store, r.parser, prefix, log)
	r.deps.Metrics.ObserveStage(models.StageExtracting, r.now().Sub(stageStart))
	if err != nil {
		fail(rep, err)
		return
	}
	rep.FilesSeen = ex.FilesSeen
	rep.FilesSkipped = ex.FilesSkipped
	rep.ExtractedCount = len(ex.Records)
	rep.Skips = append(rep.Skips, ex.Skips...)
	if len(ex.Records) == 0 {
		log.Warnw("no lyric records found", "prefix", prefix)
		rep.Status = models.StatusNoData
		rep.Stage = models.StageNoData
		return
	}

	rep.Stage = models.StageTransforming
	stageStart = r.now()
	res, err := r.deps.Transformer.Transform(ctx, ex.Records)
	r.deps.Metrics.ObserveStage(models.StageTransforming, r.now().Sub(stageStart))
	if err != nil {
		fail(rep, err)
		return
	}
	rep.ProcessedCount = len(res.Processed)
	rep.SkippedCount = len(res.Skips)
	rep.Skips = append(rep.Skips, res.Skips...)

	rep.Stage = models.StageLoading
	stageStart = r.now()
	tables := warehouse.Tables{
		Raw:           ex.Records,
		Processed:     res.Processed,
		WordFrequency: res.WordFrequency,
		Sentiment:     res.Sentiment,
	}
	loaded, err := warehouse.LoadAll(ctx, r.deps.Loader, tables, r.opts.BatchSize, log)
	r.deps.Metrics.ObserveStage(models.StageLoading, r.now().Sub(stageStart))
	rep.TablesUpdated = loaded.TablesUpdated
	rep.RowsLoaded = loaded.RowsLoaded
	if err != nil {
		fail(rep, err)
		return
	}

	rep.Status = models.StatusSuccess
	rep.Stage = models.StageDone
}

func fail(rep *models.RunReport, err error) {
	rep.Status = models.StatusFailed
	rep.Stage = models.StageFailed
	rep.ErrorMessage = err.Error()
}

func (r *Runner) finish(ctx context.Context, rep *models.RunReport, log *zap.SugaredLogger) {
	rep.EndTime = r.now().UTC()
	rep.DurationSeconds = rep.EndTime.Sub(rep.StartTime).Seconds()

	if r.opts.OutRoot != "" {
		path := filepath.Join(util.RunDir(r.opts.OutRoot, rep.RunID), "report.json")
		if err := util.WriteJSONAtomic(path, rep); err != nil {
			log.Warnw("write run report", "error", err)
		}
	}
	// The audit row is written even when ctx was cancelled mid-run.
	if r.deps.Runs != nil {
		if err := r.deps.Runs.Finish(context.WithoutCancel(ctx), *rep); err != nil {
			log.Warnw("record run finish", "error", err)
		}
	}
	r.deps.Metrics.ObserveRun(*rep)

	if rep.Status == models.StatusFailed {
		log.Errorw("etl run failed", "stage_error", rep.ErrorMessage, "duration_seconds", rep.DurationSeconds)
		return
	}
	log.Infow("etl run finished",
		"status", rep.Status,
		"extracted", rep.ExtractedCount,
		"processed", rep.ProcessedCount,
		"skipped", rep.SkippedCount,
		"tables", rep.TablesUpdated,
		"duration_seconds", rep.DurationSeconds)
}

package workflows

import (
	"time"

	"lyricflow/internal/activities"
	"lyricflow/internal/models"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const QueryGetProgress = "GetProgress"

// LyricsETLWorkflow runs extract, transform and load as activities. Stage
// failures end the run with status failed; the workflow itself only errors
// when its query handler cannot be installed.
func LyricsETLWorkflow(ctx workflow.Context, input LyricsETLInput) (models.RunReport, error) {
	runID := input.RunID
	if runID == "" {
		runID = workflow.GetInfo(ctx).WorkflowExecution.ID
	}
	rep := models.RunReport{
		RunID:     runID,
		Stage:     models.StageExtracting,
		StartTime: workflow.Now(ctx).UTC(),
	}
	progress := ETLProgress{RunID: runID, Stage: rep.Stage}
	if err := workflow.SetQueryHandler(ctx, QueryGetProgress, func() (ETLProgress, error) {
		return progress, nil
	}); err != nil {
		return rep, err
	}

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)
	auditCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 2},
	})
	// Appends are not idempotent; a second attempt would duplicate the
	// tables that already landed.
	loadCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Minute,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 1},
	})
	logger := workflow.GetLogger(ctx)

	if err := workflow.ExecuteActivity(auditCtx, "RecordRunActivity", activities.RecordRunInput{
		Prefix: input.Prefix,
		Report: rep,
	}).Get(ctx, nil); err != nil {
		logger.Warn("record run start failed", "error", err)
	}

	setStage := func(s models.Stage) {
		rep.Stage = s
		progress.Stage = s
	}
	fail := func(err error) {
		rep.Status = models.StatusFailed
		rep.ErrorMessage = err.Error()
		progress.Error = rep.ErrorMessage
		setStage(models.StageFailed)
	}

	run := func() {
		var ex activities.ExtractLyricsOutput
		if err := workflow.ExecuteActivity(ctx, "ExtractLyricsActivity", activities.ExtractLyricsInput{
			RunID:  runID,
			Prefix: input.Prefix,
		}).Get(ctx, &ex); err != nil {
			fail(err)
			return
		}
		rep.ExtractedCount = ex.Extracted
		rep.FilesSeen = ex.FilesSeen
		rep.FilesSkipped = ex.FilesSkipped
		rep.Skips = append(rep.Skips, ex.Skips...)
		progress.Extracted = ex.Extracted
		if ex.Extracted == 0 {
			rep.Status = models.StatusNoData
			setStage(models.StageNoData)
			return
		}

		setStage(models.StageTransforming)
		var tr activities.TransformLyricsOutput
		if err := workflow.ExecuteActivity(ctx, "TransformLyricsActivity", activities.TransformLyricsInput{
			RunID:       runID,
			RecordsPath: ex.RecordsPath,
		}).Get(ctx, &tr); err != nil {
			fail(err)
			return
		}
		rep.ProcessedCount = tr.Processed
		rep.SkippedCount = tr.Skipped
		rep.Skips = append(rep.Skips, tr.Skips...)
		progress.Processed = tr.Processed
		progress.Skipped = tr.Skipped

		setStage(models.StageLoading)
		var ld activities.LoadLyricsOutput
		if err := workflow.ExecuteActivity(loadCtx, "LoadLyricsActivity", activities.LoadLyricsInput{
			RunID:             runID,
			RecordsPath:       ex.RecordsPath,
			ProcessedPath:     tr.ProcessedPath,
			WordFrequencyPath: tr.WordFrequencyPath,
			SentimentPath:     tr.SentimentPath,
		}).Get(ctx, &ld); err != nil {
			fail(err)
			return
		}
		rep.TablesUpdated = ld.TablesUpdated
		rep.RowsLoaded = ld.RowsLoaded
		rep.Status = models.StatusSuccess
		setStage(models.StageDone)
	}
	run()

	rep.EndTime = workflow.Now(ctx).UTC()
	rep.DurationSeconds = rep.EndTime.Sub(rep.StartTime).Seconds()
	if err := workflow.ExecuteActivity(auditCtx, "RecordRunActivity", activities.RecordRunInput{
		Prefix: input.Prefix,
		Report: rep,
		Final:  true,
	}).Get(ctx, nil); err != nil {
		logger.Warn("record run finish failed", "error", err)
	}
	return rep, nil
}

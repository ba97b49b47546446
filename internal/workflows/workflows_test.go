package workflows

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"lyricflow/internal/activities"
	"lyricflow/internal/config"
	"lyricflow/internal/models"
	"lyricflow/internal/objectstore"
	"lyricflow/internal/pipeline"
	"lyricflow/internal/transform"
	"lyricflow/internal/warehouse"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"
)

func registerActivityName[T any](env *testsuite.TestWorkflowEnvironment, name string, fn T) {
	env.RegisterActivityWithOptions(fn, activity.RegisterOptions{Name: name})
}

func newEnv() *testsuite.TestWorkflowEnvironment {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(LyricsETLWorkflow)
	registerActivityName(env, "ExtractLyricsActivity", func(context.Context, activities.ExtractLyricsInput) (activities.ExtractLyricsOutput, error) {
		return activities.ExtractLyricsOutput{}, nil
	})
	registerActivityName(env, "TransformLyricsActivity", func(context.Context, activities.TransformLyricsInput) (activities.TransformLyricsOutput, error) {
		return activities.TransformLyricsOutput{}, nil
	})
	registerActivityName(env, "LoadLyricsActivity", func(context.Context, activities.LoadLyricsInput) (activities.LoadLyricsOutput, error) {
		return activities.LoadLyricsOutput{}, nil
	})
	registerActivityName(env, "RecordRunActivity", func(context.Context, activities.RecordRunInput) error { return nil })
	return env
}

func result(t *testing.T, env *testsuite.TestWorkflowEnvironment) models.RunReport {
	t.Helper()
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	var rep models.RunReport
	require.NoError(t, env.GetWorkflowResult(&rep))
	return rep
}

func TestLyricsETLWorkflowSuccess(t *testing.T) {
	env := newEnv()
	env.OnActivity("RecordRunActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("ExtractLyricsActivity", mock.Anything, activities.ExtractLyricsInput{RunID: "run-1", Prefix: "raw-data/"}).
		Return(activities.ExtractLyricsOutput{RecordsPath: "/out/run-1/raw_lyrics.jsonl", Extracted: 3, FilesSeen: 2}, nil)
	env.OnActivity("TransformLyricsActivity", mock.Anything, activities.TransformLyricsInput{RunID: "run-1", RecordsPath: "/out/run-1/raw_lyrics.jsonl"}).
		Return(activities.TransformLyricsOutput{ProcessedPath: "p", WordFrequencyPath: "w", SentimentPath: "s", Processed: 2, Skipped: 1,
			Skips: []models.Skip{{ID: "x", Reason: "too large"}}}, nil)
	env.OnActivity("LoadLyricsActivity", mock.Anything, mock.Anything).
		Return(activities.LoadLyricsOutput{TablesUpdated: models.OutputTables, RowsLoaded: map[string]int{models.TableRawLyrics: 3}}, nil)

	env.ExecuteWorkflow(LyricsETLWorkflow, LyricsETLInput{RunID: "run-1", Prefix: "raw-data/"})
	rep := result(t, env)
	require.Equal(t, models.StatusSuccess, rep.Status)
	require.Equal(t, models.StageDone, rep.Stage)
	require.Equal(t, 3, rep.ExtractedCount)
	require.Equal(t, 2, rep.ProcessedCount)
	require.Equal(t, 1, rep.SkippedCount)
	require.Len(t, rep.Skips, 1)
	require.Equal(t, models.OutputTables, rep.TablesUpdated)

	v, err := env.QueryWorkflow(QueryGetProgress)
	require.NoError(t, err)
	var p ETLProgress
	require.NoError(t, v.Get(&p))
	require.Equal(t, models.StageDone, p.Stage)
	require.Equal(t, 2, p.Processed)
}

func TestLyricsETLWorkflowNoData(t *testing.T) {
	env := newEnv()
	env.OnActivity("RecordRunActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("ExtractLyricsActivity", mock.Anything, mock.Anything).Return(activities.ExtractLyricsOutput{}, nil)

	env.ExecuteWorkflow(LyricsETLWorkflow, LyricsETLInput{RunID: "run-2", Prefix: "raw-data/"})
	rep := result(t, env)
	require.Equal(t, models.StatusNoData, rep.Status)
	require.Equal(t, models.StageNoData, rep.Stage)
	require.False(t, rep.Succeeded())
	env.AssertNotCalled(t, "TransformLyricsActivity", mock.Anything, mock.Anything)
}

func TestLyricsETLWorkflowLoadFailure(t *testing.T) {
	env := newEnv()
	env.OnActivity("RecordRunActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("ExtractLyricsActivity", mock.Anything, mock.Anything).Return(activities.ExtractLyricsOutput{RecordsPath: "r", Extracted: 1}, nil)
	env.OnActivity("TransformLyricsActivity", mock.Anything, mock.Anything).Return(activities.TransformLyricsOutput{Processed: 1}, nil)
	env.OnActivity("LoadLyricsActivity", mock.Anything, mock.Anything).Return(activities.LoadLyricsOutput{}, errors.New("warehouse unavailable"))

	env.ExecuteWorkflow(LyricsETLWorkflow, LyricsETLInput{RunID: "run-3", Prefix: "raw-data/"})
	rep := result(t, env)
	require.Equal(t, models.StatusFailed, rep.Status)
	require.Equal(t, models.StageFailed, rep.Stage)
	require.Contains(t, rep.ErrorMessage, "warehouse unavailable")
}

func TestLyricsETLWorkflowIgnoresAuditFailure(t *testing.T) {
	env := newEnv()
	env.OnActivity("RecordRunActivity", mock.Anything, mock.Anything).Return(errors.New("db down"))
	env.OnActivity("ExtractLyricsActivity", mock.Anything, mock.Anything).Return(activities.ExtractLyricsOutput{}, nil)

	env.ExecuteWorkflow(LyricsETLWorkflow, LyricsETLInput{RunID: "run-4"})
	rep := result(t, env)
	require.Equal(t, models.StatusNoData, rep.Status)
}

// flakyLoader rejects the first append to failOn and counts every row it
// accepts.
type flakyLoader struct {
	mu     sync.Mutex
	failOn string
	failed bool
	rows   map[string]int
}

func (l *flakyLoader) Append(_ context.Context, table string, rows []warehouse.Row) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if table == l.failOn && !l.failed {
		l.failed = true
		return errors.New("quota exceeded")
	}
	l.rows[table] += len(rows)
	return nil
}

func TestLyricsETLWorkflowPartialLoadIsNotRetried(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "raw-data"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "raw-data", "songs.json"), []byte(`[
		{"id":"s1","title":"Up","artist":"A","lyrics":"happy happy love in the summer sun"},
		{"id":"s2","title":"Down","artist":"B","lyrics":"cold rain and broken hearts at night"}]`), 0o644))

	cfg := config.Defaults()
	cfg.DataOutRoot = t.TempDir()
	loader := &flakyLoader{failOn: models.TableSentimentAnalysis, rows: map[string]int{}}
	a := activities.New(cfg, pipeline.Deps{
		Store:       objectstore.NewLocal(root),
		Transformer: transform.New(transform.LoadResources(), transform.Options{MinWordLength: 3, MaxFeatures: 100}, nil),
		Loader:      loader,
	})

	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(LyricsETLWorkflow)
	env.RegisterActivity(a)

	env.ExecuteWorkflow(LyricsETLWorkflow, LyricsETLInput{RunID: "run-5", Prefix: "raw-data/"})
	rep := result(t, env)
	require.Equal(t, models.StatusFailed, rep.Status)
	require.Equal(t, models.StageFailed, rep.Stage)
	require.Contains(t, rep.ErrorMessage, "quota exceeded")
	require.Equal(t, 2, rep.ExtractedCount)

	loader.mu.Lock()
	defer loader.mu.Unlock()
	require.Equal(t, 2, loader.rows[models.TableRawLyrics])
	require.Equal(t, 2, loader.rows[models.TableProcessedLyrics])
	require.Zero(t, loader.rows[models.TableSentimentAnalysis])
}

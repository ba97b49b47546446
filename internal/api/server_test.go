package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	tclient "go.temporal.io/sdk/client"

	"lyricflow/internal/config"
	"lyricflow/internal/metrics"
	"lyricflow/internal/models"
	"lyricflow/internal/report"
	"lyricflow/internal/storage"
	"lyricflow/internal/workflows"
)

type fakeRuns struct {
	reports map[string]models.RunReport
}

func (f fakeRuns) Get(_ context.Context, runID string) (models.RunReport, string, error) {
	rep, ok := f.reports[runID]
	if !ok {
		return models.RunReport{}, "", storage.ErrRunNotFound
	}
	return rep, string(rep.Status), nil
}

func (f fakeRuns) ListRecent(_ context.Context, limit int) ([]models.RunReport, error) {
	var out []models.RunReport
	for _, r := range f.reports {
		if len(out) == limit {
			break
		}
		out = append(out, r)
	}
	return out, nil
}

type fakeSummary struct {
	sum report.Summary
	err error
}

func (f fakeSummary) Build(context.Context) (report.Summary, error) { return f.sum, f.err }

type fakeWorkflowRun struct {
	tclient.WorkflowRun
	id string
}

func (r fakeWorkflowRun) GetID() string    { return r.id }
func (r fakeWorkflowRun) GetRunID() string { return "wf-run" }

type fakeTemporal struct {
	tclient.Client
	started []workflows.LyricsETLInput
	opts    []tclient.StartWorkflowOptions
}

func (f *fakeTemporal) ExecuteWorkflow(_ context.Context, opts tclient.StartWorkflowOptions, _ interface{}, args ...interface{}) (tclient.WorkflowRun, error) {
	f.opts = append(f.opts, opts)
	f.started = append(f.started, args[0].(workflows.LyricsETLInput))
	return fakeWorkflowRun{id: opts.ID}, nil
}

func newTestServer(deps Deps) http.Handler {
	cfg := config.Defaults()
	cfg.Environment = config.EnvTesting
	return NewServer(cfg, deps).Routes()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Code
}

func TestHealthz(t *testing.T) {
	rec := do(t, newTestServer(Deps{}), http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"ok":true`)
}

func TestStartRunUsesDefaultPrefix(t *testing.T) {
	tc := &fakeTemporal{}
	h := newTestServer(Deps{Temporal: tc})

	rec := do(t, h, http.MethodPost, "/runs", "")
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, tc.started, 1)
	require.Equal(t, "raw-data/", tc.started[0].Prefix)
	require.Equal(t, WorkflowID(tc.started[0].RunID), tc.opts[0].ID)
	require.Equal(t, "lyricflow", tc.opts[0].TaskQueue)

	rec = do(t, h, http.MethodPost, "/runs", `{"prefix":"batch-7/"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Equal(t, "batch-7/", tc.started[1].Prefix)

	rec = do(t, h, http.MethodPost, "/runs", `{`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "LY-API-4001", errorCode(t, rec))
}

func TestGetRun(t *testing.T) {
	h := newTestServer(Deps{Runs: fakeRuns{reports: map[string]models.RunReport{
		"r1": {RunID: "r1", Status: models.StatusSuccess, ExtractedCount: 4},
	}}})

	rec := do(t, h, http.MethodGet, "/runs/r1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Status string           `json:"status"`
		Report models.RunReport `json:"report"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "success", body.Status)
	require.Equal(t, 4, body.Report.ExtractedCount)

	rec = do(t, h, http.MethodGet, "/runs/nope", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/runs?limit=x", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodDelete, "/runs/r1", "")
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestUnconfiguredRoutesAnswer503(t *testing.T) {
	h := newTestServer(Deps{})
	for _, path := range []string{"/runs/r1", "/reports/summary", "/runs/r1/progress"} {
		rec := do(t, h, http.MethodGet, path, "")
		require.Equal(t, http.StatusServiceUnavailable, rec.Code, path)
		require.Equal(t, "LY-API-5030", errorCode(t, rec))
	}
}

func TestSummary(t *testing.T) {
	sum := report.Summary{SentimentByGenre: []report.GenreSentiment{{Genre: "pop", SongCount: 12, AvgSentiment: 0.3}}}
	h := newTestServer(Deps{Reports: fakeSummary{sum: sum}})

	rec := do(t, h, http.MethodGet, "/reports/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got report.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "pop", got.SentimentByGenre[0].Genre)

	rec = do(t, h, http.MethodGet, "/reports/summary?format=md", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/markdown")
	require.Contains(t, rec.Body.String(), "| pop |")

	h = newTestServer(Deps{Reports: fakeSummary{err: errors.New("SQL logic error: no such table: raw_lyrics")}})
	rec = do(t, h, http.MethodGet, "/reports/summary", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "LY-WH-5001", errorCode(t, rec))
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.ObserveRun(models.RunReport{Status: models.StatusSuccess})
	h := newTestServer(Deps{Gatherer: reg})

	rec := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `lyricflow_runs_total{status="success"} 1`)
}

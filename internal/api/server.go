package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	enumspb "go.temporal.io/api/enums/v1"
	tclient "go.temporal.io/sdk/client"
	"go.uber.org/zap"

	"lyricflow/internal/config"
	"lyricflow/internal/models"
	"lyricflow/internal/report"
	"lyricflow/internal/storage"
	"lyricflow/internal/workflows"
)

type RunStore interface {
	Get(ctx context.Context, runID string) (models.RunReport, string, error)
	ListRecent(ctx context.Context, limit int) ([]models.RunReport, error)
}

type SummaryBuilder interface {
	Build(ctx context.Context) (report.Summary, error)
}

// Deps are optional; routes whose dependency is nil answer 503.
type Deps struct {
	Temporal tclient.Client
	Runs     RunStore
	Reports  SummaryBuilder
	Gatherer prometheus.Gatherer
	Log      *zap.SugaredLogger
}

type Server struct {
	cfg      config.Config
	temporal tclient.Client
	runs     RunStore
	reports  SummaryBuilder
	gatherer prometheus.Gatherer
	log      *zap.SugaredLogger
}

var errUnavailable = errors.New("dependency not configured")

func NewServer(cfg config.Config, deps Deps) *Server {
	if deps.Log == nil {
		deps.Log = zap.NewNop().Sugar()
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}
	return &Server{
		cfg:      cfg,
		temporal: deps.Temporal,
		runs:     deps.Runs,
		reports:  deps.Reports,
		gatherer: deps.Gatherer,
		log:      deps.Log,
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/runs", s.handleRuns)
	mux.HandleFunc("/runs/", s.handleRunScoped)
	mux.HandleFunc("/reports/summary", s.handleSummary)
	mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return withCORS(mux)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "environment": s.cfg.Environment})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if s.runs == nil {
			writeErr(w, http.StatusServiceUnavailable, errUnavailable)
			return
		}
		limit := 20
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", v))
				return
			}
			limit = n
		}
		runs, err := s.runs.ListRecent(r.Context(), limit)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
	case http.MethodPost:
		if s.temporal == nil {
			writeErr(w, http.StatusServiceUnavailable, errUnavailable)
			return
		}
		var req struct {
			Prefix string `json:"prefix"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
			return
		}
		prefix := strings.TrimSpace(req.Prefix)
		if prefix == "" {
			prefix = s.cfg.InputPrefix
		}
		runID := uuid.NewString()
		we, err := s.temporal.ExecuteWorkflow(r.Context(), tclient.StartWorkflowOptions{
			ID:                    WorkflowID(runID),
			TaskQueue:             s.cfg.TemporalTaskQueue,
			WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE,
		}, workflows.LyricsETLWorkflow, workflows.LyricsETLInput{RunID: runID, Prefix: prefix})
		if err != nil {
			writeErr(w, http.StatusConflict, err)
			return
		}
		s.log.Infow("started etl workflow", "run_id", runID, "workflow_id", we.GetID(), "prefix", prefix)
		writeJSON(w, http.StatusAccepted, map[string]any{"run_id": runID, "workflow_id": we.GetID(), "workflow_run_id": we.GetRunID()})
	default:
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
	}
}

// WorkflowID is the Temporal workflow id used for an ETL run.
func WorkflowID(runID string) string {
	return "lyrics-etl-" + runID
}

func (s *Server) handleRunScoped(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/runs/"), "/"), "/")
	runID := parts[0]
	if runID == "" || len(parts) > 2 {
		writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
		return
	}
	if len(parts) == 2 {
		if parts[1] != "progress" {
			writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
			return
		}
		s.handleProgress(w, r, runID)
		return
	}

	if s.runs == nil {
		writeErr(w, http.StatusServiceUnavailable, errUnavailable)
		return
	}
	rep, status, err := s.runs.Get(r.Context(), runID)
	if errors.Is(err, storage.ErrRunNotFound) {
		writeErr(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": status, "report": rep})
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request, runID string) {
	if s.temporal == nil {
		writeErr(w, http.StatusServiceUnavailable, errUnavailable)
		return
	}
	resp, err := s.temporal.QueryWorkflow(r.Context(), WorkflowID(runID), "", workflows.QueryGetProgress)
	if err != nil {
		writeErr(w, http.StatusNotFound, err)
		return
	}
	var prog workflows.ETLProgress
	if err := resp.Get(&prog); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, prog)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	if s.reports == nil {
		writeErr(w, http.StatusServiceUnavailable, errUnavailable)
		return
	}
	sum, err := s.reports.Build(r.Context())
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	if r.URL.Query().Get("format") == "md" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, report.Markdown(sum))
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, err error) {
	apiErr := toAPIError(code, err)
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"code":    apiErr.Code,
			"message": apiErr.Message,
		},
	})
}

type apiError struct {
	Code    string
	Message string
}

func toAPIError(status int, err error) apiError {
	msg := "Request failed."
	code := "LY-API-4000"
	raw := ""
	if err != nil {
		raw = strings.ToLower(err.Error())
	}

	switch {
	case status == http.StatusServiceUnavailable:
		return apiError{
			Code:    "LY-API-5030",
			Message: "This endpoint is not configured on this server.",
		}
	case status >= 500:
		switch {
		case strings.Contains(raw, "no such table"),
			strings.Contains(raw, "relation") && strings.Contains(raw, "does not exist"):
			return apiError{
				Code:    "LY-WH-5001",
				Message: "Warehouse tables are missing. Run the ETL pipeline first.",
			}
		case strings.Contains(raw, "connect"), strings.Contains(raw, "dial tcp"), strings.Contains(raw, "connection refused"):
			return apiError{
				Code:    "LY-DB-5002",
				Message: "Database connection is unavailable. Check local services and retry.",
			}
		default:
			return apiError{
				Code:    "LY-API-5000",
				Message: "Internal server error. Please retry or check service logs.",
			}
		}
	case status == http.StatusBadRequest:
		code = "LY-API-4001"
		msg = "Invalid request. Check inputs and retry."
	case status == http.StatusNotFound:
		code = "LY-API-4004"
		msg = "Requested resource was not found."
	case status == http.StatusConflict:
		code = "LY-API-4009"
		msg = "Could not start the run. Retry after checking status."
	case status == http.StatusMethodNotAllowed:
		code = "LY-API-4005"
		msg = "This endpoint does not support the requested method."
	}

	if status >= 400 && status < 500 && err != nil {
		switch {
		case strings.Contains(raw, "invalid json"):
			msg = "Malformed JSON request body."
		case strings.Contains(raw, "invalid limit"):
			msg = "limit must be a positive integer."
		}
	}

	return apiError{Code: code, Message: msg}
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

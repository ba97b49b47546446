package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"lyricflow/internal/models"
)

var ErrRunNotFound = errors.New("pipeline run not found")

// RunRepo keeps one audit row per ETL run in pipeline_runs.
type RunRepo struct {
	db *DB
}

func NewRunRepo(db *DB) *RunRepo {
	return &RunRepo{db: db}
}

func (r *RunRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.db.Pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS pipeline_runs (
  run_id          TEXT PRIMARY KEY,
  status          TEXT NOT NULL,
  stage           TEXT NOT NULL,
  input_prefix    TEXT NOT NULL DEFAULT '',
  extracted_count INTEGER NOT NULL DEFAULT 0,
  processed_count INTEGER NOT NULL DEFAULT 0,
  skipped_count   INTEGER NOT NULL DEFAULT 0,
  error_message   TEXT,
  report          JSONB NOT NULL,
  started_at      TIMESTAMPTZ NOT NULL,
  finished_at     TIMESTAMPTZ,
  updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
)`)
	if err != nil {
		return fmt.Errorf("create pipeline_runs: %w", err)
	}
	return nil
}

// Start records a run that has begun but not finished.
func (r *RunRepo) Start(ctx context.Context, runID, prefix string, rep models.RunReport) error {
	b, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("marshal run report: %w", err)
	}
	_, err = r.db.Pool.Exec(ctx, `
INSERT INTO pipeline_runs (run_id, status, stage, input_prefix, report, started_at)
VALUES ($1, 'running', $2, $3, $4::jsonb, $5)
ON CONFLICT (run_id) DO NOTHING`, runID, string(rep.Stage), prefix, string(b), rep.StartTime)
	if err != nil {
		return fmt.Errorf("start pipeline run: %w", err)
	}
	return nil
}

// Finish stores the final report, inserting the row when Start was skipped.
func (r *RunRepo) Finish(ctx context.Context, rep models.RunReport) error {
	b, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("marshal run report: %w", err)
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
INSERT INTO pipeline_runs (run_id, status, stage, extracted_count, processed_count, skipped_count, error_message, report, started_at, finished_at)
VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7,''), $8::jsonb, $9, $10)
ON CONFLICT (run_id) DO UPDATE SET
  status = EXCLUDED.status,
  stage = EXCLUDED.stage,
  extracted_count = EXCLUDED.extracted_count,
  processed_count = EXCLUDED.processed_count,
  skipped_count = EXCLUDED.skipped_count,
  error_message = EXCLUDED.error_message,
  report = EXCLUDED.report,
  finished_at = EXCLUDED.finished_at,
  updated_at = now()`,
		rep.RunID, string(rep.Status), string(rep.Stage), rep.ExtractedCount, rep.ProcessedCount, rep.SkippedCount,
		rep.ErrorMessage, string(b), rep.StartTime, rep.EndTime)
	if err != nil {
		return fmt.Errorf("finish pipeline run: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Get returns the stored report and the raw status column, which is
// "running" until Finish is called.
func (r *RunRepo) Get(ctx context.Context, runID string) (models.RunReport, string, error) {
	var raw []byte
	var status string
	err := r.db.Pool.QueryRow(ctx, `SELECT report, status FROM pipeline_runs WHERE run_id=$1`, runID).Scan(&raw, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.RunReport{}, "", ErrRunNotFound
	}
	if err != nil {
		return models.RunReport{}, "", fmt.Errorf("get pipeline run: %w", err)
	}
	var rep models.RunReport
	if err := json.Unmarshal(raw, &rep); err != nil {
		return models.RunReport{}, "", fmt.Errorf("decode pipeline run: %w", err)
	}
	return rep, status, nil
}

func (r *RunRepo) ListRecent(ctx context.Context, limit int) ([]models.RunReport, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.Pool.Query(ctx, `SELECT report FROM pipeline_runs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list pipeline runs: %w", err)
	}
	defer rows.Close()
	var out []models.RunReport
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan pipeline run: %w", err)
		}
		var rep models.RunReport
		if err := json.Unmarshal(raw, &rep); err != nil {
			return nil, fmt.Errorf("decode pipeline run: %w", err)
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

// Package app wires configured backends for the command binaries.
package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"lyricflow/internal/config"
	"lyricflow/internal/metrics"
	"lyricflow/internal/objectstore"
	"lyricflow/internal/pipeline"
	"lyricflow/internal/storage"
	"lyricflow/internal/transform"
	"lyricflow/internal/warehouse"
)

type App struct {
	Cfg       config.Config
	Log       *zap.SugaredLogger
	Metrics   *metrics.Metrics
	Warehouse warehouse.Warehouse
	// Runs is nil unless the warehouse is Postgres; the audit table shares
	// its pool.
	Runs  *storage.RunRepo
	store objectstore.Store
}

// Open connects the warehouse and, for Postgres, the run audit table.
// Metrics register on reg when it is non-nil.
func Open(ctx context.Context, cfg config.Config, log *zap.SugaredLogger, reg prometheus.Registerer) (*App, error) {
	wh, err := warehouse.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open warehouse: %w", err)
	}
	a := &App{Cfg: cfg, Log: log, Warehouse: wh}
	if reg != nil {
		a.Metrics = metrics.New(reg)
	}
	if pg, ok := wh.(*warehouse.Postgres); ok {
		runs := storage.NewRunRepo(pg.DB())
		schemaCtx, cancel := context.WithTimeout(ctx, storage.PingTimeout)
		defer cancel()
		if err := runs.EnsureSchema(schemaCtx); err != nil {
			_ = wh.Close()
			return nil, err
		}
		a.Runs = runs
	}
	log.Infow("backends ready", "warehouse", cfg.Warehouse, "object_store", cfg.ObjectStore, "run_audit", a.Runs != nil)
	return a, nil
}

// PipelineDeps opens the object store and builds the transformer.
func (a *App) PipelineDeps(ctx context.Context) (pipeline.Deps, error) {
	if a.store == nil {
		store, err := objectstore.Open(ctx, a.Cfg)
		if err != nil {
			return pipeline.Deps{}, fmt.Errorf("open object store: %w", err)
		}
		a.store = store
	}
	tr := transform.New(transform.LoadResources(), transform.Options{
		MinWordLength: a.Cfg.MinWordLength,
		MaxFeatures:   a.Cfg.TFIDFMaxFeatures,
	}, a.Log)
	deps := pipeline.Deps{
		Store:       a.store,
		Transformer: tr,
		Loader:      a.Warehouse,
		Metrics:     a.Metrics,
		Log:         a.Log,
	}
	if a.Runs != nil {
		deps.Runs = a.Runs
	}
	return deps, nil
}

func (a *App) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.Log.Warnw("close object store", "error", err)
		}
	}
	if err := a.Warehouse.Close(); err != nil {
		a.Log.Warnw("close warehouse", "error", err)
	}
}

package main

import (
	"context"
	"errors"
	"log"
	"net/http"

	"lyricflow/internal/activities"
	"lyricflow/internal/app"
	"lyricflow/internal/config"
	"lyricflow/internal/logging"
	"lyricflow/internal/workflows"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
)

func main() {
	_ = godotenv.Load(".env")
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger, err := logging.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	c, err := client.Dial(client.Options{HostPort: cfg.TemporalAddress, Logger: logging.NewTemporalLogger(logger)})
	if err != nil {
		logger.Fatalw("dial temporal", "error", err)
	}
	defer c.Close()

	// Clients built here live for the whole process; only their startup
	// pings are bounded.
	ctx := context.Background()
	a, err := app.Open(ctx, cfg, logger, prometheus.DefaultRegisterer)
	if err != nil {
		logger.Fatalw("open backends", "error", err)
	}
	defer a.Close()
	deps, err := a.PipelineDeps(ctx)
	if err != nil {
		logger.Fatalw("open pipeline", "error", err)
	}

	w := worker.New(c, cfg.TemporalTaskQueue, worker.Options{
		MaxConcurrentActivityExecutionSize: cfg.MaxWorkers,
	})
	workflows.Register(w)
	activities.Register(w, activities.New(cfg, deps))

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warnw("metrics listener stopped", "error", err)
		}
	}()

	logger.Infow("lyricflow worker listening", "temporal", cfg.TemporalAddress, "queue", cfg.TemporalTaskQueue, "max_workers", cfg.MaxWorkers, "metrics", cfg.MetricsAddr)
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Fatalw("worker stopped", "error", err)
	}
}

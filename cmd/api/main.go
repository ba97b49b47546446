package main

import (
	"context"
	"log"
	"net/http"

	"lyricflow/internal/api"
	"lyricflow/internal/app"
	"lyricflow/internal/config"
	"lyricflow/internal/logging"
	"lyricflow/internal/report"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	tclient "go.temporal.io/sdk/client"
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

	// Clients built here live for the whole process; only their startup
	// pings are bounded.
	ctx := context.Background()
	a, err := app.Open(ctx, cfg, logger, prometheus.DefaultRegisterer)
	if err != nil {
		logger.Fatalw("open backends", "error", err)
	}
	defer a.Close()

	deps := api.Deps{
		Reports:  report.NewBuilder(a.Warehouse, report.DefaultOptions(), logger),
		Gatherer: prometheus.DefaultGatherer,
		Log:      logger,
	}
	if a.Runs != nil {
		deps.Runs = a.Runs
	}
	tc, err := tclient.Dial(tclient.Options{HostPort: cfg.TemporalAddress, Logger: logging.NewTemporalLogger(logger)})
	if err != nil {
		logger.Warnw("temporal unavailable; run endpoints disabled", "error", err)
	} else {
		defer tc.Close()
		deps.Temporal = tc
	}

	h := api.NewServer(cfg, deps)
	logger.Infow("lyricflow api listening", "addr", cfg.APIAddr, "warehouse", cfg.Warehouse)
	if err := http.ListenAndServe(cfg.APIAddr, h.Routes()); err != nil {
		logger.Fatalw("api stopped", "error", err)
	}
}

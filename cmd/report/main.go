package main

import (
	"context"
	"flag"
	"log"
	"path/filepath"

	"lyricflow/internal/app"
	"lyricflow/internal/config"
	"lyricflow/internal/logging"
	"lyricflow/internal/report"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	out := flag.String("out", filepath.Join(cfg.DataOutRoot, "reports"), "directory for summary.json and summary.md")
	flag.Parse()

	logger, err := logging.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	a, err := app.Open(ctx, cfg, logger, nil)
	if err != nil {
		logger.Fatalw("open backends", "error", err)
	}
	defer a.Close()

	sum, err := report.NewBuilder(a.Warehouse, report.DefaultOptions(), logger).Build(ctx)
	if err != nil {
		logger.Fatalw("build report", "error", err)
	}
	if err := report.Write(*out, sum); err != nil {
		logger.Fatalw("write report", "error", err)
	}
	logger.Infow("report written", "dir", *out, "years", len(sum.SentimentByYear), "genres", len(sum.SentimentByGenre))
}

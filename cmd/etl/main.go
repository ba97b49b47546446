package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"lyricflow/internal/api"
	"lyricflow/internal/app"
	"lyricflow/internal/config"
	"lyricflow/internal/logging"
	"lyricflow/internal/models"
	"lyricflow/internal/pipeline"
	"lyricflow/internal/workflows"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/sdk/client"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run())
}

func run() int {
	_ = godotenv.Load(".env")
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		return 1
	}
	flag.StringVar(&cfg.ProjectID, "project-id", cfg.ProjectID, "GCP project id")
	flag.StringVar(&cfg.DatasetID, "dataset-id", cfg.DatasetID, "warehouse dataset id")
	flag.StringVar(&cfg.BucketName, "bucket-name", cfg.BucketName, "object store bucket")
	flag.StringVar(&cfg.InputPrefix, "input-prefix", cfg.InputPrefix, "object prefix holding lyric files")
	useTemporal := flag.Bool("temporal", false, "run as a Temporal workflow instead of in-process")
	flag.Parse()

	log, err := logging.New(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "init logger:", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		if cfg.ObjectStore == "gcs" || cfg.Warehouse == "bigquery" {
			log.Errorw("invalid configuration", "error", err)
			return 1
		}
		log.Warnw("cloud settings incomplete; continuing with local backends", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rep models.RunReport
	if *useTemporal {
		rep, err = runWorkflow(ctx, cfg, log)
	} else {
		rep, err = runLocal(ctx, cfg, log)
	}
	if err != nil {
		log.Errorw("etl run aborted", "error", err)
		return 1
	}
	log.Infow("etl run report", "run_id", rep.RunID, "status", rep.Status, "processed", rep.ProcessedCount, "duration_seconds", rep.DurationSeconds)
	if !rep.Succeeded() {
		return 1
	}
	return 0
}

func runLocal(ctx context.Context, cfg config.Config, log *zap.SugaredLogger) (models.RunReport, error) {
	a, err := app.Open(ctx, cfg, log, prometheus.DefaultRegisterer)
	if err != nil {
		return models.RunReport{}, err
	}
	defer a.Close()
	deps, err := a.PipelineDeps(ctx)
	if err != nil {
		return models.RunReport{}, err
	}
	r := pipeline.New(deps, pipeline.Options{BatchSize: cfg.BatchSize, OutRoot: cfg.DataOutRoot})
	return r.Run(ctx, cfg.InputPrefix), nil
}

func runWorkflow(ctx context.Context, cfg config.Config, log *zap.SugaredLogger) (models.RunReport, error) {
	c, err := client.Dial(client.Options{HostPort: cfg.TemporalAddress, Logger: logging.NewTemporalLogger(log)})
	if err != nil {
		return models.RunReport{}, fmt.Errorf("dial temporal: %w", err)
	}
	defer c.Close()

	runID := uuid.NewString()
	we, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:                    api.WorkflowID(runID),
		TaskQueue:             cfg.TemporalTaskQueue,
		WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE,
	}, workflows.LyricsETLWorkflow, workflows.LyricsETLInput{RunID: runID, Prefix: cfg.InputPrefix})
	if err != nil {
		return models.RunReport{}, fmt.Errorf("start workflow: %w", err)
	}
	log.Infow("started etl workflow", "run_id", runID, "workflow_id", we.GetID())
	var rep models.RunReport
	if err := we.Get(ctx, &rep); err != nil {
		return models.RunReport{}, fmt.Errorf("wait for workflow: %w", err)
	}
	return rep, nil
}

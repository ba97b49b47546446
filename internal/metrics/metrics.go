package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"lyricflow/internal/models"
)

// Metrics holds the pipeline collectors. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	runs          *prometheus.CounterVec
	records       *prometheus.CounterVec
	rowsLoaded    *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	runDuration   prometheus.Histogram
	lastSuccess   prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lyricflow_runs_total",
				Help: "ETL runs by terminal status.",
			},
			[]string{"status"},
		),
		records: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lyricflow_records_total",
				Help: "Lyric records seen by the pipeline, by outcome.",
			},
			[]string{"outcome"},
		),
		rowsLoaded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lyricflow_rows_loaded_total",
				Help: "Rows appended to warehouse tables.",
			},
			[]string{"table"},
		),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lyricflow_stage_duration_seconds",
				Help:    "Wall-clock time spent in each pipeline stage.",
				Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
			},
			[]string{"stage"},
		),
		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "lyricflow_run_duration_seconds",
				Help:    "Wall-clock time of a full ETL run.",
				Buckets: prometheus.ExponentialBuckets(0.1, 4, 10),
			},
		),
		lastSuccess: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "lyricflow_last_success_timestamp_seconds",
				Help: "Unix time of the last successful run.",
			},
		),
	}
	reg.MustRegister(m.runs, m.records, m.rowsLoaded, m.stageDuration, m.runDuration, m.lastSuccess)
	return m
}

func (m *Metrics) ObserveStage(stage models.Stage, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(string(stage)).Observe(d.Seconds())
}

// ObserveRun records the outcome of a finished run.
func (m *Metrics) ObserveRun(r models.RunReport) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(string(r.Status)).Inc()
	m.records.WithLabelValues("extracted").Add(float64(r.ExtractedCount))
	m.records.WithLabelValues("processed").Add(float64(r.ProcessedCount))
	m.records.WithLabelValues("skipped").Add(float64(r.SkippedCount))
	for table, n := range r.RowsLoaded {
		m.rowsLoaded.WithLabelValues(table).Add(float64(n))
	}
	m.runDuration.Observe(r.DurationSeconds)
	if r.Succeeded() {
		m.lastSuccess.Set(float64(r.EndTime.Unix()))
	}
}

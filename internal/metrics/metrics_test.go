package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"lyricflow/internal/models"
)

func TestObserveRun(t *testing.T) {
	m := New(prometheus.NewRegistry())
	end := time.Unix(1700000000, 0)
	m.ObserveRun(models.RunReport{
		Status:          models.StatusSuccess,
		ExtractedCount:  3,
		ProcessedCount:  2,
		SkippedCount:    1,
		RowsLoaded:      map[string]int{models.TableWordFrequency: 12},
		DurationSeconds: 1.5,
		EndTime:         end,
	})

	require.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("success")))
	require.Equal(t, 2.0, testutil.ToFloat64(m.records.WithLabelValues("processed")))
	require.Equal(t, 12.0, testutil.ToFloat64(m.rowsLoaded.WithLabelValues(models.TableWordFrequency)))
	require.Equal(t, float64(end.Unix()), testutil.ToFloat64(m.lastSuccess))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveStage(models.StageLoading, time.Second)
	m.ObserveRun(models.RunReport{Status: models.StatusFailed})
}

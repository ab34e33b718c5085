package tasks

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	importRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "founders",
		Subsystem: "import",
		Name:      "rows_total",
		Help:      "Imported rows broken down by status and action.",
	}, []string{"status", "action", "dry_run"})

	importBatches = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "founders",
		Subsystem: "import",
		Name:      "batch_duration_seconds",
		Help:      "Duration of whole import batches.",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"result"})
)

func recordRowMetric(status, action string, dryRun bool) {
	mode := "false"
	if dryRun {
		mode = "true"
	}
	importRows.With(prometheus.Labels{"status": status, "action": action, "dry_run": mode}).Inc()
}

func recordBatchMetric(err error, elapsed time.Duration) {
	result := "ok"
	if err != nil {
		result = "failed"
	}
	importBatches.With(prometheus.Labels{"result": result}).Observe(elapsed.Seconds())
}

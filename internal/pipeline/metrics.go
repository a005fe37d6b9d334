package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	stageRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aqmon",
			Name:      "stage_runs_total",
			Help:      "Total stage executions by outcome.",
		},
		[]string{"stage", "status"}, // status=success/failure
	)

	stageDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "aqmon",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage execution.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 14),
		},
		[]string{"stage"},
	)

	recordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aqmon",
			Name:      "records_total",
			Help:      "Records processed per stage by outcome.",
		},
		[]string{"stage", "outcome"},
	)
)

// ObserveRecord counts one per-record outcome for a stage.
func ObserveRecord(stage string, outcome Outcome) {
	recordsTotal.WithLabelValues(stage, outcome.String()).Inc()
}

func observeStage(stage string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	stageRunsTotal.WithLabelValues(stage, status).Inc()
	stageDurationSeconds.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

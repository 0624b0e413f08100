package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ProviderCalls counts outbound calls per provider and outcome.
var ProviderCalls = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "linguareel_provider_calls_total",
		Help: "External provider calls by provider and outcome.",
	},
	[]string{"provider", "outcome"},
)

// StageDuration observes wall time per pipeline stage.
var StageDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "linguareel_stage_duration_seconds",
		Help:    "Pipeline stage duration in seconds.",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
	},
	[]string{"stage"},
)

// TasksProcessed counts queue tasks by type and final status.
var TasksProcessed = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "linguareel_tasks_processed_total",
		Help: "Queue tasks processed by type and status.",
	},
	[]string{"type", "status"},
)

// ObserveCall records one provider call outcome.
func ObserveCall(provider string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	ProviderCalls.WithLabelValues(provider, outcome).Inc()
}

// Package metrics defines and registers the Prometheus metrics of the Causa
// agent. Consumers obtain a *Metrics via NewMetrics() and record through the
// exported fields.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "causa"

// Metrics holds all Prometheus collectors for the agent.
type Metrics struct {
	// AnalysesTotal counts completed analysis runs, partitioned by outcome:
	// healthy, anomaly, or error.
	AnalysesTotal *prometheus.CounterVec

	// StageDuration observes per-stage pipeline latency in seconds,
	// partitioned by stage (collect, detect, analyze, validate).
	StageDuration *prometheus.HistogramVec

	// ReasonerRequestsTotal counts reasoning backend calls, partitioned by
	// backend and status (success/failure).
	ReasonerRequestsTotal *prometheus.CounterVec

	// ScanTargetsTotal counts pods examined by the fleet scanner,
	// partitioned by result (healthy, anomaly, error).
	ScanTargetsTotal *prometheus.CounterVec

	// HTTPRequestsTotal counts API requests, partitioned by handler and
	// status code class.
	HTTPRequestsTotal *prometheus.CounterVec
}

// NewMetrics creates a Metrics instance and registers all collectors with the
// provided prometheus.Registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AnalysesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "analyses_total",
				Help:      "Total number of completed analysis runs.",
			},
			[]string{"outcome"},
		),

		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Pipeline stage latency in seconds.",
				Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 20, 30, 60, 120},
			},
			[]string{"stage"},
		),

		ReasonerRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reasoner_requests_total",
				Help:      "Total number of reasoning backend calls.",
			},
			[]string{"backend", "status"},
		),

		ScanTargetsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scan_targets_total",
				Help:      "Total number of pods examined by the fleet scanner.",
			},
			[]string{"result"},
		),

		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of API requests served.",
			},
			[]string{"handler", "code"},
		),
	}

	reg.MustRegister(
		m.AnalysesTotal,
		m.StageDuration,
		m.ReasonerRequestsTotal,
		m.ScanTargetsTotal,
		m.HTTPRequestsTotal,
	)

	return m
}

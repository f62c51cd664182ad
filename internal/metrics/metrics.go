// Package metrics exposes Prometheus instrumentation for the service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// MealsApplied counts meals merged into user profiles.
	MealsApplied = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cleanplate_meals_applied_total",
		Help: "Total number of meal analyses merged into user profiles",
	})

	// Analyses counts vision analyses by source (upload, url, job) and outcome.
	Analyses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cleanplate_analyses_total",
		Help: "Total number of image analyses by source and outcome",
	}, []string{"source", "outcome"})

	// AnalysisDuration observes vision call latency.
	AnalysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cleanplate_analysis_duration_seconds",
		Help:    "Latency of image analysis calls",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
	})

	// BreakerState reports the vision circuit breaker state (0 closed, 1 half-open, 2 open).
	BreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "cleanplate_circuit_breaker_state",
		Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
	}, []string{"name"})

	// DegradedReads counts read operations answered with an empty result.
	DegradedReads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cleanplate_degraded_reads_total",
		Help: "Read operations degraded to an empty result, by operation and reason",
	}, []string{"operation", "reason"})

	// JobsProcessed counts async analysis jobs by outcome.
	JobsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cleanplate_jobs_processed_total",
		Help: "Async analysis jobs processed, by outcome",
	}, []string{"outcome"})

	// PanicsRecovered counts handler panics turned into 500 responses.
	PanicsRecovered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cleanplate_http_panics_recovered_total",
		Help: "Handler panics recovered by the error middleware",
	})

	// HTTPRequests counts HTTP requests by method, route template and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cleanplate_http_requests_total",
		Help: "HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})

	// HTTPDuration observes HTTP request latency by route template.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cleanplate_http_request_duration_seconds",
		Help:    "HTTP request latency by route",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// Handler returns the /metrics handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

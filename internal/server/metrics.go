package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// serverMetrics holds all Prometheus metrics owned by the HTTP server.
// A single instance is created in New and stored on Server so that tests can
// inject a fresh prometheus.Registry without polluting the default one.
type serverMetrics struct {
	// runsTotal counts completed /api/v1/hackrx/run requests, partitioned by
	// outcome: "ok" or "error".
	runsTotal *prometheus.CounterVec

	// runDurationSeconds records wall-clock duration of each run from request
	// receipt to response, including ingestion and all generation calls.
	runDurationSeconds *prometheus.HistogramVec

	// runActive is the number of document runs currently in flight.
	runActive prometheus.Gauge

	// questionsTotal counts individual question outcomes across all runs:
	// "answered", "not_found", or "error".
	questionsTotal *prometheus.CounterVec

	// httpRequestsTotal counts all HTTP requests handled by the mux,
	// partitioned by method, path, and status code.
	httpRequestsTotal *prometheus.CounterVec

	// httpDurationSeconds records the latency of all HTTP requests.
	httpDurationSeconds *prometheus.HistogramVec
}

// newServerMetrics registers all server metrics against reg and returns the
// populated serverMetrics. promauto.With(reg) registers into the provided
// registry rather than the global default, which keeps unit tests hermetic.
func newServerMetrics(reg prometheus.Registerer) *serverMetrics {
	factory := promauto.With(reg)

	return &serverMetrics{
		runsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hackrx",
			Subsystem: "run",
			Name:      "requests_total",
			Help:      "Total number of document runs completed, partitioned by outcome.",
		}, []string{"outcome"}),

		runDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hackrx",
			Subsystem: "run",
			Name:      "duration_seconds",
			Help:      "Wall-clock duration of document runs from receipt to response.",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
		}, []string{"outcome"}),

		runActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "hackrx",
			Subsystem: "run",
			Name:      "active",
			Help:      "Number of document runs currently in flight.",
		}),

		questionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hackrx",
			Subsystem: "run",
			Name:      "questions_total",
			Help:      "Total number of questions processed, partitioned by outcome.",
		}, []string{"outcome"}),

		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hackrx",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled by the server, partitioned by method, path, and status code.",
		}, []string{"method", "path", "code"}),

		httpDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hackrx",
			Subsystem: "http",
			Name:      "duration_seconds",
			Help:      "Latency of HTTP requests handled by the server.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
}

package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Shreyr69/hackrx/internal/answer"
)

// Config holds the HTTP server configuration.
type Config struct {
	// Host is the address to bind to (default: 0.0.0.0).
	Host string
	// Port is the TCP port to listen on (default: 8000).
	Port int
	// ReadTimeout is the maximum duration for reading the request.
	ReadTimeout time.Duration
	// WriteTimeout is the maximum duration for writing the response. Must
	// cover a full document run including generation retries.
	WriteTimeout time.Duration
	// ShutdownTimeout is the maximum duration for a graceful shutdown.
	ShutdownTimeout time.Duration
	// Logger is the structured logger used by the server and its handlers.
	// If nil, [logging.New] is used.
	Logger *slog.Logger
	// Pingers is the ordered list of dependency probes run by GET /api/v1/ready.
	// If empty, readiness degrades to liveness.
	Pingers []Pinger
	// RateLimit is the sustained request rate allowed per IP on the run
	// endpoint (requests/second). Defaults to 10 if zero.
	RateLimit float64
	// RateBurst is the maximum instantaneous burst per IP. Defaults to 20 if zero.
	RateBurst int
	// APIKey is the Bearer token required on the run endpoint.
	// If empty, authentication is disabled (development mode).
	APIKey string
	// Registry receives the server's Prometheus metrics. If nil a private
	// registry is created; /metrics always serves this server's registry.
	Registry *prometheus.Registry
}

// runner executes a full document run. *answer.Pipeline satisfies it; tests
// inject a fake.
type runner interface {
	Run(ctx context.Context, documentURL string, questions []string) ([]answer.Result, error)
}

// Server exposes the question answering pipeline over HTTP.
type Server struct {
	// runner executes document runs; the production value is an *answer.Pipeline.
	runner runner
	// cfg holds the resolved server configuration.
	cfg *Config
	// httpServer is the underlying net/http server.
	httpServer *http.Server
	// log is the structured logger for this server instance.
	log *slog.Logger
	// metrics holds this instance's Prometheus collectors.
	metrics *serverMetrics
	// registry backs the /metrics endpoint.
	registry *prometheus.Registry
	// pingers is the ordered list of dependency probes for GET /api/v1/ready.
	pingers []Pinger
	// stopRL stops the rate limiter's background eviction goroutine on shutdown.
	stopRL func()
}

// runRequest is the JSON body for POST /api/v1/hackrx/run.
type runRequest struct {
	// Documents is the URL of the document to answer against.
	Documents string `json:"documents"`
	// Questions is the ordered list of questions.
	Questions []string `json:"questions"`
}

// runResponse is the JSON body returned by POST /api/v1/hackrx/run. Answers
// are parallel to the request's questions; a failed question carries an error
// marker string in its position so siblings are never dropped.
type runResponse struct {
	Answers []string `json:"answers"`
}

// errorMarker is the answer recorded in a failed question's position.
const errorMarker = "ERROR: the question could not be processed"

// notFoundAnswer mirrors the pipeline's fixed not-found reply for metrics
// classification.
const notFoundAnswer = answer.NotFound

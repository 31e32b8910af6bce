// Package server implements the HTTP API for the document question answering
// pipeline. The server is started by the `hackrx serve` CLI command.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Shreyr69/hackrx/internal/logging"
)

// maxQuestionsPerRun caps the number of questions accepted in one request.
const maxQuestionsPerRun = 50

// New constructs a Server from the provided pipeline and config.
func New(run runner, cfg *Config) (*Server, error) {
	if run == nil {
		return nil, fmt.Errorf("server: runner must not be nil")
	}
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.Host == "" {
		cfg.Host = "0.0.0.0"
	}
	if cfg.Port == 0 {
		cfg.Port = 8000
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		// A run covers ingestion plus every generation call with retries.
		cfg.WriteTimeout = 5 * time.Minute
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = defaultRateLimit
	}
	if cfg.RateBurst == 0 {
		cfg.RateBurst = defaultRateBurst
	}

	log := cfg.Logger
	if log == nil {
		log = logging.New()
	}
	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	s := &Server{
		runner:   run,
		cfg:      cfg,
		log:      log,
		metrics:  newServerMetrics(registry),
		registry: registry,
		pingers:  cfg.Pingers,
	}

	rl, stopRL := newRateLimiter(cfg.RateLimit, cfg.RateBurst, log)
	s.stopRL = stopRL

	if cfg.APIKey == "" {
		log.Warn("server: API key not configured, authentication disabled")
	}

	mux := http.NewServeMux()
	mux.Handle("POST /api/v1/hackrx/run",
		authMiddleware(cfg.APIKey, rl.middleware(http.HandlerFunc(s.handleRun))))
	mux.HandleFunc("GET /api/v1/health", s.handleHealth)
	mux.HandleFunc("GET /api/v1/ready", s.handleReady)
	mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      requestLogger(log, s.instrument(mux)),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s, nil
}

// Start begins listening and serving HTTP requests. It blocks until the
// context is cancelled, then performs a graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.log.Info("server listening", slog.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.stopRL()
		return fmt.Errorf("server: listen error: %w", err)
	case <-ctx.Done():
		s.stopRL()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: graceful shutdown failed: %w", err)
		}
		return nil
	}
}

// handleRun handles POST /api/v1/hackrx/run. Request-level failures (bad
// input, ingestion, chunk embedding) return a 4xx/5xx status; per-question
// failures are reported in position with an error marker so the answers slice
// always mirrors the questions slice.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Documents == "" {
		http.Error(w, "documents is required", http.StatusBadRequest)
		return
	}
	if len(req.Questions) == 0 {
		http.Error(w, "questions is required", http.StatusBadRequest)
		return
	}
	if len(req.Questions) > maxQuestionsPerRun {
		http.Error(w, fmt.Sprintf("too many questions (max %d)", maxQuestionsPerRun), http.StatusBadRequest)
		return
	}

	start := time.Now()
	s.metrics.runActive.Inc()
	defer s.metrics.runActive.Dec()

	results, err := s.runner.Run(r.Context(), req.Documents, req.Questions)
	if err != nil {
		log.Error("run failed", slog.Any("error", err))
		s.metrics.runsTotal.WithLabelValues("error").Inc()
		s.metrics.runDurationSeconds.WithLabelValues("error").Observe(time.Since(start).Seconds())
		http.Error(w, "document processing failed", http.StatusBadGateway)
		return
	}

	resp := runResponse{Answers: make([]string, len(results))}
	for i, res := range results {
		if res.Err != nil {
			log.Warn("question failed",
				slog.Int("position", i),
				slog.Any("error", res.Err),
			)
			s.metrics.questionsTotal.WithLabelValues("error").Inc()
			resp.Answers[i] = errorMarker
			continue
		}
		if res.Answer == notFoundAnswer {
			s.metrics.questionsTotal.WithLabelValues("not_found").Inc()
		} else {
			s.metrics.questionsTotal.WithLabelValues("answered").Inc()
		}
		resp.Answers[i] = res.Answer
	}

	s.metrics.runsTotal.WithLabelValues("ok").Inc()
	s.metrics.runDurationSeconds.WithLabelValues("ok").Observe(time.Since(start).Seconds())

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error("run encode error", slog.Any("error", err))
	}
}

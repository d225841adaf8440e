// Package server exposes the analysis pipeline over HTTP. Statements are
// uploaded as CSV files, processed asynchronously as jobs and the finished
// report downloaded back as CSV.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kzcompliance/offshore-radar/internal/engine"
	"github.com/kzcompliance/offshore-radar/internal/export"
	"github.com/kzcompliance/offshore-radar/internal/importer"
	"github.com/kzcompliance/offshore-radar/internal/model"
)

const maxUploadBytes = 32 << 20

// Config holds the HTTP server configuration.
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    120 * time.Second,
		ShutdownTimeout: 15 * time.Second,
	}
}

// Server ties the importer and engine to the HTTP surface.
type Server struct {
	engine         *engine.Engine
	importer       *importer.Importer
	jobs           *jobStore
	metrics        *Metrics
	metricsHandler http.Handler
	logger         *slog.Logger
	config         Config
	baseCtx        context.Context
}

// New creates a server. Metrics are registered on reg; pass
// prometheus.DefaultRegisterer outside tests.
func New(eng *engine.Engine, imp *importer.Importer, logger *slog.Logger, reg prometheus.Registerer, config Config) *Server {
	mh := http.Handler(promhttp.Handler())
	if g, ok := reg.(prometheus.Gatherer); ok {
		mh = promhttp.HandlerFor(g, promhttp.HandlerOpts{})
	}

	return &Server{
		engine:         eng,
		importer:       imp,
		jobs:           newJobStore(),
		metrics:        NewMetrics(reg),
		metricsHandler: mh,
		logger:         logger,
		config:         config,
		baseCtx:        context.Background(),
	}
}

// Router builds the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(2 * time.Minute))

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metricsHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/jobs", s.handleSubmitJob)
		r.Get("/jobs/{jobID}", s.handleJobStatus)
		r.Get("/jobs/{jobID}/report", s.handleJobReport)
	})

	return r
}

// Run starts the server and blocks until ctx is canceled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.baseCtx = ctx

	srv := &http.Server{
		Addr:         s.config.Addr,
		Handler:      s.Router(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.config.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down http server")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleSubmitJob accepts a multipart form with "incoming" and/or
// "outgoing" CSV files, parses them synchronously and runs classification
// in the background.
func (s *Server) handleSubmitJob(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("parsing upload: %w", err))
		return
	}

	uploads := []struct {
		field     string
		direction model.Direction
	}{
		{"incoming", model.DirectionIncoming},
		{"outgoing", model.DirectionOutgoing},
	}

	var txns []model.Transaction
	for _, u := range uploads {
		parsed, err := s.parseUpload(r, u.field, u.direction)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		txns = append(txns, parsed...)
	}

	if len(txns) == 0 {
		writeError(w, http.StatusBadRequest, fmt.Errorf("no transactions above threshold in upload"))
		return
	}

	job := s.jobs.create()
	s.metrics.JobsSubmitted.Inc()

	go s.runJob(job.ID, txns)

	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":       job.ID,
		"status":       job.Status,
		"transactions": len(txns),
	})
}

func (s *Server) parseUpload(r *http.Request, field string, direction model.Direction) ([]model.Transaction, error) {
	file, _, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s file: %w", field, err)
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	txns, err := s.importer.Import(file, direction)
	if err != nil {
		return nil, fmt.Errorf("parsing %s statement: %w", field, err)
	}
	return txns, nil
}

func (s *Server) runJob(jobID string, txns []model.Transaction) {
	s.jobs.setRunning(jobID)
	s.metrics.ActiveJobs.Inc()
	defer s.metrics.ActiveJobs.Dec()

	defer func() {
		if r := recover(); r != nil {
			s.jobs.setFailed(jobID, fmt.Errorf("panic: %v", r))
			s.metrics.JobsFailed.Inc()
			s.logger.Error("job panicked", "job_id", jobID, "panic", r)
		}
	}()

	start := time.Now()
	results := s.engine.ProcessBatch(s.baseCtx, txns, nil)
	duration := time.Since(start)

	stats := s.engine.Stats(results, duration)
	s.jobs.setCompleted(jobID, results, stats)

	s.metrics.JobsCompleted.Inc()
	s.metrics.JobDuration.Observe(duration.Seconds())
	for _, r := range results {
		s.metrics.TransactionsTotal.WithLabelValues(string(r.Result.Label)).Inc()
	}

	s.logger.Info("job completed",
		"job_id", jobID,
		"transactions", stats.TotalTransactions,
		"flagged", stats.Flagged,
		"errors", stats.Errors,
		"duration", duration)
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job, ok := s.jobs.snapshot(jobID)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("job %s not found", jobID))
		return
	}

	resp := map[string]any{
		"job_id":       job.ID,
		"status":       job.Status,
		"submitted_at": job.SubmittedAt,
	}
	if job.Status == JobCompleted {
		resp["stats"] = map[string]any{
			"total":         job.Stats.TotalTransactions,
			"by_classifier": job.Stats.ByClassifier,
			"by_fallback":   job.Stats.ByFallback,
			"errors":        job.Stats.Errors,
			"flagged":       job.Stats.Flagged,
			"duration":      job.Stats.Duration.String(),
		}
	}
	if job.Error != "" {
		resp["error"] = job.Error
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleJobReport(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job, ok := s.jobs.snapshot(jobID)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("job %s not found", jobID))
		return
	}
	if job.Status != JobCompleted {
		writeError(w, http.StatusConflict, fmt.Errorf("job %s is %s", jobID, job.Status))
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "report_"+jobID+".csv"))

	if err := export.NewCSVWriter(w).Write(job.Results); err != nil {
		s.logger.Error("writing report response", "job_id", jobID, "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

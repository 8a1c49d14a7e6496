// Package server exposes the task boundary over HTTP: task submission
// endpoints that enqueue pipeline work and status endpoints for
// polling. Payloads are schema-validated before anything is enqueued.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jonathan/cv-tailor/internal/pipeline"
)

// Server is the HTTP task boundary.
type Server struct {
	httpServer *http.Server
	orch       *pipeline.Orchestrator
	runner     *pipeline.Runner
	store      pipeline.Store
	logger     *zap.Logger
	validate   *validator.Validate
}

// Config holds server wiring.
type Config struct {
	ListenAddr   string
	Orchestrator *pipeline.Orchestrator
	Runner       *pipeline.Runner
	Store        pipeline.Store
	Logger       *zap.Logger
}

// New creates a server. It does not start listening.
func New(cfg Config) *Server {
	s := &Server{
		orch:     cfg.Orchestrator,
		runner:   cfg.Runner,
		store:    cfg.Store,
		logger:   cfg.Logger,
		validate: validator.New(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /tasks/analyze", s.handleAnalyze)
	mux.HandleFunc("POST /tasks/generate-cv", s.handleGenerateCV)
	mux.HandleFunc("POST /tasks/import-profile", s.handleImportProfile)
	mux.HandleFunc("GET /status/analysis/{id}", s.handleAnalysisStatus)
	mux.HandleFunc("GET /status/cv/{id}", s.handleCVStatus)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start listens until ctx is cancelled, then shuts down gracefully and
// waits for in-flight tasks.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.runner.Wait()
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response.
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response.
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// Package server exposes the processor and run metrics over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/deusflow/newsbrief/internal/metrics"
	"github.com/deusflow/newsbrief/internal/processor"
)

const maxRequestBytes = 1 << 20

// SummarizeRequest is the body of POST /api/summarize.
type SummarizeRequest struct {
	Text  string `json:"text"`
	Genre string `json:"genre"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type Server struct {
	proc    *processor.Processor
	metrics *metrics.Metrics
	http    *http.Server
}

func New(addr string, proc *processor.Processor, m *metrics.Metrics) *Server {
	if m == nil {
		m = metrics.Global
	}
	s := &Server{proc: proc, metrics: m}
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /metrics", s.metricsHandler)
	mux.HandleFunc("GET /api/genres", s.genresHandler)
	mux.HandleFunc("POST /api/summarize", s.summarizeHandler)
	return mux
}

// ListenAndServe blocks until the server stops. It returns nil after
// Shutdown.
func (s *Server) ListenAndServe() error {
	slog.Info("starting HTTP server", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	stats := s.metrics.GetStats()

	status := "ok"
	code := http.StatusOK
	if !s.metrics.Healthy() {
		status = "error"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]interface{}{
		"status":     status,
		"last_run":   stats["last_run_time"],
		"last_error": stats["last_error"],
	})
}

func (s *Server) metricsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.metrics.GetStats())
}

func (s *Server) genresHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.proc.Taxonomy().Inverse())
}

func (s *Server) summarizeHandler(w http.ResponseWriter, r *http.Request) {
	var req SummarizeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed JSON body"})
		return
	}

	res, err := s.proc.Produce(req.Text, req.Genre)
	if errors.Is(err, processor.ErrInvalidInput) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		slog.Error("summarize failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to encode response", "error", err)
	}
}

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"mood-journal/internal/application"
)

// Server exposes the journal over HTTP: start/stop recording, fetch the
// latest results, and an ad-hoc recommendation endpoint.
type Server struct {
	addr    string
	journal *application.Journal
	logger  *slog.Logger

	mux         *http.ServeMux
	handler     http.Handler
	server      *http.Server
	rateLimiter *RateLimiter

	mu      sync.Mutex
	running bool
}

func NewServer(addr, allowedOrigin string, journal *application.Journal, logger *slog.Logger) *Server {
	s := &Server{
		addr:        addr,
		journal:     journal,
		logger:      logger,
		mux:         http.NewServeMux(),
		rateLimiter: NewRateLimiter(30, time.Minute), // 30 requests per minute per IP
	}

	s.mux.HandleFunc("POST /start-recording", s.rateLimiter.Middleware(s.handleStart))
	s.mux.HandleFunc("POST /stop-recording", s.rateLimiter.Middleware(s.handleStop))
	s.mux.HandleFunc("POST /generate-recommendations", s.rateLimiter.Middleware(s.handleRecommendations))
	s.mux.HandleFunc("GET /results", s.handleResults)
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.handler = withCORS(allowedOrigin, s.mux)

	return s
}

func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	// No WriteTimeout: /stop-recording holds the response open for the
	// whole transcription + fitness + recommendation pipeline.
	s.server = &http.Server{
		Addr:        s.addr,
		Handler:     s.handler,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		s.logger.Info("HTTP server starting", "addr", s.addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error", "error", err)
		}
	}()

	s.running = true
	return nil
}

func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Warn("graceful shutdown failed, forcing close", "error", err)
		if err := s.server.Close(); err != nil {
			return fmt.Errorf("closing server: %w", err)
		}
	}

	s.running = false
	return nil
}

// Handler exposes the full middleware chain for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	msg, err := s.journal.StartRecording(r.Context())
	if err != nil {
		s.logger.Error("start-recording failed", "error", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to start recording: %s", err))
		return
	}
	writeMessage(w, http.StatusOK, msg)
}

// handleStop runs the whole pipeline synchronously; the response only goes
// out once transcription, fitness fetch, and recommendations are done.
func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	msg, err := s.journal.StopRecording(r.Context())
	if err != nil {
		s.logger.Error("stop-recording failed", "error", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to stop recording: %s", err))
		return
	}
	writeMessage(w, http.StatusOK, msg)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	result, ok := s.journal.Results()
	if !ok {
		writeMessage(w, http.StatusOK, "No results available yet")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type recommendationRequest struct {
	Transcription string          `json:"transcription"`
	FitbitData    json.RawMessage `json:"fitbit_data"`
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	var req recommendationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	defer r.Body.Close()

	if req.Transcription == "" || isEmptyJSON(req.FitbitData) {
		writeError(w, http.StatusBadRequest, "Missing transcription or Fitbit data")
		return
	}

	recommendations := s.journal.Recommend(r.Context(), req.Transcription, req.FitbitData)
	writeJSON(w, http.StatusOK, map[string]string{"recommendations": recommendations})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()

	status := "ok"
	statusCode := http.StatusOK
	if !running {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, map[string]string{"status": status})
}

func isEmptyJSON(raw json.RawMessage) bool {
	trimmed := string(raw)
	return trimmed == "" || trimmed == "null"
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

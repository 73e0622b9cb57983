// Package http exposes the daemon's command submission API and metrics
// over HTTP.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/probelab/tether/internal/logging"
	"github.com/probelab/tether/pkg/dispatch"
	"github.com/probelab/tether/pkg/ports"
	"github.com/probelab/tether/pkg/session"
)

// Server routes submission requests to the session manager.
type Server struct {
	manager *session.Manager
	logger  *slog.Logger
}

// NewHandler builds the HTTP handler for a daemon.
func NewHandler(manager *session.Manager, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{manager: manager, logger: logger}

	r := chi.NewRouter()
	r.Get("/healthz", s.health)
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/v1/sessions", func(r chi.Router) {
		r.Get("/", s.listSessions)
		r.Post("/{id}/commands", s.submitCommand)
		r.Get("/{id}/journal", s.journal)
	})
	return r
}

type commandRequest struct {
	Line string `json:"line"`
}

type commandResponse struct {
	Output string `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"sessions": s.manager.List()})
}

// submitCommand queues one command line on the session and waits for the
// result. Command-level failures come back with HTTP 200 and an error
// field: the submitter decides whether to stop a batch, per the
// dispatch contract.
func (s *Server) submitCommand(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body commandRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	sess, err := s.manager.Get(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	fut, err := sess.SubmitWait(r.Context(), body.Line)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, dispatch.ErrShuttingDown) {
			status = http.StatusConflict
		}
		http.Error(w, err.Error(), status)
		return
	}

	out, err := fut.Wait(r.Context())
	resp := commandResponse{Output: out}
	if err != nil {
		resp.Error = err.Error()
		s.logger.Debug("command returned error", "session_id", id, "err", err)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) journal(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	recs, err := s.manager.Journal(r.Context(), id)
	if err != nil {
		if errors.Is(err, ports.ErrSessionNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		s.logger.Error("journal read failed", "session_id", id, "err", err)
		http.Error(w, "journal read failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]ports.Record{"records": recs})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

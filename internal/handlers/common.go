package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/boekenzolder/stackscan/internal/config"
	"github.com/boekenzolder/stackscan/internal/pipeline"
	"github.com/boekenzolder/stackscan/internal/session"
	"github.com/boekenzolder/stackscan/internal/store"
)

type Handler struct {
	cfg      *config.Config
	store    store.Store
	registry *session.Registry
	pipeline *pipeline.Pipeline
}

func New(cfg *config.Config, s store.Store, registry *session.Registry, p *pipeline.Pipeline) *Handler {
	return &Handler{
		cfg:      cfg,
		store:    s,
		registry: registry,
		pipeline: p,
	}
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// writeFailure emits the structured failure payload every error path uses.
func (h *Handler) writeFailure(w http.ResponseWriter, message string, code int) {
	slog.Error(message, "status", code)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"message": message,
	}); err != nil {
		slog.Error("Unable to encode failure response", "err", err)
	}
}

// writeStoreError reports a store failure, distinguishing rejected session
// ids from genuine storage trouble.
func (h *Handler) writeStoreError(w http.ResponseWriter, message string, err error) {
	code := http.StatusInternalServerError
	if errors.Is(err, store.ErrInvalidID) {
		code = http.StatusBadRequest
	}
	h.writeFailure(w, message+": "+err.Error(), code)
}

// writePipelineError maps the error taxonomy onto HTTP status codes.
func (h *Handler) writePipelineError(w http.ResponseWriter, err error) {
	var validation pipeline.ValidationError
	if errors.As(err, &validation) {
		h.writeFailure(w, validation.Error(), http.StatusBadRequest)
		return
	}
	if errors.Is(err, session.ErrNotFound) {
		h.writeFailure(w, "Session not found", http.StatusNotFound)
		return
	}
	var collaborator pipeline.CollaboratorError
	if errors.As(err, &collaborator) {
		h.writeFailure(w, collaborator.Error(), http.StatusBadGateway)
		return
	}
	h.writeFailure(w, err.Error(), http.StatusInternalServerError)
}

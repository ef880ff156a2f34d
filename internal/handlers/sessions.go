package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/boekenzolder/stackscan/internal/session"
)

func (h *Handler) HandleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		sessions, err := h.registry.List(r.Context())
		if err != nil {
			h.writeFailure(w, "Unable to list sessions: "+err.Error(), http.StatusInternalServerError)
			return
		}
		h.writeJSON(w, sessions)
	case "POST":
		var body struct {
			Name string `json:"name"`
		}
		if r.Body != nil {
			// An empty or absent body means a timestamp-named session.
			_ = json.NewDecoder(r.Body).Decode(&body)
		}
		id, err := h.registry.Create(r.Context(), body.Name)
		if err != nil {
			h.writeFailure(w, "Unable to create session: "+err.Error(), http.StatusInternalServerError)
			return
		}
		h.writeJSON(w, map[string]string{"sessionId": id})
	default:
		h.writeFailure(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleSessionDetail serves DELETE /sessions/{id} and
// POST /sessions/{id}/clear.
func (h *Handler) HandleSessionDetail(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/sessions/")

	switch {
	case r.Method == "DELETE" && !strings.Contains(rest, "/"):
		h.destroySession(w, r, rest)
	case r.Method == "POST" && strings.HasSuffix(rest, "/clear"):
		h.clearSession(w, r, strings.TrimSuffix(rest, "/clear"))
	default:
		h.writeFailure(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) destroySession(w http.ResponseWriter, r *http.Request, sessionID string) {
	if err := h.registry.Destroy(r.Context(), sessionID); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			h.writeFailure(w, "Session not found", http.StatusNotFound)
			return
		}
		h.writeFailure(w, "Unable to destroy session: "+err.Error(), http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, map[string]bool{"success": true})
}

func (h *Handler) clearSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	if err := h.registry.Clear(r.Context(), sessionID); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			h.writeFailure(w, "Session not found", http.StatusNotFound)
			return
		}
		h.writeFailure(w, "Unable to clear session: "+err.Error(), http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, map[string]bool{"success": true})
}

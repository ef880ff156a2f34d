package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/boekenzolder/stackscan/internal/models"
)

// HandleBooks lists a session's records in stored order.
func (h *Handler) HandleBooks(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		h.writeFailure(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		h.writeFailure(w, "No session given", http.StatusBadRequest)
		return
	}

	if err := h.store.Ensure(r.Context(), sessionID); err != nil {
		h.writeStoreError(w, "Unable to prepare session", err)
		return
	}

	records, err := h.store.ReadAll(r.Context(), sessionID)
	if err != nil {
		h.writeStoreError(w, "Unable to read records", err)
		return
	}
	if records == nil {
		records = []models.BookRecord{}
	}
	h.writeJSON(w, records)
}

// HandleDeleteByLocation removes every record at one (location, face) pair
// and reports how many records remain.
func (h *Handler) HandleDeleteByLocation(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeFailure(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		SessionID string `json:"sessionId"`
		Location  string `json:"location"`
		Face      string `json:"face"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeFailure(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if body.SessionID == "" {
		h.writeFailure(w, "No session given", http.StatusBadRequest)
		return
	}
	if body.Location == "" || !models.Face(body.Face).Valid() {
		h.writeFailure(w, "Location and a valid face are required", http.StatusBadRequest)
		return
	}

	if err := h.store.Ensure(r.Context(), body.SessionID); err != nil {
		h.writeStoreError(w, "Unable to prepare session", err)
		return
	}

	remaining, err := h.store.DeleteWhere(r.Context(), body.SessionID, body.Location, models.Face(body.Face))
	if err != nil {
		h.writeStoreError(w, "Unable to delete records", err)
		return
	}

	h.writeJSON(w, map[string]interface{}{
		"success":        true,
		"remainingCount": remaining,
	})
}

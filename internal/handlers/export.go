package handlers

import (
	"fmt"
	"net/http"

	"github.com/boekenzolder/stackscan/internal/export"
)

// HandleDownloadExport streams the session's full record set as a download,
// semicolon-delimited text by default or Parquet on request.
func (h *Handler) HandleDownloadExport(w http.ResponseWriter, r *http.Request) {
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

	switch r.URL.Query().Get("format") {
	case "", "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=books_%s.csv", sessionID))
		if err := export.WriteCSV(w, records); err != nil {
			h.writeFailure(w, "Unable to write export: "+err.Error(), http.StatusInternalServerError)
		}
	case "parquet":
		w.Header().Set("Content-Type", "application/vnd.apache.parquet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=books_%s.parquet", sessionID))
		if err := export.WriteParquet(w, records); err != nil {
			h.writeFailure(w, "Unable to write export: "+err.Error(), http.StatusInternalServerError)
		}
	default:
		h.writeFailure(w, "Unsupported export format", http.StatusBadRequest)
	}
}

package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/boekenzolder/stackscan/internal/models"
	"github.com/boekenzolder/stackscan/internal/pipeline"
)

// HandleProcessStack accepts a multipart capture request and runs the
// recognition pipeline. Field validation order lives in the pipeline; the
// handler only collects the form.
func (h *Handler) HandleProcessStack(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeFailure(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(h.cfg.MaxUploadBytes); err != nil {
		h.writeFailure(w, "Unable to parse upload: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	req := pipeline.CaptureRequest{
		SessionID: r.FormValue("sessionId"),
		Row:       r.FormValue("row"),
		Column:    r.FormValue("column"),
		Face:      r.FormValue("face"),
		Prefix:    r.FormValue("prefix"),
	}

	if file, header, err := r.FormFile("image"); err == nil {
		data, readErr := io.ReadAll(file)
		_ = file.Close()
		if readErr != nil {
			h.writeFailure(w, "Unable to read image: "+readErr.Error(), http.StatusBadRequest)
			return
		}
		req.Image = data
		req.MimeType = header.Header.Get("Content-Type")
	}

	result, err := h.pipeline.ProcessStack(r.Context(), req)
	if err != nil {
		h.writePipelineError(w, err)
		return
	}

	records := result.Records
	if records == nil {
		records = []models.BookRecord{}
	}
	slog.Info("Capture handled", "session_id", req.SessionID, "records", len(records))
	h.writeJSON(w, map[string]interface{}{
		"success": true,
		"message": result.Message,
		"records": records,
	})
}

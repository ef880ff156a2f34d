package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/boekenzolder/stackscan/internal/models"
	"github.com/boekenzolder/stackscan/internal/traversal"
)

// HandleBulkPlan generates the ordered traversal sequence for a grid. The
// client keeps its own cursor over the returned locations.
func (h *Handler) HandleBulkPlan(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		h.writeFailure(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	rows, err := strconv.Atoi(query.Get("rows"))
	if err != nil || rows < 0 {
		h.writeFailure(w, "rows must be a non-negative number", http.StatusBadRequest)
		return
	}

	faces, ok := parseFaces(query.Get("faces"))
	if !ok {
		h.writeFailure(w, `faces must be a comma separated subset of "front,back"`, http.StatusBadRequest)
		return
	}

	locations := traversal.Generate(rows, query.Get("columns"), faces, query.Get("prefix"))
	if locations == nil {
		locations = []traversal.Coordinate{}
	}
	h.writeJSON(w, map[string]interface{}{
		"count":     len(locations),
		"locations": locations,
	})
}

// parseFaces reads a comma separated face order, defaulting to front,back.
func parseFaces(raw string) ([]models.Face, bool) {
	if strings.TrimSpace(raw) == "" {
		return []models.Face{models.FaceFront, models.FaceBack}, true
	}
	var faces []models.Face
	for _, part := range strings.Split(raw, ",") {
		face := models.Face(strings.TrimSpace(part))
		if !face.Valid() {
			return nil, false
		}
		faces = append(faces, face)
	}
	return faces, true
}

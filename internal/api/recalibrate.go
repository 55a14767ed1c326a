package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pulsecheck/pulsecheck/internal/project"
	"github.com/pulsecheck/pulsecheck/internal/recalibrate"
)

type recalibrateRequest struct {
	Score    float64 `json:"score"`
	Operator string  `json:"operator"`
	Note     string  `json:"note"`
}

type recalibrateResponse struct {
	ProjectID  string  `json:"project_id"`
	Previous   float64 `json:"previous_score"`
	Score      float64 `json:"score"`
	Liveness   string  `json:"liveness"`
	SnapshotID string  `json:"snapshot_id"`
}

func (h *Handler) handleRecalibrate(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("projectID")

	var req recalibrateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	res, err := h.recalibrator.Recalibrate(r.Context(), projectID, req.Score, req.Operator, req.Note)
	var oor *recalibrate.OutOfRangeError
	switch {
	case errors.As(err, &oor):
		writeError(w, http.StatusUnprocessableEntity, oor.Error())
		return
	case errors.Is(err, recalibrate.ErrMissingOperator):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, recalibrate.ErrNotFound):
		writeError(w, http.StatusNotFound, "project not found")
		return
	case errors.Is(err, project.ErrConflict):
		writeError(w, http.StatusConflict, "project modified concurrently, retry")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "recalibration failed: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, recalibrateResponse{
		ProjectID:  projectID,
		Previous:   res.Previous,
		Score:      res.Score,
		Liveness:   string(res.Liveness),
		SnapshotID: res.Snapshot.ID,
	})
}

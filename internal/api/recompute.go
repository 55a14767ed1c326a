package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/pulsecheck/pulsecheck/internal/project"
)

type recomputeRequest struct {
	ProjectID string `json:"project_id"`
}

// handleRecompute kicks off scoring out of band: the whole due batch, or
// one project when the body names it. The work runs against a fresh
// context so it survives the HTTP request.
func (h *Handler) handleRecompute(w http.ResponseWriter, r *http.Request) {
	var req recomputeRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
	}

	if req.ProjectID != "" {
		// Existence check up front so the caller gets a 404 instead of a
		// silently dropped background job.
		if _, err := h.projects.Get(r.Context(), req.ProjectID); err != nil {
			if errors.Is(err, project.ErrNotFound) {
				writeError(w, http.StatusNotFound, "project not found")
			} else {
				writeError(w, http.StatusInternalServerError, "failed to load project")
			}
			return
		}
	}

	projectID := req.ProjectID
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
		defer cancel()
		var err error
		if projectID != "" {
			err = h.recomputer.RunProject(ctx, projectID)
		} else {
			err = h.recomputer.RunCycle(ctx)
		}
		if err != nil {
			log.Printf("manual recompute: %v", err)
		}
	}()
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "recompute started"})
}

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/pulsecheck/pulsecheck/internal/history"
)

type snapshotResponse struct {
	ID             string   `json:"id"`
	SnapshotAt     string   `json:"snapshot_at"`
	CompositeScore float64  `json:"composite_score"`
	CodeScore      *float64 `json:"code_score"`
	DepsScore      *float64 `json:"deps_score"`
	GovScore       *float64 `json:"gov_score"`
	EconScore      *float64 `json:"econ_score"`
	Source         string   `json:"source"`
	Operator       *string  `json:"operator,omitempty"`
	Note           *string  `json:"note,omitempty"`
}

type historyResponse struct {
	Snapshots []snapshotResponse `json:"snapshots"`
	Cursor    string             `json:"cursor,omitempty"`
}

func snapshotToResponse(sn *history.Snapshot) snapshotResponse {
	return snapshotResponse{
		ID:             sn.ID,
		SnapshotAt:     sn.SnapshotAt.UTC().Format(time.RFC3339),
		CompositeScore: sn.CompositeScore,
		CodeScore:      sn.CodeScore,
		DepsScore:      sn.DepsScore,
		GovScore:       sn.GovScore,
		EconScore:      sn.EconScore,
		Source:         sn.Source,
		Operator:       sn.Operator,
		Note:           sn.Note,
	}
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("projectID")

	var since time.Time
	if s := r.URL.Query().Get("since"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid since timestamp")
			return
		}
		since = t
	}

	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	page, err := h.history.List(r.Context(), projectID, since, r.URL.Query().Get("cursor"), limit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to list history: "+err.Error())
		return
	}

	resp := historyResponse{Snapshots: []snapshotResponse{}, Cursor: page.Cursor}
	for i := range page.Snapshots {
		resp.Snapshots = append(resp.Snapshots, snapshotToResponse(&page.Snapshots[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

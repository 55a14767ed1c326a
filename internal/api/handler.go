// Package api implements the Pulsecheck REST API: project registration,
// score reads, score history, manual recalibration, and a recompute
// trigger.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pulsecheck/pulsecheck/internal/history"
	"github.com/pulsecheck/pulsecheck/internal/project"
	"github.com/pulsecheck/pulsecheck/internal/recalibrate"
)

// Projects is the project-service surface the API uses.
type Projects interface {
	Create(ctx context.Context, np project.NewProject) (*project.Project, error)
	Get(ctx context.Context, id string) (*project.Project, error)
	List(ctx context.Context) ([]project.Project, error)
}

// History is the ledger surface the API uses.
type History interface {
	List(ctx context.Context, projectID string, since time.Time, cursor string, limit int) (*history.Page, error)
}

// Recalibrator applies manual score overrides.
type Recalibrator interface {
	Recalibrate(ctx context.Context, projectID string, score float64, operator, note string) (*recalibrate.Result, error)
}

// Recomputer runs scoring on demand: a full cycle, or one project.
type Recomputer interface {
	RunCycle(ctx context.Context) error
	RunProject(ctx context.Context, projectID string) error
}

// Pinger reports backend health.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handler is the top-level API handler for the Pulsecheck service.
type Handler struct {
	projects     Projects
	history      History
	recalibrator Recalibrator
	recomputer   Recomputer
	pinger       Pinger
}

// NewHandler creates a new API handler.
func NewHandler(projects Projects, hist History, recal Recalibrator, recomp Recomputer, pinger Pinger) *Handler {
	return &Handler{
		projects:     projects,
		history:      hist,
		recalibrator: recal,
		recomputer:   recomp,
		pinger:       pinger,
	}
}

// RegisterRoutes registers all API routes on the given ServeMux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Write endpoints (auth-protected)
	mux.HandleFunc("POST /api/projects", h.handleCreateProject)
	mux.HandleFunc("POST /api/projects/{projectID}/recalibrate", h.handleRecalibrate)
	mux.HandleFunc("POST /api/recompute", h.handleRecompute)

	// Read endpoints
	mux.HandleFunc("GET /api/projects", h.handleListProjects)
	mux.HandleFunc("GET /api/projects/{projectID}", h.handleGetProject)
	mux.HandleFunc("GET /api/projects/{projectID}/history", h.handleHistory)

	mux.HandleFunc("GET /healthz", h.handleHealthz)
}

func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if h.pinger != nil {
		if err := h.pinger.PingContext(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unreachable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

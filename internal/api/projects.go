package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/pulsecheck/pulsecheck/internal/project"
)

type projectResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`

	RepoFullName   *string `json:"repo_full_name,omitempty"`
	RegistryName   *string `json:"registry_name,omitempty"`
	GovernanceAddr *string `json:"governance_addr,omitempty"`
	TVLSlug        *string `json:"tvl_slug,omitempty"`

	CompositeScore float64 `json:"composite_score"`
	Liveness       string  `json:"liveness"`
	ManualOverride bool    `json:"manual_override"`
	LastScoredAt   *string `json:"last_scored_at,omitempty"`
	LastActivityAt *string `json:"last_activity_at,omitempty"`

	CodeScore *float64        `json:"code_score"`
	DepsScore *float64        `json:"deps_score"`
	GovScore  *float64        `json:"gov_score"`
	EconScore *float64        `json:"econ_score"`
	Breakdown json.RawMessage `json:"breakdown,omitempty"`

	CreatedAt string `json:"created_at"`
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func projectToResponse(p *project.Project) projectResponse {
	return projectResponse{
		ID:             p.ID,
		Name:           p.Name,
		Category:       p.Category,
		RepoFullName:   p.RepoFullName,
		RegistryName:   p.RegistryName,
		GovernanceAddr: p.GovernanceAddr,
		TVLSlug:        p.TVLSlug,
		CompositeScore: p.CompositeScore,
		Liveness:       string(p.Liveness),
		ManualOverride: p.ManualOverride,
		LastScoredAt:   formatTime(p.LastScoredAt),
		LastActivityAt: formatTime(p.LastActivityAt),
		CodeScore:      p.CodeScore,
		DepsScore:      p.DepsScore,
		GovScore:       p.GovScore,
		EconScore:      p.EconScore,
		Breakdown:      p.Breakdown,
		CreatedAt:      p.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type createProjectRequest struct {
	Name           string  `json:"name"`
	Category       string  `json:"category"`
	RepoFullName   *string `json:"repo_full_name"`
	RegistryName   *string `json:"registry_name"`
	GovernanceAddr *string `json:"governance_addr"`
	TVLSlug        *string `json:"tvl_slug"`
}

func (h *Handler) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.RepoFullName == nil && req.RegistryName == nil && req.GovernanceAddr == nil && req.TVLSlug == nil {
		writeError(w, http.StatusBadRequest, "at least one source identifier is required")
		return
	}

	p, err := h.projects.Create(r.Context(), project.NewProject{
		Name:           req.Name,
		Category:       req.Category,
		RepoFullName:   req.RepoFullName,
		RegistryName:   req.RegistryName,
		GovernanceAddr: req.GovernanceAddr,
		TVLSlug:        req.TVLSlug,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create project: "+err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, projectToResponse(p))
}

func (h *Handler) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projects.List(r.Context())
	if err != nil {
		writeJSON(w, http.StatusOK, []projectResponse{})
		return
	}

	var result []projectResponse
	for i := range projects {
		result = append(result, projectToResponse(&projects[i]))
	}
	if result == nil {
		result = []projectResponse{}
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleGetProject(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("projectID")

	p, err := h.projects.Get(r.Context(), projectID)
	if errors.Is(err, project.ErrNotFound) {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load project")
		return
	}
	writeJSON(w, http.StatusOK, projectToResponse(p))
}

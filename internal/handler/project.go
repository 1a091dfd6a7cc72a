package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/devlink/internal/auth"
	"github.com/sakif/devlink/internal/service"
)

// ProjectHandler exposes the feed operations over HTTP.
//
// GET    /api/projects             → full feed (public)
// POST   /api/projects             → post a repo link (auth)
// POST   /api/projects/{id}/upvote → toggle upvote (auth)
// DELETE /api/projects/{id}        → delete own project (auth)
type ProjectHandler struct {
	projects *service.ProjectService
	logger   *slog.Logger
}

// NewProjectHandler creates a ProjectHandler.
func NewProjectHandler(projects *service.ProjectService, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{
		projects: projects,
		logger:   logger,
	}
}

// HandleList returns every project, newest first.
//
// HTTP: GET /api/projects
// Public: no credential required. The client does its own filtering and
// ranking over the full set.
func (h *ProjectHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projects.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

// createRequest is the body of POST /api/projects.
type createRequest struct {
	RepoURL string `json:"repoUrl"`
}

// HandleCreate posts a new project from a submitted repository link.
//
// HTTP: POST /api/projects
// Body: {"repoUrl": "https://github.com/owner/repo"}
// Auth: required
//
// Responds 201 with the created project, 400 for a link that doesn't
// parse to owner/repo, 502 when the GitHub lookup fails.
func (h *ProjectHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated", Message: "authentication required"})
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid create-project JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "invalid JSON body"})
		return
	}

	project, err := h.projects.Create(r.Context(), claims, req.RepoURL)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, project)
}

// HandleToggleUpvote flips the caller's membership in a project's upvoter
// set and returns the full updated project.
//
// HTTP: POST /api/projects/{id}/upvote
// Auth: required
func (h *ProjectHandler) HandleToggleUpvote(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated", Message: "authentication required"})
		return
	}

	id := r.PathValue("id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "project ID is required"})
		return
	}

	project, err := h.projects.ToggleUpvote(r.Context(), claims.UserID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, project)
}

// HandleDelete removes one of the caller's own projects.
//
// HTTP: DELETE /api/projects/{id}
// Auth: required; 403 when the caller is not the owner, 404 for an
// unknown id.
func (h *ProjectHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated", Message: "authentication required"})
		return
	}

	id := r.PathValue("id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "project ID is required"})
		return
	}

	if err := h.projects.Delete(r.Context(), claims.UserID, id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "project deleted"})
}

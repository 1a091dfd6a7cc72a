package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/sakif/devlink/internal/apperror"
	"github.com/sakif/devlink/internal/auth"
	"github.com/sakif/devlink/internal/github"
	"github.com/sakif/devlink/internal/model"
	"github.com/sakif/devlink/internal/repository"
)

// Defaults substituted when GitHub reports no value for a field.
const (
	DefaultDescription = "No description provided."
	DefaultLanguage    = "Other"
)

// placeholderAvatarBase generates an initials avatar for posters whose
// credential carries no avatar URL.
const placeholderAvatarBase = "https://ui-avatars.com/api/?name="

// RepoMetadataFetcher is the slice of the GitHub client the project
// service needs. Tests implement it with a stub.
type RepoMetadataFetcher interface {
	GetRepo(ctx context.Context, owner, repo string) (*github.Repo, error)
}

// ProjectService implements the feed operations: list, create with GitHub
// enrichment, upvote toggle, and owner-only delete.
type ProjectService struct {
	projects repository.ProjectRepository
	metadata RepoMetadataFetcher
	logger   *slog.Logger
}

// NewProjectService creates a ProjectService.
func NewProjectService(projects repository.ProjectRepository, metadata RepoMetadataFetcher, logger *slog.Logger) *ProjectService {
	return &ProjectService{
		projects: projects,
		metadata: metadata,
		logger:   logger,
	}
}

// List returns the whole feed, newest first. Public: no caller identity
// involved, no pagination, no server-side filtering.
func (s *ProjectService) List(ctx context.Context) ([]model.Project, error) {
	projects, err := s.projects.List(ctx)
	if err != nil {
		s.logger.Error("failed to list projects", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	return projects, nil
}

// Create posts a new project for the authenticated caller.
//
// The repo URL is parsed first; malformed input fails with ErrInvalidRepoURL
// before any external call. Then the repository metadata is fetched from
// GitHub; any upstream failure aborts the whole operation, so a project
// row is never half-created. The stored project snapshots both the GitHub
// metadata and the poster's identity as carried by the credential.
func (s *ProjectService) Create(ctx context.Context, caller auth.Claims, repoURL string) (*model.Project, error) {
	repoURL = strings.TrimSpace(repoURL)
	if repoURL == "" {
		return nil, apperror.ValidationFailed("repoUrl", "repoUrl is required")
	}

	owner, repo, err := github.ParseRepoURL(repoURL)
	if err != nil {
		return nil, err
	}

	meta, err := s.metadata.GetRepo(ctx, owner, repo)
	if err != nil {
		s.logger.Warn("repository metadata fetch failed",
			slog.String("repoUrl", repoURL),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	description := meta.Description
	if description == "" {
		description = DefaultDescription
	}
	language := meta.Language
	if language == "" {
		language = DefaultLanguage
	}
	avatar := caller.AvatarURL
	if avatar == "" {
		avatar = placeholderAvatarBase + url.QueryEscape(caller.Username)
	}

	project := &model.Project{
		OwnerID:           caller.UserID,
		PostedByUsername:  caller.Username,
		PostedByAvatarURL: avatar,
		Title:             meta.Name,
		RepoURL:           repoURL,
		Description:       description,
		StarCount:         meta.StarCount,
		Language:          language,
		UpvoterIDs:        []string{},
	}

	if err := s.projects.Create(ctx, project); err != nil {
		s.logger.Error("failed to create project",
			slog.String("repoUrl", repoURL),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating project: %w", err)
	}

	s.logger.Info("project posted",
		slog.String("id", project.ID),
		slog.String("title", project.Title),
		slog.String("owner", caller.UserID),
	)

	return project, nil
}

// ToggleUpvote adds the caller to the project's upvoter set, or removes
// them if already present. The full updated project is returned so the
// client can recompute the vote count and membership without a refetch.
//
// This is a read-modify-write with last-write-wins semantics: two
// concurrent toggles can both read the pre-mutation set and one update
// is lost. Callers recover by re-fetching the feed.
func (s *ProjectService) ToggleUpvote(ctx context.Context, callerID, projectID string) (*model.Project, error) {
	project, err := s.projects.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if project.HasUpvoter(callerID) {
		kept := make([]string, 0, len(project.UpvoterIDs)-1)
		for _, id := range project.UpvoterIDs {
			if id != callerID {
				kept = append(kept, id)
			}
		}
		project.UpvoterIDs = kept
	} else {
		project.UpvoterIDs = append(project.UpvoterIDs, callerID)
	}

	if err := s.projects.Update(ctx, project); err != nil {
		s.logger.Error("failed to persist upvote toggle",
			slog.String("projectID", projectID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("toggling upvote on %s: %w", projectID, err)
	}

	return project, nil
}

// Delete removes a project. Only the identity that posted it may delete
// it; anyone else gets ErrForbidden and the collection is untouched.
func (s *ProjectService) Delete(ctx context.Context, callerID, projectID string) error {
	project, err := s.projects.GetProjectByID(ctx, projectID)
	if err != nil {
		return err
	}

	if project.OwnerID != callerID {
		return apperror.Forbidden("only the owner may delete this project")
	}

	if err := s.projects.Delete(ctx, projectID); err != nil {
		return err
	}

	s.logger.Info("project deleted",
		slog.String("id", projectID),
		slog.String("owner", callerID),
	)
	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/sakif/devlink/internal/apperror"
	"github.com/sakif/devlink/internal/auth"
	"github.com/sakif/devlink/internal/github"
	"github.com/sakif/devlink/internal/model"
)

// =========================================================================
// MOCKS
// =========================================================================
//
// Hand-written in-memory fakes for the repository and the metadata
// fetcher. The service only sees interfaces, so these swap in cleanly.

type mockProjectRepo struct {
	projects map[string]*model.Project
	order    []string // creation order, oldest first
	nextID   int
}

func newMockProjectRepo() *mockProjectRepo {
	return &mockProjectRepo{projects: make(map[string]*model.Project)}
}

func (m *mockProjectRepo) Create(_ context.Context, project *model.Project) error {
	m.nextID++
	project.ID = fmt.Sprintf("proj-%d", m.nextID)
	stored := *project
	m.projects[project.ID] = &stored
	m.order = append(m.order, project.ID)
	return nil
}

func (m *mockProjectRepo) GetProjectByID(_ context.Context, id string) (*model.Project, error) {
	project, ok := m.projects[id]
	if !ok {
		return nil, apperror.NotFound("project", id)
	}
	result := *project
	result.UpvoterIDs = append([]string{}, project.UpvoterIDs...)
	return &result, nil
}

func (m *mockProjectRepo) List(_ context.Context) ([]model.Project, error) {
	result := make([]model.Project, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0; i-- { // newest first
		result = append(result, *m.projects[m.order[i]])
	}
	return result, nil
}

func (m *mockProjectRepo) Update(_ context.Context, project *model.Project) error {
	if _, ok := m.projects[project.ID]; !ok {
		return apperror.NotFound("project", project.ID)
	}
	stored := *project
	m.projects[project.ID] = &stored
	return nil
}

func (m *mockProjectRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.projects[id]; !ok {
		return apperror.NotFound("project", id)
	}
	delete(m.projects, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// mockMetadata returns a canned repo or a canned error and counts calls,
// so tests can assert that malformed URLs never reach GitHub.
type mockMetadata struct {
	repo  *github.Repo
	err   error
	calls int
}

func (m *mockMetadata) GetRepo(_ context.Context, owner, repo string) (*github.Repo, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if m.repo != nil {
		return m.repo, nil
	}
	return &github.Repo{Name: repo, Description: "desc", StarCount: 5, Language: "Go"}, nil
}

func newTestProjectService(t *testing.T) (*ProjectService, *mockProjectRepo, *mockMetadata) {
	t.Helper()
	repo := newMockProjectRepo()
	meta := &mockMetadata{}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	svc := NewProjectService(repo, meta, logger)
	return svc, repo, meta
}

func callerA() auth.Claims {
	return auth.Claims{UserID: "user-a", Username: "alice", AvatarURL: "https://example.com/alice.png"}
}

func callerB() auth.Claims {
	return auth.Claims{UserID: "user-b", Username: "bob", AvatarURL: "https://example.com/bob.png"}
}

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestCreate_Success(t *testing.T) {
	svc, _, meta := newTestProjectService(t)
	meta.repo = &github.Repo{Name: "bar", Description: "a repo", StarCount: 42, Language: "Go"}

	project, err := svc.Create(context.Background(), callerA(), "https://github.com/foo/bar")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if project.ID == "" {
		t.Error("Create() did not return a generated ID")
	}
	if project.OwnerID != "user-a" {
		t.Errorf("OwnerID = %q, want user-a", project.OwnerID)
	}
	if project.PostedByUsername != "alice" {
		t.Errorf("PostedByUsername = %q, want alice", project.PostedByUsername)
	}
	if project.Title != "bar" || project.StarCount != 42 || project.Language != "Go" {
		t.Errorf("metadata snapshot = %q/%d/%q, want bar/42/Go", project.Title, project.StarCount, project.Language)
	}
	if project.RepoURL != "https://github.com/foo/bar" {
		t.Errorf("RepoURL = %q, want the submitted link", project.RepoURL)
	}
	if len(project.UpvoterIDs) != 0 {
		t.Errorf("UpvoterIDs = %v, want empty", project.UpvoterIDs)
	}
}

func TestCreate_TrailingSlashAccepted(t *testing.T) {
	svc, _, _ := newTestProjectService(t)

	project, err := svc.Create(context.Background(), callerA(), "https://github.com/foo/bar/")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if project.Title != "bar" {
		t.Errorf("Title = %q, want bar", project.Title)
	}
}

func TestCreate_MalformedURLNoExternalCallNoPersistence(t *testing.T) {
	svc, repo, meta := newTestProjectService(t)

	urls := []string{
		"https://github.com/only-owner",
		"https://github.com/",
		"https://github.com/foo/bar/tree/main",
		"not a url",
	}
	for _, u := range urls {
		_, err := svc.Create(context.Background(), callerA(), u)
		if !errors.Is(err, apperror.ErrInvalidRepoURL) {
			t.Errorf("Create(%q) error = %v, want ErrInvalidRepoURL", u, err)
		}
	}

	if meta.calls != 0 {
		t.Errorf("metadata fetcher called %d times for malformed URLs, want 0", meta.calls)
	}
	if len(repo.projects) != 0 {
		t.Errorf("repository holds %d projects after failed creates, want 0", len(repo.projects))
	}
}

func TestCreate_UpstreamFailureNothingPersisted(t *testing.T) {
	svc, repo, meta := newTestProjectService(t)
	meta.err = apperror.Upstream("GitHub API returned status 503")

	_, err := svc.Create(context.Background(), callerA(), "https://github.com/foo/bar")
	if !errors.Is(err, apperror.ErrUpstream) {
		t.Fatalf("Create() error = %v, want ErrUpstream", err)
	}
	if len(repo.projects) != 0 {
		t.Errorf("repository holds %d projects after upstream failure, want 0", len(repo.projects))
	}
}

func TestCreate_Defaults(t *testing.T) {
	svc, _, meta := newTestProjectService(t)
	meta.repo = &github.Repo{Name: "bar"} // no description, no language

	caller := auth.Claims{UserID: "user-a", Username: "alice"} // no avatar

	project, err := svc.Create(context.Background(), caller, "https://github.com/foo/bar")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if project.Description != DefaultDescription {
		t.Errorf("Description = %q, want %q", project.Description, DefaultDescription)
	}
	if project.Language != DefaultLanguage {
		t.Errorf("Language = %q, want %q", project.Language, DefaultLanguage)
	}
	if project.PostedByAvatarURL != placeholderAvatarBase+"alice" {
		t.Errorf("PostedByAvatarURL = %q, want generated placeholder", project.PostedByAvatarURL)
	}
}

func TestCreate_EmptyURL(t *testing.T) {
	svc, _, meta := newTestProjectService(t)

	_, err := svc.Create(context.Background(), callerA(), "   ")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("Create() error = %v, want ErrValidation", err)
	}
	if meta.calls != 0 {
		t.Error("metadata fetcher called for empty input")
	}
}

// =========================================================================
// UPVOTE TOGGLE TESTS
// =========================================================================

func TestToggleUpvote_AddThenRemove(t *testing.T) {
	svc, _, _ := newTestProjectService(t)

	project, err := svc.Create(context.Background(), callerA(), "https://github.com/foo/bar")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// First toggle by B: vote.
	updated, err := svc.ToggleUpvote(context.Background(), "user-b", project.ID)
	if err != nil {
		t.Fatalf("ToggleUpvote() error = %v", err)
	}
	if len(updated.UpvoterIDs) != 1 || updated.UpvoterIDs[0] != "user-b" {
		t.Errorf("UpvoterIDs = %v, want [user-b]", updated.UpvoterIDs)
	}

	// Second toggle by B: un-vote, back to the original set.
	updated, err = svc.ToggleUpvote(context.Background(), "user-b", project.ID)
	if err != nil {
		t.Fatalf("ToggleUpvote() error = %v", err)
	}
	if len(updated.UpvoterIDs) != 0 {
		t.Errorf("UpvoterIDs = %v, want empty after second toggle", updated.UpvoterIDs)
	}
}

func TestToggleUpvote_MultipleVoters(t *testing.T) {
	svc, _, _ := newTestProjectService(t)

	project, _ := svc.Create(context.Background(), callerA(), "https://github.com/foo/bar")

	svc.ToggleUpvote(context.Background(), "user-b", project.ID)
	svc.ToggleUpvote(context.Background(), "user-c", project.ID)
	updated, err := svc.ToggleUpvote(context.Background(), "user-b", project.ID)
	if err != nil {
		t.Fatalf("ToggleUpvote() error = %v", err)
	}

	// B removed, C kept.
	if len(updated.UpvoterIDs) != 1 || updated.UpvoterIDs[0] != "user-c" {
		t.Errorf("UpvoterIDs = %v, want [user-c]", updated.UpvoterIDs)
	}
}

func TestToggleUpvote_UnknownProject(t *testing.T) {
	svc, _, _ := newTestProjectService(t)

	_, err := svc.ToggleUpvote(context.Background(), "user-b", "no-such-id")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("ToggleUpvote() error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// DELETE TESTS
// =========================================================================

func TestDelete_ByOwner(t *testing.T) {
	svc, _, _ := newTestProjectService(t)

	project, _ := svc.Create(context.Background(), callerA(), "https://github.com/foo/bar")

	if err := svc.Delete(context.Background(), "user-a", project.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	projects, _ := svc.List(context.Background())
	if len(projects) != 0 {
		t.Errorf("feed holds %d projects after delete, want 0", len(projects))
	}

	// Deleting the same id again reports NotFound.
	if err := svc.Delete(context.Background(), "user-a", project.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestDelete_NonOwnerForbidden(t *testing.T) {
	svc, repo, _ := newTestProjectService(t)

	project, _ := svc.Create(context.Background(), callerA(), "https://github.com/foo/bar")

	err := svc.Delete(context.Background(), "user-b", project.ID)
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("Delete() by non-owner error = %v, want ErrForbidden", err)
	}

	// The collection must be untouched.
	if len(repo.projects) != 1 {
		t.Errorf("repository holds %d projects, want 1 (unchanged)", len(repo.projects))
	}
}

func TestDelete_UnknownProject(t *testing.T) {
	svc, _, _ := newTestProjectService(t)

	if err := svc.Delete(context.Background(), "user-a", "no-such-id"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// FULL LIFECYCLE
// =========================================================================

// Mirrors the product flow end to end: A posts, B votes, B unvotes,
// A deletes.
func TestProjectLifecycle(t *testing.T) {
	svc, _, _ := newTestProjectService(t)
	ctx := context.Background()

	project, err := svc.Create(ctx, callerA(), "https://github.com/foo/bar")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	feed, _ := svc.List(ctx)
	if len(feed) != 1 || feed[0].ID != project.ID || len(feed[0].UpvoterIDs) != 0 {
		t.Fatalf("feed after create = %+v, want [project with empty upvoter set]", feed)
	}

	voted, err := svc.ToggleUpvote(ctx, callerB().UserID, project.ID)
	if err != nil {
		t.Fatalf("ToggleUpvote() error = %v", err)
	}
	if len(voted.UpvoterIDs) != 1 || voted.UpvoterIDs[0] != "user-b" {
		t.Fatalf("UpvoterIDs after vote = %v, want [user-b]", voted.UpvoterIDs)
	}

	unvoted, err := svc.ToggleUpvote(ctx, callerB().UserID, project.ID)
	if err != nil {
		t.Fatalf("ToggleUpvote() error = %v", err)
	}
	if len(unvoted.UpvoterIDs) != 0 {
		t.Fatalf("UpvoterIDs after unvote = %v, want empty", unvoted.UpvoterIDs)
	}

	if err := svc.Delete(ctx, callerA().UserID, project.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	feed, _ = svc.List(ctx)
	if len(feed) != 0 {
		t.Fatalf("feed after delete = %+v, want empty", feed)
	}
	if err := svc.Delete(ctx, callerA().UserID, project.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("re-delete error = %v, want ErrNotFound", err)
	}
}

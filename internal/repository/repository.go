// Package repository defines the storage interfaces consumed by the
// service layer. The concrete implementation lives in repository/sqlite;
// services only ever see these interfaces, which is what lets the tests
// substitute in-memory mocks.
package repository

import (
	"context"

	"github.com/sakif/devlink/internal/model"
)

// UserRepository stores identities keyed by their GitHub account.
type UserRepository interface {
	// Upsert creates the user on first login or refreshes avatar and bio
	// on subsequent logins, matching on GitHubID. The username is written
	// only on creation. On return the user carries its canonical ID,
	// username and timestamps.
	Upsert(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// ProjectRepository stores posted projects.
type ProjectRepository interface {
	Create(ctx context.Context, project *model.Project) error
	GetProjectByID(ctx context.Context, id string) (*model.Project, error)
	// List returns every project, newest first.
	List(ctx context.Context) ([]model.Project, error)
	// Update persists the full project row, including the upvoter set.
	// Concurrent updates to the same project last-write-win.
	Update(ctx context.Context, project *model.Project) error
	Delete(ctx context.Context, id string) error
}

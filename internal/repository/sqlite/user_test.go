package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/devlink/internal/apperror"
	"github.com/sakif/devlink/internal/model"
)

// Each test gets a fresh in-memory database, destroyed when the
// connection closes.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestUser upserts a user with the given GitHub identity.
func createTestUser(t *testing.T, db *DB, githubID int64, username string) *model.User {
	t.Helper()
	user := &model.User{
		GitHubID:  githubID,
		Username:  username,
		AvatarURL: "https://avatars.githubusercontent.com/u/1",
		Bio:       "building things",
	}
	if err := db.Upsert(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// =========================================================================
// UPSERT TESTS
// =========================================================================

func TestUpsert_FirstLogin(t *testing.T) {
	db := newTestDB(t)

	user := createTestUser(t, db, 1001, "octocat")

	if user.ID == "" {
		t.Error("Upsert() did not set user.ID")
	}
	if user.CreatedAt.IsZero() {
		t.Error("Upsert() did not set user.CreatedAt")
	}

	stored, err := db.GetUserByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if stored.Username != "octocat" {
		t.Errorf("Username = %q, want octocat", stored.Username)
	}
	if stored.Bio != "building things" {
		t.Errorf("Bio = %q, want %q", stored.Bio, "building things")
	}
}

func TestUpsert_SecondLoginRefreshesAvatarAndBio(t *testing.T) {
	db := newTestDB(t)

	first := createTestUser(t, db, 1001, "octocat")

	// Same GitHub account logs in again with a changed profile. The
	// provider even reports a new login name, which we must ignore.
	second := &model.User{
		GitHubID:  1001,
		Username:  "octocat-renamed",
		AvatarURL: "https://avatars.githubusercontent.com/u/1?v=2",
		Bio:       "now building other things",
	}
	if err := db.Upsert(context.Background(), second); err != nil {
		t.Fatalf("Upsert() second login error = %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("second login minted a new ID: %q != %q", second.ID, first.ID)
	}

	stored, err := db.GetUserByID(context.Background(), first.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if stored.Username != "octocat" {
		t.Errorf("Username = %q, want the original octocat (not resynced)", stored.Username)
	}
	if stored.AvatarURL != second.AvatarURL {
		t.Errorf("AvatarURL = %q, want refreshed %q", stored.AvatarURL, second.AvatarURL)
	}
	if stored.Bio != "now building other things" {
		t.Errorf("Bio = %q, want refreshed bio", stored.Bio)
	}
}

func TestUpsert_DistinctGitHubAccounts(t *testing.T) {
	db := newTestDB(t)

	a := createTestUser(t, db, 1001, "alice")
	b := createTestUser(t, db, 2002, "bob")

	if a.ID == b.ID {
		t.Error("distinct GitHub accounts share an internal ID")
	}
}

// =========================================================================
// GET TESTS
// =========================================================================

func TestGetUserByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetUserByID(context.Background(), "no-such-id")
	if err == nil {
		t.Fatal("GetUserByID() should fail for an unknown id")
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

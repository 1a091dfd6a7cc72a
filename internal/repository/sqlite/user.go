package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/devlink/internal/apperror"
	"github.com/sakif/devlink/internal/model"
	"github.com/sakif/devlink/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// Upsert inserts a new user or refreshes an existing one, matched on
// github_id.
//
// First login: a new row with a generated xid and the full GitHub profile.
// Later logins: avatar_url and bio are overwritten from the current
// profile, the username is left as it was at creation. GitHub is the
// source of truth for avatar and bio; the username is ours once minted.
//
// Either way the passed user ends up carrying the canonical stored record.
func (db *DB) Upsert(ctx context.Context, user *model.User) error {
	var (
		existingID       string
		existingUsername string
		existingCreated  time.Time
	)
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, username, created_at FROM users WHERE github_id = ?`, user.GitHubID,
	).Scan(&existingID, &existingUsername, &existingCreated)

	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("sqlite: looking up user by github_id %d: %w", user.GitHubID, err)
	}

	if existingID != "" {
		user.ID = existingID
		user.Username = existingUsername // not resynced after first login
		user.CreatedAt = existingCreated
		user.UpdatedAt = time.Now()

		_, err = db.conn.ExecContext(ctx,
			`UPDATE users SET avatar_url = ?, bio = ?, updated_at = ? WHERE id = ?`,
			user.AvatarURL,
			user.Bio,
			user.UpdatedAt,
			user.ID,
		)
		if err != nil {
			return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
		}
		return nil
	}

	now := time.Now()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO users (id, github_id, username, avatar_url, bio, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.GitHubID,
		user.Username,
		user.AvatarURL,
		user.Bio,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting user (githubID=%d): %w", user.GitHubID, err)
	}

	return nil
}

// GetUserByID retrieves a user by their internal ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, github_id, username, avatar_url, bio, created_at, updated_at
		 FROM users WHERE id = ?`,
		id,
	).Scan(
		&u.ID,
		&u.GitHubID,
		&u.Username,
		&u.AvatarURL,
		&u.Bio,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}

	return &u, nil
}

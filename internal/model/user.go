// Package model defines the data structures used throughout the application.
package model

import "time"

// User is a local identity backed by a GitHub account.
//
// GitHub OAuth is the only identity provider, so the external key is the
// GitHub user ID (an integer). We still generate our own internal string ID
// (xid) for consistency with Project and to avoid tying our primary keys to
// a third-party's numbering scheme.
//
// Username is set from the GitHub login on first login and never resynced
// afterwards. Avatar and bio are refreshed from GitHub on every login;
// the provider is the source of truth for those fields.
type User struct {
	ID        string    `json:"id"        db:"id"`
	GitHubID  int64     `json:"githubId"  db:"github_id"` // GitHub's numeric user ID; stable, unique
	Username  string    `json:"username"  db:"username"`
	AvatarURL string    `json:"avatarUrl" db:"avatar_url"`
	Bio       string    `json:"bio"       db:"bio"` // may be empty if hidden on GitHub
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

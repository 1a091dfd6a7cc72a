package model

import "time"

// Project is a posted repository link plus the GitHub metadata captured at
// submission time and its social state.
//
// Title, Description, StarCount and Language are a snapshot taken when the
// project is posted; they are never refreshed afterwards. The same goes for
// PostedByUsername/PostedByAvatarURL: they record who the poster was at post
// time and do not follow later profile edits.
//
// UpvoterIDs is a set; each user ID appears at most once. Membership means
// "this user has upvoted". Order carries no meaning.
type Project struct {
	ID                string    `json:"id"`
	OwnerID           string    `json:"ownerId"`
	PostedByUsername  string    `json:"postedByUsername"`
	PostedByAvatarURL string    `json:"postedByAvatarUrl"`
	Title             string    `json:"title"`
	RepoURL           string    `json:"repoUrl"`
	Description       string    `json:"description"`
	StarCount         int       `json:"starCount"`
	Language          string    `json:"language"`
	UpvoterIDs        []string  `json:"upvoterIds"`
	CreatedAt         time.Time `json:"createdAt"`
}

// HasUpvoter reports whether the given user is in the upvoter set.
func (p *Project) HasUpvoter(userID string) bool {
	for _, id := range p.UpvoterIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Package github fetches public repository metadata from the GitHub REST API.
//
// This is deliberately a tiny client: the project service needs exactly one
// endpoint (GET /repos/{owner}/{repo}) and four fields from its response.
// The full response shape is documented at
// https://docs.github.com/en/rest/repos/repos#get-a-repository
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sakif/devlink/internal/apperror"
)

// DefaultAPIBase is the production GitHub API origin. Tests point the
// client at an httptest server instead.
const DefaultAPIBase = "https://api.github.com"

// Repo is the snapshot of repository metadata captured when a project is
// posted.
type Repo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	StarCount   int    `json:"stargazers_count"`
	Language    string `json:"language"`
}

// ParseRepoURL extracts the {owner, repo} pair from a submitted repository
// link.
//
// One trailing slash is stripped before parsing. The path after the host
// must contain exactly two non-empty segments; anything else (a bare
// host, a single segment, extra segments, an unparseable string) fails
// with apperror.ErrInvalidRepoURL. Callers rely on this rejecting bad
// input before any network call is made.
func ParseRepoURL(repoURL string) (owner, repo string, err error) {
	cleaned := strings.TrimSuffix(repoURL, "/")

	u, parseErr := url.Parse(cleaned)
	if parseErr != nil || u.Host == "" {
		return "", "", apperror.InvalidRepoURL(repoURL)
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) != 2 || segments[0] == "" || segments[1] == "" {
		return "", "", apperror.InvalidRepoURL(repoURL)
	}

	return segments[0], segments[1], nil
}

// Client talks to the GitHub repositories API.
type Client struct {
	apiBase string
	http    *http.Client
}

// NewClient creates a Client against the given API base URL.
// Pass DefaultAPIBase outside of tests.
func NewClient(apiBase string) *Client {
	return &Client{
		apiBase: strings.TrimSuffix(apiBase, "/"),
		http:    &http.Client{},
	}
}

// GetRepo fetches metadata for the given repository.
//
// Every failure mode (transport error, non-200 status, undecodable body)
// comes back as apperror.ErrUpstream so the create operation fails as a
// whole and nothing is persisted.
func (c *Client) GetRepo(ctx context.Context, owner, repo string) (*Repo, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s", c.apiBase, url.PathEscape(owner), url.PathEscape(repo))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("github: building request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperror.Upstream(fmt.Sprintf("GitHub API unreachable: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperror.Upstream(fmt.Sprintf("GitHub API returned status %d for %s/%s", resp.StatusCode, owner, repo))
	}

	var r Repo
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return nil, apperror.Upstream(fmt.Sprintf("decoding GitHub repository response: %v", err))
	}

	return &r, nil
}

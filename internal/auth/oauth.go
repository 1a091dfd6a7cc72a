package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

// GitHubProfile is the portion of the GitHub /user API response we care
// about. GitHub returns a much larger object; we only unmarshal the fields
// we need.
//
// GitHub API docs: https://docs.github.com/en/rest/users/users#get-the-authenticated-user
type GitHubProfile struct {
	ID        int64  `json:"id"`         // GitHub's numeric user ID; stable, never changes
	Login     string `json:"login"`      // GitHub username, e.g. "sakif"
	AvatarURL string `json:"avatar_url"` // profile picture URL
	Bio       string `json:"bio"`        // profile bio, may be empty
}

// GitHubProvider wraps golang.org/x/oauth2 for the GitHub Authorization
// Code flow. It is constructed once with the app credentials and passed
// explicitly to the auth handler; no process-wide strategy registration.
//
// The code-for-token exchange happens server-to-server using the client
// secret; the access token never reaches the browser. The only thing the
// browser ever sees is our own signed session credential.
type GitHubProvider struct {
	config *oauth2.Config
}

// NewGitHubProvider creates a GitHubProvider with the given credentials.
//
// callbackURL must exactly match the "Authorization callback URL"
// configured on the GitHub OAuth app.
//
// We request the "read:user" scope; the public profile (ID, login,
// avatar, bio) is all DevLink needs.
func NewGitHubProvider(clientID, clientSecret, callbackURL string) *GitHubProvider {
	return &GitHubProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"read:user"},
			Endpoint:     github.Endpoint,
		},
	}
}

// AuthURL returns the GitHub authorization URL to redirect the user to.
//
// The state is a random string stored in a cookie before redirecting; the
// callback verifies the value GitHub echoes back matches the cookie. This
// blocks CSRF attacks where an attacker completes an OAuth flow for their
// own account inside the victim's browser.
func (p *GitHubProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange completes the OAuth flow: trades the authorization code for the
// GitHub user profile.
//
// Steps:
//  1. Exchange the code for an OAuth access token (server-to-server)
//  2. Use the token to call GitHub's /user endpoint
//  3. Unmarshal the response into a GitHubProfile
func (p *GitHubProvider) Exchange(ctx context.Context, code string) (*GitHubProfile, error) {
	oauthToken, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth: exchanging OAuth code: %w", err)
	}

	// oauth2.Config.Client returns an *http.Client that adds the
	// Authorization header to every request automatically.
	client := p.config.Client(ctx, oauthToken)

	resp, err := client.Get("https://api.github.com/user")
	if err != nil {
		return nil, fmt.Errorf("auth: calling GitHub /user API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth: GitHub /user API returned status %d", resp.StatusCode)
	}

	var profile GitHubProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("auth: decoding GitHub /user response: %w", err)
	}

	if profile.ID == 0 {
		return nil, fmt.Errorf("auth: GitHub returned an invalid user (ID = 0)")
	}

	return &profile, nil
}

// Package service contains the business logic layer.
//
// Handlers parse HTTP and write responses; services enforce the rules and
// orchestrate; repositories talk to the database. Each service receives
// its dependencies as interfaces so tests can substitute mocks.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/devlink/internal/auth"
	"github.com/sakif/devlink/internal/model"
	"github.com/sakif/devlink/internal/repository"
)

// AuthService handles the login business logic: it turns a verified GitHub
// profile into a local identity plus a signed session credential.
type AuthService struct {
	users  repository.UserRepository
	tokens *auth.TokenService
	logger *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(users repository.UserRepository, tokens *auth.TokenService, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

// LoginResult bundles the upserted user and the issued credential so the
// HTTP handler can build the redirect in one step.
type LoginResult struct {
	User  *model.User
	Token string
}

// LoginOrRegister completes a GitHub login.
//
// First login for a GitHub account creates the identity from the profile;
// later logins refresh avatar and bio (the username stays whatever it was
// at creation). Then a 7-day credential embedding the identity's ID,
// username and avatar is issued.
//
// The credential's claims are a snapshot: projects posted with it carry
// the username and avatar as of this login, even if the profile changes
// later.
func (s *AuthService) LoginOrRegister(ctx context.Context, profile *auth.GitHubProfile) (*LoginResult, error) {
	if profile == nil {
		return nil, fmt.Errorf("service/auth: GitHub profile must not be nil")
	}

	user := &model.User{
		GitHubID:  profile.ID,
		Username:  profile.Login,
		AvatarURL: profile.AvatarURL,
		Bio:       profile.Bio,
	}

	// Upsert by github_id; afterwards user carries the canonical record,
	// including the original username on repeat logins.
	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: upserting user (githubID=%d): %w", profile.ID, err)
	}

	s.logger.Info("user authenticated via GitHub",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	token, err := s.tokens.Issue(auth.Claims{
		UserID:    user.ID,
		Username:  user.Username,
		AvatarURL: user.AvatarURL,
	})
	if err != nil {
		return nil, fmt.Errorf("service/auth: issuing credential for user %s: %w", user.ID, err)
	}

	return &LoginResult{
		User:  user,
		Token: token,
	}, nil
}

// GetUserByID returns the stored identity for the given internal ID.
// Used by the /api/me handler after the middleware verifies the credential.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, fmt.Errorf("service/auth: user ID must not be empty")
	}

	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/auth: fetching user %s: %w", id, err)
	}

	return user, nil
}

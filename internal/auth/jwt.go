// Package auth provides the session credential and the GitHub OAuth flow.
//
// AUTHENTICATION FLOW OVERVIEW:
// 1. Browser hits /api/auth/github → redirected to GitHub
// 2. GitHub calls back /api/auth/github/callback with a code
// 3. Server exchanges the code for the GitHub profile, upserts the user
// 4. Server issues a signed JWT and redirects to the frontend with the
//    token in the URL; the client stores it and sends it back as a
//    Bearer header on protected requests
// 5. Middleware verifies the token and puts the decoded claims in the
//    request context; no database lookup on the hot path
//
// The token is stateless: everything a protected handler needs to identify
// the caller (user ID, username, avatar) is inside the signed payload.
// Those claims can be stale relative to later profile edits; that staleness
// is accepted for the token's 7-day lifetime.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenLifetime is how long an issued credential stays valid.
// After expiry the client's requests start failing with 401 and the user
// has to log in again; there is no refresh flow.
const TokenLifetime = 7 * 24 * time.Hour

const issuer = "devlink"

// Claims is the verified identity carried by a session credential.
// UserID lives in the standard "sub" claim; username and avatar are
// custom claims so the client and the project service can use them
// without a user lookup.
type Claims struct {
	UserID    string
	Username  string
	AvatarURL string
}

// tokenClaims is the JWT wire shape of Claims.
type tokenClaims struct {
	Username  string `json:"username"`
	AvatarURL string `json:"avatar,omitempty"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies session credentials.
//
// It holds the HMAC secret used for both operations; the same secret must
// be configured across restarts or every outstanding login is invalidated.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// Issue creates and signs a credential for the given identity,
// valid for TokenLifetime.
func (s *TokenService) Issue(c Claims) (string, error) {
	return s.IssueWithDuration(c, TokenLifetime)
}

// IssueWithDuration creates a credential with a custom expiry.
// Used by tests to mint already-expired tokens.
func (s *TokenService) IssueWithDuration(c Claims, d time.Duration) (string, error) {
	if c.UserID == "" {
		return "", errors.New("auth: claims must carry a user ID")
	}

	now := time.Now()
	tc := tokenClaims{
		Username:  c.Username,
		AvatarURL: c.AvatarURL,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   c.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tc)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Verify parses and checks a credential string and returns the claims it
// encodes. It is a pure function of the token and the secret; protected
// handlers call it (via the middleware) without touching the user store.
//
// Checks performed by the jwt library:
//   - signature matches (token wasn't tampered with)
//   - token is not expired
//   - issuer is ours (rejects tokens minted by other apps sharing a secret)
//   - algorithm is HS256 (prevents algorithm confusion attacks)
func (s *TokenService) Verify(tokenStr string) (Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&tokenClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, fmt.Errorf("auth: token expired")
		}
		return Claims{}, fmt.Errorf("auth: invalid token: %w", err)
	}

	tc, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return Claims{}, fmt.Errorf("auth: invalid token claims")
	}
	if tc.Subject == "" {
		return Claims{}, fmt.Errorf("auth: token has no subject")
	}

	return Claims{
		UserID:    tc.Subject,
		Username:  tc.Username,
		AvatarURL: tc.AvatarURL,
	}, nil
}

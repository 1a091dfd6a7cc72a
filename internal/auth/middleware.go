package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// contextKey is an unexported type for context keys in this package.
// Using a package-private type means only this package can read or write
// the claims value; no key collisions with other packages.
type contextKey string

const claimsKey contextKey = "claims"

// ErrNoCredential is returned when a request carries no Authorization
// header at all, as opposed to one that fails verification.
var ErrNoCredential = errors.New("auth: no bearer credential")

// FromRequest extracts and verifies the bearer credential on a request.
// It is a pure function of the request and the token service: callers get
// either verified Claims or an error, with no hidden request mutation.
func FromRequest(r *http.Request, tokens *TokenService) (Claims, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return Claims{}, ErrNoCredential
	}

	tokenStr, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || tokenStr == "" {
		return Claims{}, ErrNoCredential
	}

	return tokens.Verify(tokenStr)
}

// RequireAuth enforces authentication on protected routes.
//
// It verifies the "Authorization: Bearer <token>" header and stores the
// decoded claims in the request context. A missing credential gets 401
// with "unauthenticated"; a present-but-bad one (tampered, expired,
// malformed) gets 401 with "invalid_credential". Either way the request
// chain stops here.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := FromRequest(r, tokens)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				if errors.Is(err, ErrNoCredential) {
					w.Write([]byte(`{"error":"unauthenticated","message":"authentication required"}`))
				} else {
					w.Write([]byte(`{"error":"invalid_credential","message":"credential is invalid or expired"}`))
				}
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext retrieves the authenticated caller's claims from the
// request context.
//
// Returns (Claims{}, false) if the request is anonymous. On routes behind
// RequireAuth it always returns (claims, true).
func ClaimsFromContext(ctx context.Context) (Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(Claims)
	return claims, ok && claims.UserID != ""
}

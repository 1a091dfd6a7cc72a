package handler

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/rs/xid"

	"github.com/sakif/devlink/internal/auth"
	"github.com/sakif/devlink/internal/service"
)

// AuthHandler manages the GitHub OAuth login round trip.
//
//   - HandleGitHubLogin    → redirect the browser to GitHub's consent page
//   - HandleGitHubCallback → exchange the code, upsert the user, issue the
//     credential, and hand it to the frontend via the redirect URL
//   - HandleMe             → return the caller's stored identity
//
// Every callback failure redirects to {frontendOrigin}/login?error=...;
// the browser never sees a raw error status from the OAuth flow.
type AuthHandler struct {
	github         *auth.GitHubProvider
	auth           *service.AuthService
	frontendOrigin string
	logger         *slog.Logger
}

// NewAuthHandler creates an AuthHandler. The GitHub provider and auth
// service are constructed by the server and injected here.
func NewAuthHandler(github *auth.GitHubProvider, authSvc *service.AuthService, frontendOrigin string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		github:         github,
		auth:           authSvc,
		frontendOrigin: frontendOrigin,
		logger:         logger,
	}
}

// HandleGitHubLogin redirects the user to GitHub's authorization page.
//
// HTTP: GET /api/auth/github
//
// A random state value goes into a short-lived HttpOnly cookie; the
// callback compares it against what GitHub echoes back. That proves the
// flow started here and not on an attacker's page.
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10 minutes
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback completes the OAuth login flow.
//
// HTTP: GET /api/auth/github/callback?code=xxx&state=yyy
//
// FLOW:
//  1. Check the state parameter against the cookie
//  2. Exchange the code for the GitHub profile
//  3. Upsert the identity and issue the session credential
//  4. Redirect to {frontendOrigin}/?token={credential}
//
// Any failure along the way redirects to the frontend login route with an
// error code instead.
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" {
		h.logger.Warn("auth callback: missing state cookie")
		h.redirectLoginError(w, r, "state")
		return
	}
	if r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("auth callback: state mismatch")
		h.redirectLoginError(w, r, "state")
		return
	}

	// The state cookie is single-use.
	http.SetCookie(w, &http.Cookie{
		Name:   "oauth_state",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	// GitHub reports denial via an error query parameter.
	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("auth callback: provider reported an error",
			slog.String("error", errParam),
		)
		h.redirectLoginError(w, r, "denied")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.redirectLoginError(w, r, "missing_code")
		return
	}

	profile, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("auth callback: GitHub exchange failed", slog.String("error", err.Error()))
		h.redirectLoginError(w, r, "exchange_failed")
		return
	}

	result, err := h.auth.LoginOrRegister(r.Context(), profile)
	if err != nil {
		h.logger.Error("auth callback: login failed",
			slog.Int64("githubID", profile.ID),
			slog.String("error", err.Error()),
		)
		h.redirectLoginError(w, r, "login_failed")
		return
	}

	// Hand the credential to the SPA in the redirect URL; the client
	// stores it and strips it from the address bar.
	target := h.frontendOrigin + "/?token=" + url.QueryEscape(result.Token)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// redirectLoginError sends the browser to the frontend login route with a
// short error code. The OAuth flow never surfaces raw error statuses.
func (h *AuthHandler) redirectLoginError(w http.ResponseWriter, r *http.Request, code string) {
	target := h.frontendOrigin + "/login?error=" + url.QueryEscape(code)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// HandleMe returns the currently authenticated user's stored profile.
//
// HTTP: GET /api/me
// Auth: required
//
// Unlike the credential's claims, this reads the store; so it reflects
// profile refreshes from logins on other devices.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		// Unreachable behind RequireAuth, but be safe.
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated", Message: "authentication required"})
		return
	}

	user, err := h.auth.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("HandleMe: user lookup failed", slog.String("userID", claims.UserID))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

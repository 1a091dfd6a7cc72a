package handler

import (
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"
)

// PageHandler serves the single-page client shell and the login page.
// Templates are parsed once at startup and reused for every request.
//
// Each page gets its own template set: base.html defines the frame with a
// {{template "content" .}} placeholder, and the page file fills it with
// its own {{define "content"}} block. Keeping the sets separate lets both
// pages define "content" without clashing.
type PageHandler struct {
	app    *template.Template
	login  *template.Template
	logger *slog.Logger
}

// NewPageHandler parses the HTML templates under templateDir.
func NewPageHandler(templateDir string, logger *slog.Logger) (*PageHandler, error) {
	base := filepath.Join(templateDir, "base.html")

	app, err := template.ParseFiles(base, filepath.Join(templateDir, "app.html"))
	if err != nil {
		return nil, err
	}

	login, err := template.ParseFiles(base, filepath.Join(templateDir, "login.html"))
	if err != nil {
		return nil, err
	}

	return &PageHandler{
		app:    app,
		login:  login,
		logger: logger,
	}, nil
}

// HandleApp serves the feed dashboard shell.
//
// HTTP: GET /
// The page itself is static; the session store in app.js decides whether
// to render the feed or bounce to /login.
func (h *PageHandler) HandleApp(w http.ResponseWriter, r *http.Request) {
	h.render(w, h.app, map[string]any{
		"Title": "DevLink — share what you're building",
	})
}

// HandleLogin serves the login page.
//
// HTTP: GET /login[?error=code]
// The error code set by a failed OAuth callback is surfaced as a banner.
func (h *PageHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	h.render(w, h.login, map[string]any{
		"Title": "DevLink — sign in",
		"Error": r.URL.Query().Get("error"),
	})
}

func (h *PageHandler) render(w http.ResponseWriter, tmpl *template.Template, data map[string]any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		h.logger.Error("failed to render template", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// Package server wires the application together: it builds the dependency
// graph (config → database → services → handlers), maps routes, and runs
// the HTTP server with graceful shutdown.
//
// This is the composition root; every dependency is constructed and
// connected here, so the rest of the codebase stays free of globals.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sakif/devlink/internal/auth"
	"github.com/sakif/devlink/internal/config"
	"github.com/sakif/devlink/internal/github"
	"github.com/sakif/devlink/internal/handler"
	"github.com/sakif/devlink/internal/middleware"
	sqliteRepo "github.com/sakif/devlink/internal/repository/sqlite"
	"github.com/sakif/devlink/internal/service"
)

// Server owns the router and the resources that need closing on shutdown.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB

	templateDir string
	staticDir   string
}

// New creates a Server from the given configuration.
//
// The dependency chain, assembled bottom-up:
//
//	sqlite.DB → AuthService / ProjectService → handlers → routes
//
// Services receive repository interfaces, handlers receive services;
// nothing below this function touches a concrete store.
func New(cfg *config.Config, templateDir, staticDir string, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router:      chi.NewRouter(),
		config:      cfg,
		logger:      logger,
		db:          db,
		templateDir: templateDir,
		staticDir:   staticDir,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware and maps every route.
//
// ROUTE STRUCTURE:
//
//	GET    /                          → feed dashboard (HTML shell)
//	GET    /login                     → login page (HTML)
//	GET    /static/*                  → JS/CSS assets
//	GET    /api/auth/github           → redirect to GitHub consent page
//	GET    /api/auth/github/callback  → OAuth callback, redirects with token
//	GET    /api/me                    → caller's profile (auth)
//	GET    /api/projects              → full feed (public)
//	POST   /api/projects              → post a project (auth)
//	POST   /api/projects/{id}/upvote  → toggle upvote (auth)
//	DELETE /api/projects/{id}         → delete own project (auth)
func (s *Server) setupRoutes() error {
	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return err
	}

	githubOAuth := auth.NewGitHubProvider(
		s.config.GitHubClientID,
		s.config.GitHubClientSecret,
		s.config.GitHubCallbackURL,
	)
	githubAPI := github.NewClient(github.DefaultAPIBase)

	authService := service.NewAuthService(s.db, tokens, s.logger)
	projectService := service.NewProjectService(s.db, githubAPI, s.logger)

	authHandler := handler.NewAuthHandler(githubOAuth, authService, s.config.FrontendOrigin, s.logger)
	projectHandler := handler.NewProjectHandler(projectService, s.logger)

	pageHandler, err := handler.NewPageHandler(s.templateDir, s.logger)
	if err != nil {
		return fmt.Errorf("creating page handler: %w", err)
	}

	// Global middleware, in order: request ID, real IP, panic recovery,
	// request logging, CORS.
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	// Pages and assets.
	fileServer := http.FileServer(http.Dir(s.staticDir))
	s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))
	s.router.Get("/", pageHandler.HandleApp)
	s.router.Get("/login", pageHandler.HandleLogin)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/auth/github", authHandler.HandleGitHubLogin)
		r.Get("/auth/github/callback", authHandler.HandleGitHubCallback)

		r.Get("/projects", projectHandler.HandleList)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Get("/me", authHandler.HandleMe)
			r.Post("/projects", projectHandler.HandleCreate)
			r.Post("/projects/{id}/upvote", projectHandler.HandleToggleUpvote)
			r.Delete("/projects/{id}", projectHandler.HandleDelete)
		})
	})

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, give in-flight requests 30
// seconds, close the database (flushing the WAL).
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}

// Package main is the entry point for the DevLink server.
//
// main stays minimal: read configuration, create the logger, hand both to
// the server package. All actual logic lives in internal/.
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/devlink/internal/config"
	"github.com/sakif/devlink/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.JWTSecret == "" {
		// Without a signing secret no credential can be issued or
		// verified; refuse to start rather than run a broken login flow.
		// Generate one with: JWT_SECRET=$(openssl rand -hex 32)
		logger.Error("JWT_SECRET is not set")
		os.Exit(1)
	}

	// Ensure the database directory exists before sqlite opens the file.
	if dbDir := filepath.Dir(cfg.DBPath); dbDir != "." {
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dbDir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	// Template and static paths are relative to the project root, which
	// is the working directory under `go run ./cmd/server`.
	templateDir, _ := filepath.Abs("web/templates")
	staticDir, _ := filepath.Abs("web/static")

	srv, err := server.New(cfg, templateDir, staticDir, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Blocks until the server is shut down via SIGINT/SIGTERM.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

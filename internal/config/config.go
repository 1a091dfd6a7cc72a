// Package config loads the server configuration from the environment.
//
// Configuration is read once at startup into a Config struct that is passed
// explicitly to the server; no package-level state. A .env file in the
// working directory is loaded first (if present) so local development
// doesn't need exported shell variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds everything the server needs to start.
type Config struct {
	// Server settings
	Port   int
	DBPath string

	// Session credential signing
	JWTSecret string

	// GitHub OAuth app credentials
	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string

	// Where the OAuth callback redirects the browser after login.
	// The credential is appended as ?token=... on success.
	FrontendOrigin string

	// Origins allowed by the CORS policy, comma-separated in the env.
	AllowedOrigins []string
}

// Load reads the configuration from a .env file (if present) and the
// process environment. Environment variables win over .env values because
// godotenv never overwrites an already-set variable.
func Load() (*Config, error) {
	// Missing .env is fine; production sets real environment variables.
	_ = godotenv.Load()

	cfg := &Config{
		Port:               8080,
		DBPath:             "data/devlink.db",
		JWTSecret:          os.Getenv("JWT_SECRET"),
		GitHubClientID:     os.Getenv("GITHUB_CLIENT_ID"),
		GitHubClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
		GitHubCallbackURL:  os.Getenv("GITHUB_CALLBACK_URL"),
		FrontendOrigin:     os.Getenv("FRONTEND_ORIGIN"),
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("config: invalid PORT %q: %w", portStr, err)
		}
		cfg.Port = port
	}

	if dbPath := os.Getenv("DB_PATH"); dbPath != "" {
		cfg.DBPath = dbPath
	}

	if cfg.FrontendOrigin == "" {
		// The server hosts the frontend itself by default.
		cfg.FrontendOrigin = fmt.Sprintf("http://localhost:%d", cfg.Port)
	}
	cfg.FrontendOrigin = strings.TrimRight(cfg.FrontendOrigin, "/")

	if cfg.GitHubCallbackURL == "" {
		cfg.GitHubCallbackURL = fmt.Sprintf("http://localhost:%d/api/auth/github/callback", cfg.Port)
	}

	if originsStr := os.Getenv("ALLOWED_ORIGINS"); originsStr != "" {
		for _, origin := range strings.Split(originsStr, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
			}
		}
	} else {
		cfg.AllowedOrigins = []string{cfg.FrontendOrigin}
	}

	return cfg, nil
}

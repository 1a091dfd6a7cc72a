// Package sqlite implements the repository interfaces on SQLite.
//
// SQLite is embedded; the whole store is one file (or ":memory:" in
// tests), which keeps DevLink a single-binary deployment. We use
// modernc.org/sqlite, a pure-Go translation of SQLite, so there is no CGo
// and cross-compilation stays painless.
package sqlite

import (
	"database/sql"
	"fmt"

	// Side-effect import: registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and implements
// repository.UserRepository and repository.ProjectRepository.
type DB struct {
	conn *sql.DB
}

// New opens the database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/devlink.db"  → file-based database (persistent)
//   - ":memory:"         → in-memory database (tests)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Surface bad paths and permission problems now, not on first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows concurrent reads while a write is in progress; relevant
	// for a web server where list requests overlap with toggles.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Off by default in SQLite; projects.owner_id references users.id.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool. The server defers this on shutdown so
// the WAL is flushed and the file lock released.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps this safe
// to run on every startup.
//
// upvoter_ids is a JSON array of user IDs stored as TEXT. The upvote
// toggle reads the row, mutates the set in Go, and writes the whole row
// back, a document-style read-modify-write.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id         TEXT PRIMARY KEY,
			github_id  INTEGER NOT NULL UNIQUE,
			username   TEXT NOT NULL,
			avatar_url TEXT NOT NULL DEFAULT '',
			bio        TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS projects (
			id                   TEXT PRIMARY KEY,
			owner_id             TEXT NOT NULL REFERENCES users(id),
			posted_by_username   TEXT NOT NULL,
			posted_by_avatar_url TEXT NOT NULL DEFAULT '',
			title                TEXT NOT NULL,
			repo_url             TEXT NOT NULL,
			description          TEXT NOT NULL DEFAULT '',
			star_count           INTEGER NOT NULL DEFAULT 0,
			language             TEXT NOT NULL DEFAULT '',
			upvoter_ids          TEXT NOT NULL DEFAULT '[]',
			created_at           DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_projects_created_at ON projects(created_at);
		CREATE INDEX IF NOT EXISTS idx_projects_owner_id ON projects(owner_id);
	`)
	if err != nil {
		return fmt.Errorf("creating projects table: %w", err)
	}

	return nil
}

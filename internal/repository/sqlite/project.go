package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/devlink/internal/apperror"
	"github.com/sakif/devlink/internal/model"
	"github.com/sakif/devlink/internal/repository"
)

// compile-time check that *DB implements repository.ProjectRepository
var _ repository.ProjectRepository = (*DB)(nil)

// encodeUpvoters marshals the upvoter set into the JSON TEXT column.
// A nil slice encodes as "[]" so the column never holds SQL NULL or
// JSON null.
func encodeUpvoters(ids []string) (string, error) {
	if ids == nil {
		ids = []string{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("encoding upvoter ids: %w", err)
	}
	return string(raw), nil
}

func decodeUpvoters(raw string) ([]string, error) {
	ids := []string{}
	if raw == "" {
		return ids, nil
	}
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("decoding upvoter ids: %w", err)
	}
	return ids, nil
}

// Create inserts a new project, generating its ID and creation timestamp.
// The passed project is modified in place so the caller can return the
// stored record directly.
func (db *DB) Create(ctx context.Context, project *model.Project) error {
	project.ID = xid.New().String()
	project.CreatedAt = time.Now()
	if project.UpvoterIDs == nil {
		project.UpvoterIDs = []string{}
	}

	upvoters, err := encodeUpvoters(project.UpvoterIDs)
	if err != nil {
		return fmt.Errorf("sqlite: creating project: %w", err)
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO projects (id, owner_id, posted_by_username, posted_by_avatar_url,
		                       title, repo_url, description, star_count, language,
		                       upvoter_ids, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		project.ID,
		project.OwnerID,
		project.PostedByUsername,
		project.PostedByAvatarURL,
		project.Title,
		project.RepoURL,
		project.Description,
		project.StarCount,
		project.Language,
		upvoters,
		project.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating project: %w", err)
	}

	return nil
}

const projectColumns = `id, owner_id, posted_by_username, posted_by_avatar_url,
	title, repo_url, description, star_count, language, upvoter_ids, created_at`

func scanProject(row interface{ Scan(...any) error }) (*model.Project, error) {
	var (
		p         model.Project
		rawVoters string
	)
	err := row.Scan(
		&p.ID,
		&p.OwnerID,
		&p.PostedByUsername,
		&p.PostedByAvatarURL,
		&p.Title,
		&p.RepoURL,
		&p.Description,
		&p.StarCount,
		&p.Language,
		&rawVoters,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if p.UpvoterIDs, err = decodeUpvoters(rawVoters); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProjectByID retrieves a single project by its ID.
// Returns apperror.ErrNotFound if no project exists with that ID.
func (db *DB) GetProjectByID(ctx context.Context, id string) (*model.Project, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)

	project, err := scanProject(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("project", id)
		}
		return nil, fmt.Errorf("sqlite: getting project %s: %w", id, err)
	}
	return project, nil
}

// List returns every project, newest first. The feed is unpaginated; the
// whole collection is the response.
func (db *DB) List(ctx context.Context) ([]model.Project, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing projects: %w", err)
	}
	defer rows.Close()

	projects := []model.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning project row: %w", err)
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating projects: %w", err)
	}

	return projects, nil
}

// Update persists the full row for an existing project. The only mutable
// field in practice is the upvoter set, but writing the whole row keeps
// the toggle a plain read-modify-write: concurrent updates to the same
// project last-write-win with no optimistic locking.
func (db *DB) Update(ctx context.Context, project *model.Project) error {
	upvoters, err := encodeUpvoters(project.UpvoterIDs)
	if err != nil {
		return fmt.Errorf("sqlite: updating project %s: %w", project.ID, err)
	}

	result, err := db.conn.ExecContext(ctx,
		`UPDATE projects
		 SET posted_by_username = ?, posted_by_avatar_url = ?, title = ?,
		     repo_url = ?, description = ?, star_count = ?, language = ?,
		     upvoter_ids = ?
		 WHERE id = ?`,
		project.PostedByUsername,
		project.PostedByAvatarURL,
		project.Title,
		project.RepoURL,
		project.Description,
		project.StarCount,
		project.Language,
		upvoters,
		project.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating project %s: %w", project.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking update of project %s: %w", project.ID, err)
	}
	if affected == 0 {
		return apperror.NotFound("project", project.ID)
	}

	return nil
}

// Delete removes a project permanently.
// Returns apperror.ErrNotFound if no project exists with that ID.
func (db *DB) Delete(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting project %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking delete of project %s: %w", id, err)
	}
	if affected == 0 {
		return apperror.NotFound("project", id)
	}

	return nil
}

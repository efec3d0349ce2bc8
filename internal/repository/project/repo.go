// Package project persists projects in the embedded SQLite database.
package project

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/archon-hq/archon/internal/domain"
)

// Repo implements usecase/project.Repository.
type Repo struct {
	db *sql.DB
}

// New creates a project repository.
func New(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// Create inserts a project and fills in its id and timestamps.
func (r *Repo) Create(ctx context.Context, p *domain.Project) (*domain.Project, error) {
	now := time.Now().Unix()
	p.CreatedAt = time.Unix(now, 0).UTC()
	p.UpdatedAt = p.CreatedAt

	stmt := `INSERT INTO archon_projects (title, github_repo, created_ts, updated_ts)
		VALUES (?, ?, ?, ?)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, stmt, p.Title, p.GitHubRepo, now, now).Scan(&p.ID)
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return p, nil
}

// Get returns the project with the given id.
func (r *Repo) Get(ctx context.Context, id int64) (*domain.Project, error) {
	stmt := `SELECT id, title, github_repo, created_ts, updated_ts
		FROM archon_projects WHERE id = ?`

	p, err := scanProject(r.db.QueryRowContext(ctx, stmt, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, fmt.Errorf("get project %d: %w", id, err)
	}
	return p, nil
}

// List returns all projects, newest first.
func (r *Repo) List(ctx context.Context) ([]*domain.Project, error) {
	stmt := `SELECT id, title, github_repo, created_ts, updated_ts
		FROM archon_projects ORDER BY created_ts DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	list := []*domain.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// Update rewrites the project title and repo link, bumping updated_ts.
func (r *Repo) Update(ctx context.Context, id int64, title, githubRepo string) (*domain.Project, error) {
	now := time.Now().Unix()

	stmt := `UPDATE archon_projects SET title = ?, github_repo = ?, updated_ts = ? WHERE id = ?`

	res, err := r.db.ExecContext(ctx, stmt, title, githubRepo, now, id)
	if err != nil {
		return nil, fmt.Errorf("update project %d: %w", id, err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return nil, domain.ErrProjectNotFound
	}
	return r.Get(ctx, id)
}

// Delete removes a project together with its tasks.
func (r *Repo) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete project %d: %w", id, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM archon_tasks WHERE project_id = ?`, id); err != nil {
		return fmt.Errorf("delete project tasks: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM archon_projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete project %d: %w", id, err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return domain.ErrProjectNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete project %d: %w", id, err)
	}
	return nil
}

// scanner abstracts sql.Row and sql.Rows for shared scanning.
type scanner interface {
	Scan(dest ...any) error
}

func scanProject(s scanner) (*domain.Project, error) {
	var p domain.Project
	var createdTs, updatedTs int64

	if err := s.Scan(&p.ID, &p.Title, &p.GitHubRepo, &createdTs, &updatedTs); err != nil {
		return nil, err
	}
	p.CreatedAt = time.Unix(createdTs, 0).UTC()
	p.UpdatedAt = time.Unix(updatedTs, 0).UTC()
	return &p, nil
}

// Package task persists tasks in the embedded SQLite database.
package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/archon-hq/archon/internal/domain"
)

// Repo implements usecase/task.Repository.
type Repo struct {
	db *sql.DB
}

// New creates a task repository.
func New(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// Create inserts a task and fills in its id and timestamps. The parent
// project must exist; foreign keys are off in the schema, so the check lives
// here.
func (r *Repo) Create(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM archon_projects WHERE id = ?)`, t.ProjectID,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check project %d: %w", t.ProjectID, err)
	}
	if !exists {
		return nil, domain.ErrProjectNotFound
	}

	now := time.Now().Unix()
	t.CreatedAt = time.Unix(now, 0).UTC()
	t.UpdatedAt = t.CreatedAt

	stmt := `INSERT INTO archon_tasks (project_id, title, description, status, assignee, created_ts, updated_ts)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`

	err = r.db.QueryRowContext(ctx, stmt,
		t.ProjectID, t.Title, t.Description, string(t.Status), t.Assignee, now, now,
	).Scan(&t.ID)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return t, nil
}

// Get returns the task with the given id.
func (r *Repo) Get(ctx context.Context, id int64) (*domain.Task, error) {
	stmt := `SELECT id, project_id, title, description, status, assignee, created_ts, updated_ts
		FROM archon_tasks WHERE id = ?`

	t, err := scanTask(r.db.QueryRowContext(ctx, stmt, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}
	return t, nil
}

// List returns tasks matching the filter, newest first.
func (r *Repo) List(ctx context.Context, f domain.TaskFilter) ([]*domain.Task, error) {
	where, args := []string{"1 = 1"}, []any{}

	if f.ProjectID != nil {
		where, args = append(where, "project_id = ?"), append(args, *f.ProjectID)
	}
	if f.Status != nil {
		where, args = append(where, "status = ?"), append(args, string(*f.Status))
	}

	stmt := `SELECT id, project_id, title, description, status, assignee, created_ts, updated_ts
		FROM archon_tasks WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY created_ts DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	list := []*domain.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		list = append(list, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// UpdateStatus moves a task to a new workflow state.
func (r *Repo) UpdateStatus(ctx context.Context, id int64, status domain.Status) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE archon_tasks SET status = ?, updated_ts = ? WHERE id = ?`,
		string(status), time.Now().Unix(), id,
	)
	if err != nil {
		return fmt.Errorf("update task %d status: %w", id, err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// Delete removes a task.
func (r *Repo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM archon_tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// scanner abstracts sql.Row and sql.Rows for shared scanning.
type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (*domain.Task, error) {
	var t domain.Task
	var status string
	var createdTs, updatedTs int64

	err := s.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Description, &status, &t.Assignee, &createdTs, &updatedTs)
	if err != nil {
		return nil, err
	}
	t.Status = domain.Status(status)
	t.CreatedAt = time.Unix(createdTs, 0).UTC()
	t.UpdatedAt = time.Unix(updatedTs, 0).UTC()
	return &t, nil
}

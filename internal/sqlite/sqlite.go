// Package sqlite opens the embedded project database and applies its schema.
//
// The database backs project and task tracking only. Vector search data lives
// in the vector store, never here.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Open opens or creates the SQLite database at path.
//
// Pragma notes:
//   - foreign_keys stays off: task rows reference projects by id, but deletes
//     cascade in the repository layer where they can be logged.
//   - busy_timeout guards against transient locking from concurrent readers.
//   - WAL journal mode is the recommended mode for server processes.
//
// With the modernc.org/sqlite driver each pragma is passed as `_pragma=` in
// the DSN.
func Open(path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(0)&_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}

	// A single connection is optimal for SQLite under WAL.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	return db, nil
}

// Migrate creates the schema when missing. Statements are idempotent and run
// inside one transaction.
func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS archon_projects (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			github_repo TEXT NOT NULL DEFAULT '',
			created_ts INTEGER NOT NULL,
			updated_ts INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS archon_tasks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			project_id INTEGER NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'todo',
			assignee TEXT NOT NULL DEFAULT 'User',
			created_ts INTEGER NOT NULL,
			updated_ts INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_archon_tasks_project ON archon_tasks(project_id);`,
		`CREATE INDEX IF NOT EXISTS idx_archon_tasks_status ON archon_tasks(status);`,
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, s := range stmts {
		if _, err := tx.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration: %w", err)
	}
	return nil
}

package task

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/archon-hq/archon/internal/domain"
	"github.com/archon-hq/archon/internal/repository/project"
	"github.com/archon-hq/archon/internal/sqlite"
)

// newTestRepo opens a fresh database and seeds one project for tasks to hang
// off. Returns the repo and the seeded project id.
func newTestRepo(t *testing.T) (*Repo, int64) {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	if err := sqlite.Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	p, err := domain.NewProject("test project", "")
	if err != nil {
		t.Fatalf("NewProject: %v", err)
	}
	created, err := project.New(db).Create(ctx, &p)
	if err != nil {
		t.Fatalf("seed project: %v", err)
	}

	return New(db), created.ID
}

func mustCreateTask(t *testing.T, repo *Repo, projectID int64, title string, status domain.Status) *domain.Task {
	t.Helper()

	task, err := domain.NewTask(projectID, title, "", status, "")
	if err != nil {
		t.Fatalf("NewTask: %v", err)
	}
	created, err := repo.Create(context.Background(), &task)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return created
}

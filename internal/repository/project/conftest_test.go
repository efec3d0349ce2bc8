package project

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/archon-hq/archon/internal/sqlite"
)

func newTestRepo(t *testing.T) *Repo {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := sqlite.Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return New(db)
}

package task

import (
	"context"

	"github.com/archon-hq/archon/internal/domain"
)

// Repository defines the storage contract for tasks.
type Repository interface {
	Create(ctx context.Context, t *domain.Task) (*domain.Task, error)
	Get(ctx context.Context, id int64) (*domain.Task, error)
	List(ctx context.Context, f domain.TaskFilter) ([]*domain.Task, error)
	UpdateStatus(ctx context.Context, id int64, status domain.Status) error
	Delete(ctx context.Context, id int64) error
}

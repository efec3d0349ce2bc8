package project

import (
	"context"

	"github.com/archon-hq/archon/internal/domain"
)

// Repository defines the storage contract for projects.
type Repository interface {
	Create(ctx context.Context, p *domain.Project) (*domain.Project, error)
	Get(ctx context.Context, id int64) (*domain.Project, error)
	List(ctx context.Context) ([]*domain.Project, error)
	Update(ctx context.Context, id int64, title, githubRepo string) (*domain.Project, error)
	Delete(ctx context.Context, id int64) error
}

package project

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/archon-hq/archon/internal/domain"
)

// Service handles project CRUD operations.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// New creates a project service.
func New(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Create validates and stores a new project.
func (s *Service) Create(ctx context.Context, title, githubRepo string) (*domain.Project, error) {
	p, err := domain.NewProject(title, githubRepo)
	if err != nil {
		return nil, fmt.Errorf("validate project: %w", err)
	}

	created, err := s.repo.Create(ctx, &p)
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	s.logger.Info("Project created",
		zap.Int64("project_id", created.ID),
		zap.String("title", created.Title),
	)
	return created, nil
}

// Get retrieves a project by id.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Project, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

// List returns all projects, newest first.
func (s *Service) List(ctx context.Context) ([]*domain.Project, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return list, nil
}

// Update replaces the project title and repo link.
func (s *Service) Update(ctx context.Context, id int64, title, githubRepo string) (*domain.Project, error) {
	p, err := domain.NewProject(title, githubRepo)
	if err != nil {
		return nil, fmt.Errorf("validate project: %w", err)
	}

	updated, err := s.repo.Update(ctx, id, p.Title, p.GitHubRepo)
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}

	s.logger.Info("Project updated", zap.Int64("project_id", id))
	return updated, nil
}

// Delete removes a project and its tasks.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}

	s.logger.Info("Project deleted", zap.Int64("project_id", id))
	return nil
}

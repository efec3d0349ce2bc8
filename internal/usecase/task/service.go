package task

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/archon-hq/archon/internal/domain"
)

// Service handles task tracking operations.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// New creates a task service.
func New(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Create validates and stores a new task.
func (s *Service) Create(
	ctx context.Context, projectID int64,
	title, description string, status domain.Status, assignee string,
) (*domain.Task, error) {
	t, err := domain.NewTask(projectID, title, description, status, assignee)
	if err != nil {
		return nil, fmt.Errorf("validate task: %w", err)
	}

	created, err := s.repo.Create(ctx, &t)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.logger.Info("Task created",
		zap.Int64("task_id", created.ID),
		zap.Int64("project_id", created.ProjectID),
		zap.String("status", string(created.Status)),
	)
	return created, nil
}

// Get retrieves a task by id.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Task, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// List returns tasks matching the filter, newest first.
func (s *Service) List(ctx context.Context, f domain.TaskFilter) ([]*domain.Task, error) {
	list, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return list, nil
}

// UpdateStatus moves a task to a new workflow state.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status domain.Status) error {
	if !status.IsValid() {
		return domain.NewInvalidStatus(string(status))
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return fmt.Errorf("update task status: %w", err)
	}

	s.logger.Info("Task status updated",
		zap.Int64("task_id", id),
		zap.String("status", string(status)),
	)
	return nil
}

// Delete removes a task.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	s.logger.Info("Task deleted", zap.Int64("task_id", id))
	return nil
}

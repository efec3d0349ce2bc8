package domain

import (
	"strings"
	"time"
)

// Status is the workflow state of a task.
type Status string

// Task workflow states, in board order.
const (
	StatusTodo   Status = "todo"
	StatusDoing  Status = "doing"
	StatusReview Status = "review"
	StatusDone   Status = "done"
)

// DefaultAssignee is assigned to tasks created without an explicit owner.
const DefaultAssignee = "User"

// IsValid checks if the status is one of the supported values.
func (s Status) IsValid() bool {
	return s == StatusTodo || s == StatusDoing || s == StatusReview || s == StatusDone
}

// TaskStatuses returns the allowed task statuses in board order.
func TaskStatuses() []Status {
	return []Status{StatusTodo, StatusDoing, StatusReview, StatusDone}
}

// Task is a unit of work inside a project.
type Task struct {
	ID          int64     `json:"id"`
	ProjectID   int64     `json:"project_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      Status    `json:"status"`
	Assignee    string    `json:"assignee"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TaskFilter narrows task listings. Nil fields match everything.
type TaskFilter struct {
	ProjectID *int64
	Status    *Status
}

// NewTask creates a task with validated fields. An empty status defaults to todo,
// an empty assignee to DefaultAssignee.
func NewTask(projectID int64, title, description string, status Status, assignee string) (Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Task{}, ErrInvalidTitle
	}
	if status == "" {
		status = StatusTodo
	}
	if !status.IsValid() {
		return Task{}, NewInvalidStatus(string(status))
	}
	if assignee == "" {
		assignee = DefaultAssignee
	}
	return Task{
		ProjectID:   projectID,
		Title:       title,
		Description: description,
		Status:      status,
		Assignee:    assignee,
	}, nil
}

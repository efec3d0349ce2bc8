package archon

import "time"

// SearchHit is a single retrieval result.
type SearchHit struct {
	ID      string         `json:"id"`
	Score   float64        `json:"score"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Project is a knowledge-base project record.
type Project struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	GitHubRepo string    `json:"github_repo,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TaskStatus enumerates the task workflow states.
type TaskStatus string

// Task workflow states.
const (
	StatusTodo   TaskStatus = "todo"
	StatusDoing  TaskStatus = "doing"
	StatusReview TaskStatus = "review"
	StatusDone   TaskStatus = "done"
)

// Task is a unit of work inside a project.
type Task struct {
	ID          int64      `json:"id"`
	ProjectID   int64      `json:"project_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      TaskStatus `json:"status"`
	Assignee    string     `json:"assignee"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TaskCreate holds the fields for creating a task. Status defaults to todo
// and Assignee to "User" when left empty.
type TaskCreate struct {
	ProjectID   int64      `json:"project_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      TaskStatus `json:"status,omitempty"`
	Assignee    string     `json:"assignee,omitempty"`
}

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            `json:"status"` // "ok", "degraded", "error"
	Checks map[string]string `json:"checks"` // component -> "ok"/"error"
}

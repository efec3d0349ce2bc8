package domain

import (
	"strings"
	"time"
)

// Project is a knowledge-base project record.
type Project struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	GitHubRepo string    `json:"github_repo,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewProject creates a project with a validated, trimmed title.
func NewProject(title, githubRepo string) (Project, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Project{}, ErrInvalidTitle
	}
	return Project{Title: title, GitHubRepo: strings.TrimSpace(githubRepo)}, nil
}

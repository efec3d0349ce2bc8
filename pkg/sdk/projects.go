package archon

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// ProjectService manages knowledge-base projects.
type ProjectService struct {
	c *Client
}

type projectRequest struct {
	Title      string `json:"title"`
	GitHubRepo string `json:"github_repo,omitempty"`
}

type projectList struct {
	Items []Project `json:"items"`
	Count int       `json:"count"`
}

// Create registers a new project. Title is required.
func (s *ProjectService) Create(
	ctx context.Context, title, githubRepo string,
) (p Project, err error) {
	start := time.Now()
	defer func() { s.c.obs.observe("project.create", start, err) }()

	err = s.c.do(ctx, http.MethodPost, "/api/projects",
		projectRequest{Title: title, GitHubRepo: githubRepo}, &p)
	return p, err
}

// Get fetches a project by id.
func (s *ProjectService) Get(ctx context.Context, id int64) (p Project, err error) {
	start := time.Now()
	defer func() { s.c.obs.observe("project.get", start, err) }()

	err = s.c.do(ctx, http.MethodGet, fmt.Sprintf("/api/projects/%d", id), nil, &p)
	return p, err
}

// List returns all projects, newest first.
func (s *ProjectService) List(ctx context.Context) (projects []Project, err error) {
	start := time.Now()
	defer func() { s.c.obs.observe("project.list", start, err) }()

	var resp projectList
	if err = s.c.do(ctx, http.MethodGet, "/api/projects", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// Update replaces a project's title and repository link.
func (s *ProjectService) Update(
	ctx context.Context, id int64, title, githubRepo string,
) (p Project, err error) {
	start := time.Now()
	defer func() { s.c.obs.observe("project.update", start, err) }()

	err = s.c.do(ctx, http.MethodPut, fmt.Sprintf("/api/projects/%d", id),
		projectRequest{Title: title, GitHubRepo: githubRepo}, &p)
	return p, err
}

// Delete removes a project and its tasks.
func (s *ProjectService) Delete(ctx context.Context, id int64) (err error) {
	start := time.Now()
	defer func() { s.c.obs.observe("project.delete", start, err) }()

	return s.c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/projects/%d", id), nil, nil)
}

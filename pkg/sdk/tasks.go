package archon

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// TaskService manages tasks inside projects.
type TaskService struct {
	c *Client
}

// TaskListOptions narrows task listings. Zero values match everything.
type TaskListOptions struct {
	ProjectID int64
	Status    TaskStatus
}

type taskStatusRequest struct {
	Status TaskStatus `json:"status"`
}

type taskList struct {
	Items []Task `json:"items"`
	Count int    `json:"count"`
}

// Create adds a task to a project. The project must exist.
func (s *TaskService) Create(ctx context.Context, req TaskCreate) (t Task, err error) {
	start := time.Now()
	defer func() { s.c.obs.observe("task.create", start, err) }()

	err = s.c.do(ctx, http.MethodPost, "/api/tasks", req, &t)
	return t, err
}

// Get fetches a task by id.
func (s *TaskService) Get(ctx context.Context, id int64) (t Task, err error) {
	start := time.Now()
	defer func() { s.c.obs.observe("task.get", start, err) }()

	err = s.c.do(ctx, http.MethodGet, fmt.Sprintf("/api/tasks/%d", id), nil, &t)
	return t, err
}

// List returns tasks, optionally filtered by project and status.
func (s *TaskService) List(ctx context.Context, opts *TaskListOptions) (tasks []Task, err error) {
	start := time.Now()
	defer func() { s.c.obs.observe("task.list", start, err) }()

	path := "/api/tasks"
	if opts != nil {
		q := url.Values{}
		if opts.ProjectID != 0 {
			q.Set("project_id", strconv.FormatInt(opts.ProjectID, 10))
		}
		if opts.Status != "" {
			q.Set("status", string(opts.Status))
		}
		if len(q) > 0 {
			path += "?" + q.Encode()
		}
	}

	var resp taskList
	if err = s.c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// UpdateStatus moves a task to a new workflow state.
func (s *TaskService) UpdateStatus(
	ctx context.Context, id int64, status TaskStatus,
) (t Task, err error) {
	start := time.Now()
	defer func() { s.c.obs.observe("task.update_status", start, err) }()

	err = s.c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/tasks/%d", id),
		taskStatusRequest{Status: status}, &t)
	return t, err
}

// Delete removes a task.
func (s *TaskService) Delete(ctx context.Context, id int64) (err error) {
	start := time.Now()
	defer func() { s.c.obs.observe("task.delete", start, err) }()

	return s.c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/tasks/%d", id), nil, nil)
}

package archon

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func writeTestJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

// --- SearchService ---

func TestSearchService_Documents(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/search/documents" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}

		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req["query"] != "connection pooling" {
			t.Errorf("query = %v", req["query"])
		}
		if req["match_count"] != float64(3) {
			t.Errorf("match_count = %v", req["match_count"])
		}
		filter, _ := req["filter"].(map[string]any)
		if filter["language"] != "go" {
			t.Errorf("filter = %v", req["filter"])
		}

		writeTestJSON(t, w, http.StatusOK, searchResponse{
			Results: []SearchHit{
				{ID: "doc-1", Score: 0.92, Payload: map[string]any{"url": "https://example.com"}},
				{ID: "doc-2", Score: 0.87},
			},
			Count: 2,
		})
	}))

	hits, err := c.Search().Documents(context.Background(), "connection pooling", &SearchOptions{
		MatchCount: 3,
		Filter:     map[string]string{"language": "go"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("hits = %d, want 2", len(hits))
	}
	if hits[0].ID != "doc-1" || hits[1].ID != "doc-2" {
		t.Errorf("hit order = [%s %s]", hits[0].ID, hits[1].ID)
	}
	if hits[0].Payload["url"] != "https://example.com" {
		t.Errorf("payload = %v", hits[0].Payload)
	}
}

func TestSearchService_CodeExamples(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/search/code-examples" {
			t.Errorf("path = %s", r.URL.Path)
		}
		writeTestJSON(t, w, http.StatusOK, searchResponse{Results: []SearchHit{{ID: "ex-1"}}, Count: 1})
	}))

	hits, err := c.Search().CodeExamples(context.Background(), "pgx pool", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != "ex-1" {
		t.Errorf("hits = %+v", hits)
	}
}

func TestSearchService_NilOptionsOmitFields(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if _, ok := req["match_count"]; ok {
			t.Error("match_count sent for nil options, server default lost")
		}
		if _, ok := req["filter"]; ok {
			t.Error("filter sent for nil options")
		}
		writeTestJSON(t, w, http.StatusOK, searchResponse{Results: []SearchHit{}})
	}))

	if _, err := c.Search().Documents(context.Background(), "anything", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSearchService_ValidationError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeTestJSON(t, w, http.StatusBadRequest, map[string]string{
			"code": "validation_failed", "message": "Query is required",
		})
	}))

	_, err := c.Search().Documents(context.Background(), "", nil)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput match", err)
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %T, want *APIError", err)
	}
	if apiErr.Code != "validation_failed" || apiErr.Message != "Query is required" {
		t.Errorf("apiErr = %+v", apiErr)
	}
}

func TestSearchService_EmbeddingProviderDown(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeTestJSON(t, w, http.StatusBadGateway, map[string]string{
			"code": "embedding_provider_error", "message": "embedding provider error",
		})
	}))

	_, err := c.Search().Documents(context.Background(), "pooling", nil)
	if !errors.Is(err, ErrEmbeddingProviderError) {
		t.Fatalf("err = %v, want ErrEmbeddingProviderError match", err)
	}
}

// --- ProjectService ---

func TestProjectService_Create(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/projects" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		var req projectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		writeTestJSON(t, w, http.StatusCreated, Project{ID: 1, Title: req.Title, GitHubRepo: req.GitHubRepo})
	}))

	p, err := c.Projects().Create(context.Background(), "Knowledge Base", "github.com/example/kb")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID != 1 || p.Title != "Knowledge Base" {
		t.Errorf("project = %+v", p)
	}
}

func TestProjectService_Get_NotFound(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeTestJSON(t, w, http.StatusNotFound, map[string]string{
			"code": "not_found", "message": "project not found",
		})
	}))

	_, err := c.Projects().Get(context.Background(), 42)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound match", err)
	}
}

func TestProjectService_List(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/projects" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		writeTestJSON(t, w, http.StatusOK, projectList{
			Items: []Project{{ID: 2, Title: "newer"}, {ID: 1, Title: "older"}},
			Count: 2,
		})
	}))

	projects, err := c.Projects().List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(projects) != 2 || projects[0].ID != 2 {
		t.Errorf("projects = %+v", projects)
	}
}

func TestProjectService_Update(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/api/projects/7" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		writeTestJSON(t, w, http.StatusOK, Project{ID: 7, Title: "Renamed"})
	}))

	p, err := c.Projects().Update(context.Background(), 7, "Renamed", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Title != "Renamed" {
		t.Errorf("project = %+v", p)
	}
}

func TestProjectService_Delete(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/api/projects/7" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	if err := c.Projects().Delete(context.Background(), 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// --- TaskService ---

func TestTaskService_Create(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/tasks" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		var req TaskCreate
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.ProjectID != 7 {
			t.Errorf("project_id = %d", req.ProjectID)
		}
		writeTestJSON(t, w, http.StatusCreated, Task{
			ID: 3, ProjectID: req.ProjectID, Title: req.Title,
			Status: StatusTodo, Assignee: "User",
		})
	}))

	task, err := c.Tasks().Create(context.Background(), TaskCreate{
		ProjectID: 7,
		Title:     "Crawl the docs site",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.ID != 3 || task.Status != StatusTodo {
		t.Errorf("task = %+v", task)
	}
}

func TestTaskService_List_Filters(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("project_id") != "7" {
			t.Errorf("project_id = %q", q.Get("project_id"))
		}
		if q.Get("status") != "doing" {
			t.Errorf("status = %q", q.Get("status"))
		}
		writeTestJSON(t, w, http.StatusOK, taskList{
			Items: []Task{{ID: 3, ProjectID: 7, Status: StatusDoing}},
			Count: 1,
		})
	}))

	tasks, err := c.Tasks().List(context.Background(), &TaskListOptions{
		ProjectID: 7,
		Status:    StatusDoing,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != 3 {
		t.Errorf("tasks = %+v", tasks)
	}
}

func TestTaskService_List_NoFilters(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RawQuery != "" {
			t.Errorf("query = %q, want empty", r.URL.RawQuery)
		}
		writeTestJSON(t, w, http.StatusOK, taskList{Items: []Task{}})
	}))

	if _, err := c.Tasks().List(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTaskService_UpdateStatus(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/api/tasks/3" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		var req taskStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Status != StatusDone {
			t.Errorf("status = %q", req.Status)
		}
		writeTestJSON(t, w, http.StatusOK, Task{ID: 3, Status: StatusDone})
	}))

	task, err := c.Tasks().UpdateStatus(context.Background(), 3, StatusDone)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.Status != StatusDone {
		t.Errorf("task = %+v", task)
	}
}

func TestTaskService_Delete_RateLimited(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeTestJSON(t, w, http.StatusTooManyRequests, map[string]string{
			"code": "rate_limited", "message": "rate limited",
		})
	}))

	err := c.Tasks().Delete(context.Background(), 3)
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited match", err)
	}
}

// --- Health ---

func TestClient_Health(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/healthz" {
			t.Errorf("path = %s", r.URL.Path)
		}
		writeTestJSON(t, w, http.StatusOK, HealthStatus{
			Status: "ok",
			Checks: map[string]string{"vector_store": "ok", "database": "ok"},
		})
	}))

	h, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Status != "ok" || h.Checks["vector_store"] != "ok" {
		t.Errorf("health = %+v", h)
	}
}

func TestClient_Health_Unavailable(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeTestJSON(t, w, http.StatusServiceUnavailable, HealthStatus{
			Status: "error",
			Checks: map[string]string{"vector_store": "error"},
		})
	}))

	h, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("503 must still decode the report, got error: %v", err)
	}
	if h.Status != "error" {
		t.Errorf("status = %q", h.Status)
	}
}

func TestClient_EmptyErrorBody(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := c.Projects().Get(context.Background(), 1)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %T, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d", apiErr.StatusCode)
	}
	if apiErr.Message == "" {
		t.Error("expected a fallback message for an empty body")
	}
}

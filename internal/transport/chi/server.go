// Package chi serves the HTTP API: retrieval search, project and task
// CRUD, health and metrics.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/archon-hq/archon/internal/domain"
	"github.com/archon-hq/archon/internal/domain/search/filter"
	"github.com/archon-hq/archon/internal/domain/search/result"
	"github.com/archon-hq/archon/internal/logger"
	healthuc "github.com/archon-hq/archon/internal/usecase/health"
	projectuc "github.com/archon-hq/archon/internal/usecase/project"
	"github.com/archon-hq/archon/internal/usecase/rag"
	taskuc "github.com/archon-hq/archon/internal/usecase/task"
)

// errorCode is the machine-readable error class in error responses.
type errorCode string

const (
	codeBadRequest     errorCode = "bad_request"
	codeValidation     errorCode = "validation_failed"
	codeNotFound       errorCode = "not_found"
	codeRateLimited    errorCode = "rate_limited"
	codeEmbeddingError errorCode = "embedding_provider_error"
	codeInternal       errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server routes HTTP requests to the use case services.
type Server struct {
	search        *rag.Service
	projects      *projectuc.Service
	tasks         *taskuc.Service
	health        *healthuc.Service
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *rag.Service,
	projects *projectuc.Service,
	tasks *taskuc.Service,
	health *healthuc.Service,
) *Server {
	s := &Server{
		search:   search,
		projects: projects,
		tasks:    tasks,
		health:   health,
	}
	s.errorHandlers = []errorHandler{
		invalidStatusHandler,
		sentinelHandler(domain.ErrInvalidStatus, http.StatusBadRequest, codeValidation),
		sentinelHandler(domain.ErrInvalidTitle, http.StatusBadRequest, codeValidation),
		sentinelHandler(domain.ErrInvalidMatchCount, http.StatusBadRequest, codeValidation),
		sentinelHandler(domain.ErrUnsupportedFilter, http.StatusBadRequest, codeValidation),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, codeRateLimited),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeEmbeddingError),
	}
	return s
}

// Routes builds the chi router for the API surface.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Route("/search", func(r chi.Router) {
			r.Post("/documents", s.searchDocuments)
			r.Post("/code-examples", s.searchCodeExamples)
		})
		r.Route("/projects", func(r chi.Router) {
			r.Post("/", s.createProject)
			r.Get("/", s.listProjects)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.getProject)
				r.Put("/", s.updateProject)
				r.Delete("/", s.deleteProject)
			})
		})
		r.Route("/tasks", func(r chi.Router) {
			r.Post("/", s.createTask)
			r.Get("/", s.listTasks)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.getTask)
				r.Patch("/", s.updateTaskStatus)
				r.Delete("/", s.deleteTask)
			})
		})
	})

	r.Get("/healthz", s.healthCheck)
	r.Get("/metrics", s.metrics)

	return r
}

type searchRequest struct {
	Query      string            `json:"query"`
	MatchCount int               `json:"match_count"`
	Filter     map[string]string `json:"filter"`
}

type searchResultItem struct {
	ID      string         `json:"id"`
	Score   float64        `json:"score"`
	Payload map[string]any `json:"payload,omitempty"`
}

type searchResponse struct {
	Results []searchResultItem `json:"results"`
	Count   int                `json:"count"`
}

type searchFunc func(ctx context.Context, query string, matchCount int, f filter.Filter) ([]result.Hit, error)

// searchDocuments handles POST /api/search/documents.
func (s *Server) searchDocuments(w http.ResponseWriter, r *http.Request) {
	s.handleSearch(w, r, s.search.SearchDocuments)
}

// searchCodeExamples handles POST /api/search/code-examples.
func (s *Server) searchCodeExamples(w http.ResponseWriter, r *http.Request) {
	s.handleSearch(w, r, s.search.SearchCodeExamples)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request, search searchFunc) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, codeValidation, "Query is required")
		return
	}

	f, err := filter.FromMap(req.Filter)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, err.Error())
		return
	}

	hits, err := search(r.Context(), req.Query, req.MatchCount, f)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]searchResultItem, len(hits))
	for i := range hits {
		items[i] = searchResultItem{
			ID:      hits[i].ID(),
			Score:   hits[i].Score(),
			Payload: hits[i].Payload(),
		}
	}

	writeJSON(w, http.StatusOK, searchResponse{Results: items, Count: len(items)})
}

type projectRequest struct {
	Title      string `json:"title"`
	GitHubRepo string `json:"github_repo"`
}

type projectListResponse struct {
	Items []*domain.Project `json:"items"`
	Count int               `json:"count"`
}

// createProject handles POST /api/projects.
func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	p, err := s.projects.Create(r.Context(), req.Title, req.GitHubRepo)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/projects/%d", p.ID))
	writeJSON(w, http.StatusCreated, p)
}

// listProjects handles GET /api/projects.
func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	list, err := s.projects.List(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, projectListResponse{Items: list, Count: len(list)})
}

// getProject handles GET /api/projects/{id}.
func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	p, err := s.projects.Get(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// updateProject handles PUT /api/projects/{id}.
func (s *Server) updateProject(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	p, err := s.projects.Update(r.Context(), id, req.Title, req.GitHubRepo)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// deleteProject handles DELETE /api/projects/{id}.
func (s *Server) deleteProject(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	if err := s.projects.Delete(r.Context(), id); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type taskCreateRequest struct {
	ProjectID   int64  `json:"project_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Assignee    string `json:"assignee"`
}

type taskStatusRequest struct {
	Status string `json:"status"`
}

type taskListResponse struct {
	Items []*domain.Task `json:"items"`
	Count int            `json:"count"`
}

// createTask handles POST /api/tasks.
func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var req taskCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	t, err := s.tasks.Create(
		r.Context(), req.ProjectID, req.Title, req.Description,
		domain.Status(req.Status), req.Assignee,
	)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/tasks/%d", t.ID))
	writeJSON(w, http.StatusCreated, t)
}

// listTasks handles GET /api/tasks with optional project_id and status filters.
func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	var f domain.TaskFilter

	if v := r.URL.Query().Get("project_id"); v != "" {
		pid, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid project_id: "+v)
			return
		}
		f.ProjectID = &pid
	}
	if v := r.URL.Query().Get("status"); v != "" {
		st := domain.Status(v)
		if !st.IsValid() {
			s.handleDomainError(w, r, domain.NewInvalidStatus(v))
			return
		}
		f.Status = &st
	}

	list, err := s.tasks.List(r.Context(), f)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, taskListResponse{Items: list, Count: len(list)})
}

// getTask handles GET /api/tasks/{id}.
func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	t, err := s.tasks.Get(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, t)
}

// updateTaskStatus handles PATCH /api/tasks/{id}.
func (s *Server) updateTaskStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req taskStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := s.tasks.UpdateStatus(r.Context(), id, domain.Status(req.Status)); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	t, err := s.tasks.Get(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, t)
}

// deleteTask handles DELETE /api/tasks/{id}.
func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	if err := s.tasks.Delete(r.Context(), id); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type healthResponse struct {
	Status string                          `json:"status"`
	Checks map[string]healthuc.CheckResult `json:"checks"`
}

// healthCheck handles GET /healthz. Degraded still answers 200; only a
// down vector store makes the service unavailable.
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: report.Checks,
	})
}

// metrics handles GET /metrics.
func (s *Server) metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// idParam parses the {id} route parameter, answering 400 itself on garbage.
func idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid id: "+raw)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrProjectNotFound,
		domain.ErrTaskNotFound,
		domain.ErrNotFound,
		domain.ErrInvalidTitle,
		domain.ErrInvalidMatchCount,
		domain.ErrUnsupportedFilter,
		domain.ErrInvalidStatus,
		domain.ErrRateLimited,
		domain.ErrEmbeddingProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// invalidStatusHandler surfaces the allowed status set from InvalidStatusError.
func invalidStatusHandler(w http.ResponseWriter, err error, _ string) bool {
	var ise *domain.InvalidStatusError
	if !errors.As(err, &ise) {
		return false
	}
	writeError(w, http.StatusBadRequest, codeValidation, ise.Error())
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			log.Warn("Request failed", zap.Error(err))
			return
		}
	}
	log.Error("Unhandled error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
}

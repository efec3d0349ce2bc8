package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/archon-hq/archon/internal/domain"
	"github.com/archon-hq/archon/internal/domain/search/filter"
	"github.com/archon-hq/archon/internal/domain/search/result"
	healthuc "github.com/archon-hq/archon/internal/usecase/health"
	projectuc "github.com/archon-hq/archon/internal/usecase/project"
	"github.com/archon-hq/archon/internal/usecase/rag"
	taskuc "github.com/archon-hq/archon/internal/usecase/task"
)

type mockSearcher struct {
	hits []result.Hit
	err  error

	calls      int
	lastAlias  string
	lastCount  int
	lastVec    []float32
	lastFilter filter.Filter
}

func (m *mockSearcher) VectorSearch(
	_ context.Context, vec []float32, matchCount int, f filter.Filter, alias string,
) ([]result.Hit, error) {
	m.calls++
	m.lastVec = vec
	m.lastCount = matchCount
	m.lastFilter = f
	m.lastAlias = alias
	if m.err != nil {
		return nil, m.err
	}
	return m.hits, nil
}

type mockEmbedder struct {
	vec   []float32
	err   error
	calls int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec, TotalTokens: 7}, nil
}

type mockProjectRepo struct {
	created   *domain.Project
	createErr error
	got       *domain.Project
	getErr    error
	list      []*domain.Project
	listErr   error
	updated   *domain.Project
	updateErr error
	deleteErr error
}

func (m *mockProjectRepo) Create(_ context.Context, p *domain.Project) (*domain.Project, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	if m.created != nil {
		return m.created, nil
	}
	p.ID = 1
	return p, nil
}

func (m *mockProjectRepo) Get(_ context.Context, _ int64) (*domain.Project, error) {
	return m.got, m.getErr
}

func (m *mockProjectRepo) List(_ context.Context) ([]*domain.Project, error) {
	return m.list, m.listErr
}

func (m *mockProjectRepo) Update(_ context.Context, id int64, title, githubRepo string) (*domain.Project, error) {
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	if m.updated != nil {
		return m.updated, nil
	}
	return &domain.Project{ID: id, Title: title, GitHubRepo: githubRepo}, nil
}

func (m *mockProjectRepo) Delete(_ context.Context, _ int64) error {
	return m.deleteErr
}

type mockTaskRepo struct {
	created   *domain.Task
	createErr error
	got       *domain.Task
	getErr    error
	list      []*domain.Task
	listErr   error
	statusErr error
	deleteErr error

	statusCalls int
	lastStatus  domain.Status
	lastFilter  domain.TaskFilter
}

func (m *mockTaskRepo) Create(_ context.Context, t *domain.Task) (*domain.Task, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	if m.created != nil {
		return m.created, nil
	}
	t.ID = 1
	return t, nil
}

func (m *mockTaskRepo) Get(_ context.Context, _ int64) (*domain.Task, error) {
	return m.got, m.getErr
}

func (m *mockTaskRepo) List(_ context.Context, f domain.TaskFilter) ([]*domain.Task, error) {
	m.lastFilter = f
	return m.list, m.listErr
}

func (m *mockTaskRepo) UpdateStatus(_ context.Context, _ int64, status domain.Status) error {
	m.statusCalls++
	m.lastStatus = status
	return m.statusErr
}

func (m *mockTaskRepo) Delete(_ context.Context, _ int64) error {
	return m.deleteErr
}

type mockStorePinger struct {
	err error
}

func (m *mockStorePinger) Ping(_ context.Context) error { return m.err }

type mockDBPinger struct {
	err error
}

func (m *mockDBPinger) PingContext(_ context.Context) error { return m.err }

// deps bundles the mocked layers under the real use case services.
// Nil fields get working defaults.
type deps struct {
	searcher *mockSearcher
	embedder *mockEmbedder
	projects *mockProjectRepo
	tasks    *mockTaskRepo
	store    *mockStorePinger
	db       *mockDBPinger
}

func newTestServer(d *deps) http.Handler {
	if d.searcher == nil {
		d.searcher = &mockSearcher{}
	}
	if d.embedder == nil {
		d.embedder = &mockEmbedder{vec: []float32{0.1, 0.2, 0.3}}
	}
	if d.projects == nil {
		d.projects = &mockProjectRepo{}
	}
	if d.tasks == nil {
		d.tasks = &mockTaskRepo{}
	}
	if d.store == nil {
		d.store = &mockStorePinger{}
	}

	// A typed nil pointer wrapped in an interface is not nil; only hand
	// the pinger over when the test configured one.
	var dbPinger healthuc.DBPinger
	if d.db != nil {
		dbPinger = d.db
	}

	logg := zap.NewNop()
	srv := NewServer(
		rag.New(d.searcher, d.embedder, logg),
		projectuc.New(d.projects, logg),
		taskuc.New(d.tasks, logg),
		healthuc.New(d.store, dbPinger, nil),
	)
	return srv.Routes()
}

func doRequest(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		rd = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, rd)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var e errorResponse
	decodeJSON(t, rec, &e)
	return e
}

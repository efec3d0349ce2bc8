package search

import (
	"context"
	"testing"

	"github.com/archon-hq/archon/internal/domain/search/filter"
	"github.com/archon-hq/archon/internal/vecstore"
)

// mockStore implements the consumer interface for tests. searchCalls counts
// store round trips so tests can assert input validation short-circuits.
type mockStore struct {
	searchFn    func(ctx context.Context, q *vecstore.SearchQuery) (*vecstore.SearchResult, error)
	searchCalls int
}

func (m *mockStore) Search(ctx context.Context, q *vecstore.SearchQuery) (*vecstore.SearchResult, error) {
	m.searchCalls++
	if m.searchFn != nil {
		return m.searchFn(ctx, q)
	}
	return &vecstore.SearchResult{}, nil
}

func newTestStrategy(t *testing.T, opts ...Option) (*Strategy, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, opts...), ms
}

func testVector() []float32 {
	vec := make([]float32, 4)
	for i := range vec {
		vec[i] = 0.1
	}
	return vec
}

func mustFilter(t *testing.T, m map[string]string) filter.Filter {
	t.Helper()
	f, err := filter.FromMap(m)
	if err != nil {
		t.Fatalf("FromMap: %v", err)
	}
	return f
}

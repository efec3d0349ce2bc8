package archon

import (
	"context"
	"errors"
	"testing"

	"github.com/archon-hq/archon/internal/domain"
	"github.com/archon-hq/archon/internal/domain/search/filter"
	"github.com/archon-hq/archon/internal/domain/search/result"
)

type mockRetrievalUC struct {
	documentsFn func(ctx context.Context, query string, matchCount int, f filter.Filter) ([]result.Hit, error)
	codeFn      func(ctx context.Context, query string, matchCount int, f filter.Filter) ([]result.Hit, error)
}

func (m *mockRetrievalUC) SearchDocuments(
	ctx context.Context, query string, matchCount int, f filter.Filter,
) ([]result.Hit, error) {
	return m.documentsFn(ctx, query, matchCount, f)
}

func (m *mockRetrievalUC) SearchCodeExamples(
	ctx context.Context, query string, matchCount int, f filter.Filter,
) ([]result.Hit, error) {
	return m.codeFn(ctx, query, matchCount, f)
}

func TestSearchDocuments(t *testing.T) {
	mock := &mockRetrievalUC{
		documentsFn: func(_ context.Context, query string, matchCount int, f filter.Filter) ([]result.Hit, error) {
			if query != "connection pooling" {
				t.Errorf("query = %q", query)
			}
			if matchCount != 3 {
				t.Errorf("match count = %d", matchCount)
			}
			conds := f.Conditions()
			if len(conds) != 1 || conds[0].Key() != "language" || conds[0].Value() != "go" {
				t.Errorf("filter = %+v", conds)
			}
			return []result.Hit{
				result.New("doc-1", 0.92, map[string]any{"url": "https://example.com"}),
				result.New("doc-2", 0.87, nil),
			}, nil
		},
	}

	c := &Client{svc: mock}
	hits, err := c.SearchDocuments(context.Background(), "connection pooling", &SearchOptions{
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
	if hits[0].Score != 0.92 {
		t.Errorf("score = %v", hits[0].Score)
	}
	if hits[0].Payload["url"] != "https://example.com" {
		t.Errorf("payload = %v", hits[0].Payload)
	}
}

func TestSearchCodeExamples(t *testing.T) {
	mock := &mockRetrievalUC{
		codeFn: func(_ context.Context, _ string, matchCount int, _ filter.Filter) ([]result.Hit, error) {
			// Unset match count passes through as zero, the service applies
			// its default.
			if matchCount != 0 {
				t.Errorf("match count = %d, want 0", matchCount)
			}
			return []result.Hit{result.New("ex-1", 0.5, nil)}, nil
		},
	}

	c := &Client{svc: mock}
	hits, err := c.SearchCodeExamples(context.Background(), "pgx pool", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != "ex-1" {
		t.Errorf("hits = %+v", hits)
	}
}

func TestSearchDocuments_ServiceError(t *testing.T) {
	mock := &mockRetrievalUC{
		documentsFn: func(_ context.Context, _ string, _ int, _ filter.Filter) ([]result.Hit, error) {
			return nil, domain.ErrInvalidMatchCount
		},
	}

	c := &Client{svc: mock}
	_, err := c.SearchDocuments(context.Background(), "q", &SearchOptions{MatchCount: -1})
	if !errors.Is(err, ErrInvalidMatchCount) {
		t.Fatalf("err = %v, want ErrInvalidMatchCount match", err)
	}
}

func TestSearchDocuments_InvalidFilterKey(t *testing.T) {
	called := false
	mock := &mockRetrievalUC{
		documentsFn: func(_ context.Context, _ string, _ int, _ filter.Filter) ([]result.Hit, error) {
			called = true
			return nil, nil
		},
	}

	c := &Client{svc: mock}
	_, err := c.SearchDocuments(context.Background(), "q", &SearchOptions{
		Filter: map[string]string{"": "value"},
	})
	if err == nil {
		t.Fatal("expected error for empty filter key")
	}
	if called {
		t.Error("service called despite invalid filter")
	}
}

func TestSearchDocuments_EmptyResult(t *testing.T) {
	mock := &mockRetrievalUC{
		documentsFn: func(_ context.Context, _ string, _ int, _ filter.Filter) ([]result.Hit, error) {
			return nil, nil
		},
	}

	c := &Client{svc: mock}
	hits, err := c.SearchDocuments(context.Background(), "nothing matches", nil)
	if err != nil {
		t.Fatalf("zero hits must not be an error: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("hits = %d, want 0", len(hits))
	}
}

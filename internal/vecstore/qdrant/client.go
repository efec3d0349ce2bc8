// Package qdrant implements vecstore.Store over the Qdrant HTTP API.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/archon-hq/archon/internal/domain/search/filter"
	"github.com/archon-hq/archon/internal/vecstore"
)

// Compile-time check: Store implements vecstore.Store. Qdrant has no KV
// namespace, so the KVStore extension is deliberately absent.
var _ vecstore.Store = (*Store)(nil)

const defaultTimeout = 30 * time.Second

// Config holds connection parameters for a Qdrant store.
type Config struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

// Store talks to Qdrant over HTTP. Collections are addressed by name, no
// renaming layer in between.
type Store struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewStore creates a Qdrant store.
func NewStore(cfg Config) (*Store, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("url is required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &Store{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// searchRequest is the JSON body for POST /collections/{name}/points/search.
type searchRequest struct {
	Vector      []float32     `json:"vector"`
	Limit       int           `json:"limit"`
	WithPayload bool          `json:"with_payload"`
	Filter      *searchFilter `json:"filter,omitempty"`
}

type searchFilter struct {
	Must []fieldCondition `json:"must"`
}

type fieldCondition struct {
	Key   string     `json:"key"`
	Match matchValue `json:"match"`
}

type matchValue struct {
	Value string `json:"value"`
}

type searchResponse struct {
	Result []searchPoint `json:"result"`
}

type searchPoint struct {
	ID      any            `json:"id"`
	Score   float64        `json:"score"`
	Payload map[string]any `json:"payload"`
}

// Search performs a nearest-neighbor search in the named collection.
func (s *Store) Search(ctx context.Context, q *vecstore.SearchQuery) (*vecstore.SearchResult, error) {
	if q.Collection == "" {
		return nil, fmt.Errorf("collection is required")
	}
	if len(q.Vector) == 0 {
		return nil, fmt.Errorf("vector is required")
	}
	if q.Limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}

	body := searchRequest{
		Vector:      q.Vector,
		Limit:       q.Limit,
		WithPayload: true,
		Filter:      buildFilter(q.Filter),
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	url := fmt.Sprintf("%s/collections/%s/points/search", s.baseURL, q.Collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}
	s.setHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &vecstore.Error{Op: vecstore.OpQdrantSearch, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &vecstore.Error{Op: vecstore.OpQdrantSearch, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, &vecstore.Error{Op: vecstore.OpQdrantSearch, Err: vecstore.ErrCollectionNotFound}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &vecstore.Error{
			Op:  vecstore.OpQdrantSearch,
			Err: fmt.Errorf("status %d: %s", resp.StatusCode, respBody),
		}
	}

	var parsed searchResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("parse search response: %w", err)
	}

	entries := make([]vecstore.SearchEntry, 0, len(parsed.Result))
	for _, p := range parsed.Result {
		entries = append(entries, vecstore.SearchEntry{
			ID:      pointID(p.ID),
			Score:   p.Score,
			Payload: p.Payload,
		})
	}

	return &vecstore.SearchResult{Total: len(entries), Entries: entries}, nil
}

// Ping checks connectivity via the readiness endpoint.
func (s *Store) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/readyz", nil)
	if err != nil {
		return fmt.Errorf("create readiness request: %w", err)
	}
	s.setHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return &vecstore.Error{Op: vecstore.OpQdrantReady, Err: err}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &vecstore.Error{
			Op:  vecstore.OpQdrantReady,
			Err: fmt.Errorf("status %d", resp.StatusCode),
		}
	}
	return nil
}

// Close releases idle connections.
func (s *Store) Close() {
	s.client.CloseIdleConnections()
}

// WaitForReady polls Ping until the store responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for vector store: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

func (s *Store) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
}

// buildFilter translates the conjunction into a Qdrant must-filter.
func buildFilter(f filter.Filter) *searchFilter {
	if f.IsEmpty() {
		return nil
	}

	must := make([]fieldCondition, 0, len(f.Conditions()))
	for _, cond := range f.Conditions() {
		must = append(must, fieldCondition{
			Key:   cond.Key(),
			Match: matchValue{Value: cond.Value()},
		})
	}
	return &searchFilter{Must: must}
}

// pointID renders a Qdrant point id (unsigned integer or UUID) as a string.
func pointID(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", id)
	}
}

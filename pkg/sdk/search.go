package archon

import (
	"context"
	"net/http"
	"time"
)

// SearchService executes semantic retrieval queries.
type SearchService struct {
	c *Client
}

// SearchOptions configures a retrieval query.
type SearchOptions struct {
	// MatchCount caps the number of hits. Zero asks for the server default.
	MatchCount int
	// Filter keeps only hits whose attributes equal every entry.
	Filter map[string]string
}

type searchRequest struct {
	Query      string            `json:"query"`
	MatchCount int               `json:"match_count,omitempty"`
	Filter     map[string]string `json:"filter,omitempty"`
}

type searchResponse struct {
	Results []SearchHit `json:"results"`
	Count   int         `json:"count"`
}

// Documents searches the crawled documentation collection.
func (s *SearchService) Documents(
	ctx context.Context, query string, opts *SearchOptions,
) (hits []SearchHit, err error) {
	start := time.Now()
	defer func() { s.c.obs.observe("search.documents", start, err) }()

	return s.search(ctx, "/api/search/documents", query, opts)
}

// CodeExamples searches the extracted code example collection.
func (s *SearchService) CodeExamples(
	ctx context.Context, query string, opts *SearchOptions,
) (hits []SearchHit, err error) {
	start := time.Now()
	defer func() { s.c.obs.observe("search.code_examples", start, err) }()

	return s.search(ctx, "/api/search/code-examples", query, opts)
}

func (s *SearchService) search(
	ctx context.Context, path, query string, opts *SearchOptions,
) ([]SearchHit, error) {
	if opts == nil {
		opts = &SearchOptions{}
	}
	req := searchRequest{
		Query:      query,
		MatchCount: opts.MatchCount,
		Filter:     opts.Filter,
	}

	var resp searchResponse
	if err := s.c.do(ctx, http.MethodPost, path, req, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

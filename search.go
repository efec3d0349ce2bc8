package archon

import (
	"context"
	"fmt"

	"github.com/archon-hq/archon/internal/domain/search/filter"
	"github.com/archon-hq/archon/internal/domain/search/result"
)

// SearchOptions configures a retrieval query.
type SearchOptions struct {
	// MatchCount caps the number of hits. Zero applies the default of 5.
	MatchCount int
	// Filter keeps only hits whose attributes equal every entry.
	Filter map[string]string
}

// Hit is a single retrieval result in store rank order.
type Hit struct {
	ID      string
	Score   float64
	Payload map[string]any
}

// SearchDocuments runs a semantic query over the crawled documentation
// collection.
func (c *Client) SearchDocuments(
	ctx context.Context, query string, opts *SearchOptions,
) ([]Hit, error) {
	return c.search(ctx, query, opts, c.svc.SearchDocuments)
}

// SearchCodeExamples runs a semantic query over the extracted code example
// collection.
func (c *Client) SearchCodeExamples(
	ctx context.Context, query string, opts *SearchOptions,
) ([]Hit, error) {
	return c.search(ctx, query, opts, c.svc.SearchCodeExamples)
}

type searchFunc func(ctx context.Context, query string, matchCount int, f filter.Filter) ([]result.Hit, error)

func (c *Client) search(
	ctx context.Context, query string, opts *SearchOptions, fn searchFunc,
) ([]Hit, error) {
	if opts == nil {
		opts = &SearchOptions{}
	}

	f, err := filter.FromMap(opts.Filter)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	hits, err := fn(ctx, query, opts.MatchCount, f)
	if err != nil {
		return nil, err
	}

	out := make([]Hit, len(hits))
	for i := range hits {
		out[i] = Hit{
			ID:      hits[i].ID(),
			Score:   hits[i].Score(),
			Payload: hits[i].Payload(),
		}
	}
	return out, nil
}

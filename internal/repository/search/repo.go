package search

import (
	"context"
	"fmt"

	"github.com/archon-hq/archon/internal/domain"
	"github.com/archon-hq/archon/internal/domain/search/filter"
	"github.com/archon-hq/archon/internal/domain/search/result"
	"github.com/archon-hq/archon/internal/vecstore"
)

// store is the consumer interface for vector search (ISP).
type store interface {
	Search(ctx context.Context, q *vecstore.SearchQuery) (*vecstore.SearchResult, error)
}

// Strategy implements usecase/rag.VectorSearcher.
//
// Callers address collections through aliases. The alias table maps the
// public alias names onto physical collection names; an alias without an
// entry passes through as a literal collection name, so ad-hoc collections
// stay reachable without configuration.
type Strategy struct {
	store   store
	aliases map[string]string
}

// Option configures a Strategy.
type Option func(*Strategy)

// WithAliases extends the default alias table. Entries override defaults on
// key collision.
func WithAliases(aliases map[string]string) Option {
	return func(s *Strategy) {
		for alias, collection := range aliases {
			s.aliases[alias] = collection
		}
	}
}

// New creates a search strategy over the given store.
func New(s store, opts ...Option) *Strategy {
	st := &Strategy{
		store: s,
		aliases: map[string]string{
			"match_archon_crawled_pages": "docs",
			"match_archon_code_examples": "code",
		},
	}
	for _, opt := range opts {
		opt(st)
	}
	return st
}

// VectorSearch performs a nearest-neighbor search against the collection the
// alias resolves to.
//
// Hits come back in store rank order. matchCount must be positive and every
// filter condition must be an equality predicate; both are rejected before
// any store round trip. Store failures propagate with the collection name
// attached and the cause unchanged.
func (s *Strategy) VectorSearch(
	ctx context.Context, queryVector []float32, matchCount int,
	f filter.Filter, collectionAlias string,
) ([]result.Hit, error) {
	if matchCount <= 0 {
		return nil, fmt.Errorf("match count %d: %w", matchCount, domain.ErrInvalidMatchCount)
	}
	for _, cond := range f.Conditions() {
		if cond.Kind() != filter.KindEquals {
			return nil, fmt.Errorf("%w: kind %q", domain.ErrUnsupportedFilter, string(cond.Kind()))
		}
	}

	collection := s.resolve(collectionAlias)

	sr, err := s.store.Search(ctx, &vecstore.SearchQuery{
		Collection: collection,
		Vector:     queryVector,
		Limit:      matchCount,
		Filter:     f,
	})
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", collection, err)
	}

	return parseEntries(sr), nil
}

// resolve maps an alias to its collection, falling back to the alias itself.
func (s *Strategy) resolve(alias string) string {
	if collection, ok := s.aliases[alias]; ok {
		return collection
	}
	return alias
}

// parseEntries converts store entries into hits, preserving rank order.
func parseEntries(sr *vecstore.SearchResult) []result.Hit {
	if sr == nil || sr.Total == 0 {
		return nil
	}

	hits := make([]result.Hit, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		hits = append(hits, result.New(entry.ID, entry.Score, entry.Payload))
	}
	return hits
}

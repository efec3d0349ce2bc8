// Package rag answers retrieval queries over crawled documentation and
// extracted code examples.
package rag

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/archon-hq/archon/internal/domain"
	"github.com/archon-hq/archon/internal/domain/search/filter"
	"github.com/archon-hq/archon/internal/domain/search/result"
	"github.com/archon-hq/archon/internal/metrics"
)

// Collection aliases served by the retrieval endpoints.
const (
	docsAlias = "match_archon_crawled_pages"
	codeAlias = "match_archon_code_examples"
)

// DefaultMatchCount applies when a request leaves the match count unset.
const DefaultMatchCount = 5

// Service runs the embed-then-search retrieval pipeline.
type Service struct {
	searcher VectorSearcher
	embed    Embedder
	logger   *zap.Logger
}

// New creates a retrieval service.
func New(searcher VectorSearcher, embed Embedder, logger *zap.Logger) *Service {
	return &Service{searcher: searcher, embed: embed, logger: logger}
}

// SearchDocuments retrieves crawled documentation pages relevant to the query.
func (s *Service) SearchDocuments(
	ctx context.Context, query string, matchCount int, f filter.Filter,
) ([]result.Hit, error) {
	return s.search(ctx, query, matchCount, f, docsAlias)
}

// SearchCodeExamples retrieves extracted code examples relevant to the query.
func (s *Service) SearchCodeExamples(
	ctx context.Context, query string, matchCount int, f filter.Filter,
) ([]result.Hit, error) {
	return s.search(ctx, query, matchCount, f, codeAlias)
}

// search embeds the query, then hands the vector to the searcher. The two
// steps are strictly sequential: an embedding failure aborts before any store
// round trip. Zero hits is a valid outcome, not an error.
func (s *Service) search(
	ctx context.Context, query string, matchCount int,
	f filter.Filter, alias string,
) ([]result.Hit, error) {
	// A zero match count means the caller left it unset; negatives are
	// rejected here so no embedding tokens get spent on a doomed request.
	if matchCount == 0 {
		matchCount = DefaultMatchCount
	}
	if matchCount < 0 {
		return nil, fmt.Errorf("match count %d: %w", matchCount, domain.ErrInvalidMatchCount)
	}

	start := time.Now()

	embResult, err := s.embed.Embed(ctx, query)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(alias, "error").Inc()
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	hits, err := s.searcher.VectorSearch(ctx, embResult.Embedding, matchCount, f, alias)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(alias, "error").Inc()
		return nil, fmt.Errorf("vector search: %w", err)
	}

	metrics.SearchRequestsTotal.WithLabelValues(alias, "ok").Inc()
	metrics.SearchDurationSeconds.WithLabelValues(alias).Observe(time.Since(start).Seconds())
	metrics.SearchResultsFound.WithLabelValues(alias).Observe(float64(len(hits)))

	s.logger.Debug("Retrieval query completed",
		zap.String("collection_alias", alias),
		zap.Int("query_length", len(query)),
		zap.Int("match_count", matchCount),
		zap.Int("results_found", len(hits)),
		zap.Duration("duration", time.Since(start)),
	)

	return hits, nil
}

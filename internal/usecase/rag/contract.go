package rag

import (
	"context"

	"github.com/archon-hq/archon/internal/domain"
	"github.com/archon-hq/archon/internal/domain/search/filter"
	"github.com/archon-hq/archon/internal/domain/search/result"
)

// VectorSearcher runs nearest-neighbor searches against aliased collections.
type VectorSearcher interface {
	VectorSearch(
		ctx context.Context, queryVector []float32, matchCount int,
		f filter.Filter, collectionAlias string,
	) ([]result.Hit, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

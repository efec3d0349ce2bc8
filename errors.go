package archon

import "github.com/archon-hq/archon/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidMatchCount      = domain.ErrInvalidMatchCount
	ErrUnsupportedFilter      = domain.ErrUnsupportedFilter
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrRateLimited            = domain.ErrRateLimited
	ErrNotFound               = domain.ErrNotFound
)

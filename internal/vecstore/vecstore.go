// Package vecstore defines the store-agnostic contract for the vector
// database holding the crawled knowledge base. Drivers live in subpackages;
// consumers depend on the narrow sub-interfaces.
package vecstore

import (
	"context"
	"time"
)

// Store is the vector database facade.
type Store interface {
	Pinger
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks store connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Searcher runs similarity queries against named collections.
type Searcher interface {
	Search(ctx context.Context, q *SearchQuery) (*SearchResult, error)
}

// KVStore provides simple key-value operations. Drivers that cannot serve it
// (qdrant) simply do not implement it; callers type-assert.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

package vecstore

import "github.com/archon-hq/archon/internal/domain/search/filter"

// SearchQuery is the input for vector similarity search against one collection.
type SearchQuery struct {
	Collection string
	Vector     []float32
	Limit      int
	Filter     filter.Filter
}

// SearchResult is the output of a search, entries in store rank order.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single point hit from a search. Payload carries the stored
// attributes; numeric values arrive as float64, everything else as string.
type SearchEntry struct {
	ID      string
	Score   float64
	Payload map[string]any
}

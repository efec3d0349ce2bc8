package vecstore

import "errors"

// Sentinel errors for store operations.
var (
	ErrKeyNotFound        = errors.New("vecstore: key not found")
	ErrCollectionNotFound = errors.New("vecstore: collection not found")
)

// Op constants name the failed store operation for error context. The redis
// driver uses command names, the qdrant driver API paths.
const (
	OpSearch = "FT.SEARCH"
	OpPing   = "PING"
	OpGet    = "GET"
	OpSet    = "SET"

	OpQdrantSearch = "points/search"
	OpQdrantReady  = "readyz"
)

// Error wraps an underlying error with the operation name for diagnostics.
// It carries no policy: callers propagate the cause unchanged.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrProjectNotFound signals a missing project. Matches ErrNotFound.
	ErrProjectNotFound = fmt.Errorf("project %w", ErrNotFound)
	// ErrTaskNotFound signals a missing task. Matches ErrNotFound.
	ErrTaskNotFound = fmt.Errorf("task %w", ErrNotFound)

	// ErrInvalidMatchCount signals a non-positive search result limit.
	ErrInvalidMatchCount = errors.New("match count must be positive")
	// ErrUnsupportedFilter signals a filter predicate the search layer cannot serve.
	ErrUnsupportedFilter = errors.New("unsupported filter predicate")
	// ErrInvalidTitle signals an empty or whitespace-only title.
	ErrInvalidTitle = errors.New("title must not be empty")

	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrRateLimited signals a rate limit hit at the embedding provider.
	ErrRateLimited = errors.New("rate limited")
)

// InvalidStatusError wraps an invalid task status with the allowed set.
type InvalidStatusError struct {
	Status string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid task status %q: must be one of %v", e.Status, TaskStatuses())
}

func (e *InvalidStatusError) Unwrap() error { return ErrInvalidStatus }

// ErrInvalidStatus signals a task status outside the allowed set.
var ErrInvalidStatus = errors.New("invalid task status")

// NewInvalidStatus creates an invalid status error naming the offending value.
func NewInvalidStatus(status string) error {
	return &InvalidStatusError{Status: status}
}

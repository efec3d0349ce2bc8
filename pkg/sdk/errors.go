package archon

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/archon-hq/archon/internal/domain"
)

// Sentinel errors matched against API responses.
// Use errors.Is() to check.
var (
	ErrNotFound               = domain.ErrNotFound
	ErrRateLimited            = domain.ErrRateLimited
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError

	// ErrInvalidInput covers every request the server rejected with 400,
	// including validation failures and malformed bodies.
	ErrInvalidInput = errors.New("invalid input")
)

// APIError is a non-2xx response decoded from the server's error body.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("archon: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// Is maps wire-level status and code back to the package sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	case ErrEmbeddingProviderError:
		return e.Code == "embedding_provider_error"
	case ErrInvalidInput:
		return e.StatusCode == http.StatusBadRequest
	}
	return false
}

const maxErrorBody = 64 << 10

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	if data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody)); err == nil {
		_ = json.Unmarshal(data, apiErr)
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

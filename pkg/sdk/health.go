package archon

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Health checks the health of all server components.
//
// The endpoint answers 503 when the vector store is down but still carries
// the full report, so both 200 and 503 decode into a HealthStatus.
func (c *Client) Health(ctx context.Context) (h HealthStatus, err error) {
	start := time.Now()
	defer func() { c.obs.observe("health", start, err) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return HealthStatus{}, fmt.Errorf("archon: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return HealthStatus{}, fmt.Errorf("archon: GET /healthz: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusServiceUnavailable {
		return HealthStatus{}, decodeAPIError(resp)
	}

	if err = json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return HealthStatus{}, fmt.Errorf("archon: decode health response: %w", err)
	}
	return h, nil
}

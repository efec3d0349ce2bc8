package archon

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client is the archon API client entry point.
type Client struct {
	baseURL   string
	httpc     *http.Client
	userAgent string
	obs       *observer
}

// New creates a Client for the API served at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("archon: base URL required")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("archon: parse base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("archon: base URL scheme must be http or https, got %q", u.Scheme)
	}

	cfg := &clientConfig{userAgent: "archon-go-sdk"}
	for _, o := range opts {
		o.apply(cfg)
	}

	httpc := cfg.httpc
	if httpc == nil {
		timeout := cfg.timeout
		if timeout == 0 {
			timeout = defaultTimeout
		}
		httpc = &http.Client{Timeout: timeout}
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		httpc:     httpc,
		userAgent: cfg.userAgent,
		obs:       obs,
	}, nil
}

// Close releases idle connections held by the underlying HTTP client.
func (c *Client) Close() {
	c.httpc.CloseIdleConnections()
}

// Search returns the retrieval service.
func (c *Client) Search() *SearchService {
	return &SearchService{c: c}
}

// Projects returns the project management service.
func (c *Client) Projects() *ProjectService {
	return &ProjectService{c: c}
}

// Tasks returns the task management service.
func (c *Client) Tasks() *TaskService {
	return &TaskService{c: c}
}

// do executes one API call: marshals in (when non-nil), maps non-2xx
// responses to *APIError, and decodes the body into out (when non-nil).
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("archon: encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("archon: build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("archon: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeAPIError(resp)
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("archon: decode response: %w", err)
		}
	}
	return nil
}

// Package archon embeds the retrieval core in-process: it connects to the
// vector store directly and serves semantic search without the HTTP layer.
//
//	client, _ := archon.New(ctx,
//	    archon.WithQdrant("http://localhost:6333", ""),
//	    archon.WithEmbedder(myEmbedder),
//	)
//	defer client.Close()
//
//	hits, _ := client.SearchDocuments(ctx, "connection pooling", &archon.SearchOptions{
//	    MatchCount: 3,
//	    Filter:     map[string]string{"language": "go"},
//	})
//
// For talking to a running archon server over HTTP, use pkg/sdk instead.
package archon

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/archon-hq/archon/internal/domain"
	"github.com/archon-hq/archon/internal/domain/search/filter"
	"github.com/archon-hq/archon/internal/domain/search/result"
	searchrepo "github.com/archon-hq/archon/internal/repository/search"
	"github.com/archon-hq/archon/internal/usecase/rag"
	"github.com/archon-hq/archon/internal/vecstore"
	qdrantStore "github.com/archon-hq/archon/internal/vecstore/qdrant"
	redisStore "github.com/archon-hq/archon/internal/vecstore/redis"
)

const defaultReadinessTimeout = 10 * time.Second

// Option configures the Client.
type Option func(*clientConfig)

type clientConfig struct {
	driver string // "qdrant" or "redis"

	qdrantURL    string
	qdrantAPIKey string

	redisAddr     string
	redisPassword string

	embedder Embedder
	aliases  map[string]string
	logger   *zap.Logger

	readinessTimeout time.Duration
}

// WithQdrant connects the client to a Qdrant instance. apiKey may be empty.
func WithQdrant(url, apiKey string) Option {
	return func(c *clientConfig) {
		c.driver = "qdrant"
		c.qdrantURL = url
		c.qdrantAPIKey = apiKey
	}
}

// WithRedis connects the client to a Redis or Valkey instance with the
// search module loaded.
func WithRedis(addr, password string) Option {
	return func(c *clientConfig) {
		c.driver = "redis"
		c.redisAddr = addr
		c.redisPassword = password
	}
}

// WithEmbedder sets the text embedding provider. Required: every search
// embeds its query before hitting the store.
func WithEmbedder(e Embedder) Option {
	return func(c *clientConfig) {
		c.embedder = e
	}
}

// WithCollectionAliases extends the built-in alias table. Keys are the
// aliases callers pass, values are store collection names.
func WithCollectionAliases(aliases map[string]string) Option {
	return func(c *clientConfig) {
		c.aliases = aliases
	}
}

// WithLogger enables structured logging for client operations.
// Defaults to a nop logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}

// WithReadinessTimeout bounds the initial store readiness check.
// Defaults to 10 seconds.
func WithReadinessTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		c.readinessTimeout = d
	}
}

// retrievalUseCase is the internal interface for substituting the service
// in tests.
type retrievalUseCase interface {
	SearchDocuments(ctx context.Context, query string, matchCount int, f filter.Filter) ([]result.Hit, error)
	SearchCodeExamples(ctx context.Context, query string, matchCount int, f filter.Filter) ([]result.Hit, error)
}

// Client is the embedded retrieval entry point.
type Client struct {
	store vecstore.Store
	svc   retrievalUseCase
}

// New creates a Client and connects to the vector store.
// The provided context bounds the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{readinessTimeout: defaultReadinessTimeout}
	for _, o := range opts {
		o(cfg)
	}

	if cfg.driver == "" {
		return nil, errors.New("archon: vector store address required (use WithQdrant or WithRedis)")
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	if err := store.WaitForReady(ctx, cfg.readinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("archon: vector store not ready: %w", err)
	}

	var domEmb domain.Embedder = noopEmbedder{}
	if cfg.embedder != nil {
		domEmb = &embedderAdapter{inner: cfg.embedder}
	}

	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	strategy := searchrepo.New(store, searchrepo.WithAliases(cfg.aliases))
	return &Client{
		store: store,
		svc:   rag.New(strategy, domEmb, logger),
	}, nil
}

func createStore(cfg *clientConfig) (vecstore.Store, error) {
	switch cfg.driver {
	case "qdrant":
		s, err := qdrantStore.NewStore(qdrantStore.Config{
			URL:    cfg.qdrantURL,
			APIKey: cfg.qdrantAPIKey,
		})
		if err != nil {
			return nil, fmt.Errorf("archon: create qdrant store: %w", err)
		}
		return s, nil
	case "redis":
		s, err := redisStore.NewStore(redisStore.Config{
			Addrs:    []string{cfg.redisAddr},
			Password: cfg.redisPassword,
		})
		if err != nil {
			return nil, fmt.Errorf("archon: create redis store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("archon: unknown driver %q", cfg.driver)
	}
}

// Close releases the vector store connection.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks vector store connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// embedderAdapter wraps the public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// noopEmbedder returns an error on Embed call (used when no embedder configured).
type noopEmbedder struct{}

func (noopEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, errors.New(
		"archon: embedder not configured (use WithEmbedder)",
	)
}

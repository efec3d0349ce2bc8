package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/archon-hq/archon/internal/config"
	"github.com/archon-hq/archon/internal/domain"
	logpkg "github.com/archon-hq/archon/internal/logger"
	"github.com/archon-hq/archon/internal/metrics"
	"github.com/archon-hq/archon/internal/repository/embcache"
	projectrepo "github.com/archon-hq/archon/internal/repository/project"
	searchrepo "github.com/archon-hq/archon/internal/repository/search"
	taskrepo "github.com/archon-hq/archon/internal/repository/task"
	"github.com/archon-hq/archon/internal/sqlite"
	chiTransport "github.com/archon-hq/archon/internal/transport/chi"
	openaiEmb "github.com/archon-hq/archon/internal/transport/openai"
	healthuc "github.com/archon-hq/archon/internal/usecase/health"
	projectuc "github.com/archon-hq/archon/internal/usecase/project"
	"github.com/archon-hq/archon/internal/usecase/rag"
	taskuc "github.com/archon-hq/archon/internal/usecase/task"
	"github.com/archon-hq/archon/internal/vecstore"
	qdrantStore "github.com/archon-hq/archon/internal/vecstore/qdrant"
	redisStore "github.com/archon-hq/archon/internal/vecstore/redis"
	"github.com/archon-hq/archon/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(cfg.Logging.Level, cfg.Logging.Encoding)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting archon API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("vector_store_driver", cfg.VectorStore.Driver),
		zap.String("database_path", cfg.Database.Path),
	)

	// Create vector store based on driver
	var store vecstore.Store
	switch cfg.VectorStore.Driver {
	case "qdrant":
		store, err = qdrantStore.NewStore(qdrantStore.Config{
			URL:     cfg.VectorStore.Qdrant.URL,
			APIKey:  cfg.VectorStore.Qdrant.APIKey,
			Timeout: time.Duration(cfg.VectorStore.Qdrant.TimeoutSec) * time.Second,
		})
	case "redis":
		store, err = redisStore.NewStore(redisStore.Config{
			Addrs:     cfg.VectorStore.Redis.Addrs,
			Username:  cfg.VectorStore.Redis.Username,
			Password:  cfg.VectorStore.Redis.Password,
			DB:        cfg.VectorStore.Redis.DB,
			KeyPrefix: cfg.VectorStore.Redis.KeyPrefix,
		})
	default:
		logger.Fatal("Unknown vector store driver", zap.String("driver", cfg.VectorStore.Driver))
	}
	if err != nil {
		logger.Fatal("Failed to create vector store", zap.Error(err))
	}
	defer store.Close()

	// Wait for the vector store to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.VectorStore.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Vector store not ready", zap.Error(err))
	}
	logger.Info("Connected to vector store")

	// Project database (embedded SQLite)
	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	if err := sqlite.Migrate(ctx, db); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}
	logger.Info("Database ready", zap.String("path", cfg.Database.Path))

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()

	// Build the embedder chain.
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Logger:     logger,
	})

	// Cached, when the store driver offers key-value ops (qdrant does not)
	var embedder domain.Embedder = base
	if kv, ok := store.(vecstore.KVStore); ok {
		embedder = embcache.New(
			base, kv,
			cfg.Embedding.Provider, cfg.Embedding.Model,
			time.Duration(cfg.Embedding.CacheTTLSec)*time.Second,
			metrics.EmbeddingCacheTotal, logger,
		)
	}

	// Instruction prefix goes outermost so cache keys include it.
	if cfg.Embedding.QueryInstruction != "" {
		embedder = domain.NewInstructionEmbedder(embedder, cfg.Embedding.QueryInstruction)
	}
	logger.Info("Embedder created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	// Create repositories
	searchRepo := searchrepo.New(store, searchrepo.WithAliases(cfg.Search.CollectionAliases))
	projectRepo := projectrepo.New(db)
	taskRepo := taskrepo.New(db)

	// Create use case services
	ragSvc := rag.New(searchRepo, embedder, logger)
	projectSvc := projectuc.New(projectRepo, logger)
	taskSvc := taskuc.New(taskRepo, logger)
	// The base provider implements the health probe; decorators do not.
	healthSvc := healthuc.New(store, db, base)

	// Create chi server
	server := chiTransport.NewServer(ragSvc, projectSvc, taskSvc, healthSvc)

	r := chi.NewRouter()
	r.Use(chiTransport.JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiTransport.RequestLogger(logger))
	r.Use(metrics.Middleware())
	r.Mount("/", server.Routes())

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

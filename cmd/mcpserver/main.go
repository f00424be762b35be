// Package main provides the entry point for the Eclipse spaces MCP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/johnswift/eclipse/internal/config"
	"github.com/johnswift/eclipse/internal/db"
	"github.com/johnswift/eclipse/internal/llm"
	"github.com/johnswift/eclipse/internal/mcp"
	"github.com/johnswift/eclipse/internal/previewcache"
	"github.com/johnswift/eclipse/internal/reembed"
	"github.com/johnswift/eclipse/internal/search"
	"github.com/johnswift/eclipse/internal/spaces"
	"github.com/johnswift/eclipse/internal/sweeper"
	"go.uber.org/zap"
)

const version = "1.0.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "eclipse: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.RequireDatabase(); err != nil {
		return err
	}

	// Logs go to stderr; stdout is reserved for MCP JSON-RPC.
	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	// Create context with signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("starting MCP spaces server",
		zap.String("tenant", cfg.TenantID),
		zap.String("embed_backend", cfg.LMBackend),
	)

	// Initialize database connection
	database, err := db.New(ctx, cfg.DatabaseURL, cfg.TenantID)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer database.Close()

	logger.Info("running database migrations")
	if err := database.Migrate(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	health := mcp.NewHealthServer(cfg.HealthPort, logger)
	health.AddCheck("postgres", func(ctx context.Context) error { return database.Pool().Ping(ctx) })

	cache, err := initPreviewCache(cfg, health, logger)
	if err != nil {
		return err
	}
	if closer, ok := cache.(io.Closer); ok {
		defer closer.Close()
	}

	opts, stopWorkers, err := initSearch(ctx, cfg, database, logger)
	if err != nil {
		return err
	}
	defer func() {
		cancel()
		stopWorkers()
	}()

	service := spaces.NewService(database, cache, logger, opts...)

	// Purge spaces whose restore window has passed
	sw := sweeper.NewSweeper(database, cfg.DeletedRetention, logger)
	sw.Start(ctx, cfg.SweepInterval)
	defer func() {
		cancel()
		sw.Stop()
	}()

	if cfg.HealthPort != "" {
		if err := health.Start(); err != nil {
			return fmt.Errorf("start health server: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = health.Shutdown(shutdownCtx)
		}()
	}

	server := mcp.NewServer("eclipse", version, logger)
	server.SetInstructions(mcp.SpaceInstructions)
	mcp.NewSpaceHandlers(service).Register(server)

	// Run the MCP server (blocks until stdin closes or the context is cancelled)
	logger.Info("MCP server ready, listening on stdio")
	if err := server.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("run server: %w", err)
	}

	logger.Info("shutting down gracefully")
	return nil
}

func initPreviewCache(cfg *config.Config, health *mcp.HealthServer, logger *zap.Logger) (previewcache.Store, error) {
	if cfg.RedisURL == "" {
		logger.Info("REDIS_URL not set, keeping previews in memory", zap.Duration("ttl", cfg.PreviewTTL))
		return previewcache.NewMemoryStore(cfg.PreviewTTL), nil
	}

	store, err := previewcache.NewRedisStore(cfg.RedisURL, cfg.PreviewTTL)
	if err != nil {
		return nil, fmt.Errorf("connect preview cache: %w", err)
	}
	health.AddCheck("redis", store.Ping)
	return store, nil
}

// initSearch wires shortcut search and, when an embedding backend is
// configured, the embedding backfill worker.
func initSearch(ctx context.Context, cfg *config.Config, database *db.DB, logger *zap.Logger) ([]spaces.Option, func(), error) {
	if !cfg.EmbeddingEnabled() {
		logger.Info("no embedding backend, shortcut search is lexical only")
		return []spaces.Option{spaces.WithSearcher(search.NewHybridSearcher(database, nil))}, func() {}, nil
	}

	embedder, err := llm.NewMultiEmbedder(cfg.LMBackend, cfg.APIKey(), cfg.EmbedModel)
	if err != nil {
		return nil, nil, fmt.Errorf("init embedder: %w", err)
	}

	var reembedders []*reembed.Reembedder
	for _, provider := range embedder.Providers() {
		reembedders = append(reembedders, reembed.NewReembedder(database, provider, logger))
	}
	worker := reembed.NewWorker(logger, reembedders...)
	worker.Start(ctx, cfg.ReembedInterval)

	logger.Info("shortcut embeddings enabled", zap.Strings("models", embedder.Models()))

	return []spaces.Option{
		spaces.WithSearcher(search.NewHybridSearcher(database, embedder)),
		spaces.WithIndexer(worker),
	}, worker.Stop, nil
}

// Package reembed backfills shortcut embeddings, either in one pass or from a
// background worker nudged after each import.
package reembed

import (
	"context"
	"fmt"
	"time"

	"github.com/johnswift/eclipse/internal/db"
	"github.com/johnswift/eclipse/internal/llm"
	"go.uber.org/zap"
)

// EmbeddingProvider generates embeddings for text.
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Model() string
}

// Store is the slice of the space store the backfill needs.
type Store interface {
	CountAppsMissingEmbedding(ctx context.Context, model string) (int64, error)
	AppsMissingEmbedding(ctx context.Context, model string, afterID int64, limit int) ([]db.App, error)
	AddAppEmbedding(ctx context.Context, appID int64, model string, embedding []float32) error
}

// ProgressCallback is called after each shortcut is processed.
type ProgressCallback func(processed, total int64, appID int64, err error)

// Config holds configuration for the re-embedding process.
type Config struct {
	// BatchSize is the number of shortcuts to process in each batch.
	BatchSize int
	// DelayBetweenBatches is the delay between processing batches (rate limiting).
	DelayBetweenBatches time.Duration
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		BatchSize:           100,
		DelayBetweenBatches: 100 * time.Millisecond,
	}
}

// Reembedder handles batch embedding of shortcuts for one model.
type Reembedder struct {
	store    Store
	provider EmbeddingProvider
	logger   *zap.Logger
	config   Config
}

// NewReembedder creates a new batch re-embedder.
func NewReembedder(store Store, provider EmbeddingProvider, logger *zap.Logger) *Reembedder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reembedder{
		store:    store,
		provider: provider,
		logger:   logger.Named("reembed").With(zap.String("model", provider.Model())),
		config:   DefaultConfig(),
	}
}

// WithConfig sets the configuration and returns the Reembedder for chaining.
func (r *Reembedder) WithConfig(cfg Config) *Reembedder {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultConfig().BatchSize
	}
	r.config = cfg
	return r
}

// Stats holds statistics about the re-embedding process.
type Stats struct {
	Total     int64
	Processed int64
	Errors    int64
	Duration  time.Duration
}

// ReembedAll embeds every live shortcut that has no embedding for the
// provider's model. A failed shortcut is counted and skipped; it is retried
// on the next run.
func (r *Reembedder) ReembedAll(ctx context.Context, progress ProgressCallback) (*Stats, error) {
	start := time.Now()
	stats := &Stats{}
	model := r.provider.Model()

	total, err := r.store.CountAppsMissingEmbedding(ctx, model)
	if err != nil {
		return nil, err
	}
	stats.Total = total

	if total == 0 {
		return stats, nil
	}

	var afterID int64
	for {
		select {
		case <-ctx.Done():
			stats.Duration = time.Since(start)
			return stats, ctx.Err()
		default:
		}

		apps, err := r.store.AppsMissingEmbedding(ctx, model, afterID, r.config.BatchSize)
		if err != nil {
			stats.Duration = time.Since(start)
			return stats, err
		}
		if len(apps) == 0 {
			break
		}

		for _, app := range apps {
			processErr := r.embedApp(ctx, app, model)
			if processErr != nil {
				stats.Errors++
				r.logger.Warn("embed shortcut failed", zap.Int64("app_id", app.ID), zap.Error(processErr))
			}

			stats.Processed++
			if progress != nil {
				progress(stats.Processed, total, app.ID, processErr)
			}
			afterID = app.ID
		}

		// Rate limiting delay between batches
		if r.config.DelayBetweenBatches > 0 {
			select {
			case <-ctx.Done():
				stats.Duration = time.Since(start)
				return stats, ctx.Err()
			case <-time.After(r.config.DelayBetweenBatches):
			}
		}
	}

	stats.Duration = time.Since(start)
	return stats, nil
}

func (r *Reembedder) embedApp(ctx context.Context, app db.App, model string) error {
	embedding, err := r.provider.Embed(ctx, llm.AppText(app.Title, app.URL))
	if err != nil {
		return fmt.Errorf("embed app %d: %w", app.ID, err)
	}
	if err := r.store.AddAppEmbedding(ctx, app.ID, model, embedding); err != nil {
		return fmt.Errorf("store embedding for app %d: %w", app.ID, err)
	}
	return nil
}

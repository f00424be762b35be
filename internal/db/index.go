package db

import (
	"context"
	"fmt"
	"sync"
)

var (
	hnswIndexCreated bool
	hnswIndexMu      sync.Mutex
)

// EnsureHNSWIndex creates the HNSW index on app embeddings if it doesn't exist.
// It runs lazily after the first embedding insert because pgvector needs rows
// to infer the dimensions.
func (db *DB) EnsureHNSWIndex(ctx context.Context) error {
	hnswIndexMu.Lock()
	defer hnswIndexMu.Unlock()

	if hnswIndexCreated {
		return nil
	}

	var exists bool
	err := db.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM pg_indexes
			WHERE indexname = 'idx_space_app_embed_hnsw'
		)
	`).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check index existence: %w", err)
	}

	if exists {
		hnswIndexCreated = true
		return nil
	}

	_, err = db.pool.Exec(ctx, `
		CREATE INDEX IF NOT EXISTS idx_space_app_embed_hnsw
		ON space_app_embeddings USING hnsw (embedding vector_cosine_ops)
	`)
	if err != nil {
		return fmt.Errorf("create HNSW index: %w", err)
	}

	hnswIndexCreated = true
	return nil
}

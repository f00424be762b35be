package db

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/johnswift/eclipse/internal/transfer"
	"github.com/pgvector/pgvector-go"
)

// AppRow is one app item flattened out of a space, addressed by its path of
// child indices ("0", "2/1", ...).
type AppRow struct {
	Path  string
	Type  transfer.ItemType
	Title string
	URL   string
}

// FlattenApps walks items depth-first, folders before their children.
func FlattenApps(items []transfer.AppItem) []AppRow {
	var rows []AppRow
	flattenApps(items, "", 1, &rows)
	return rows
}

func flattenApps(items []transfer.AppItem, prefix string, depth int, rows *[]AppRow) {
	if depth > transfer.MaxItemDepth {
		return
	}
	for i, item := range items {
		path := strconv.Itoa(i)
		if prefix != "" {
			path = prefix + "/" + path
		}
		*rows = append(*rows, AppRow{Path: path, Type: item.Type, Title: item.Title, URL: item.URL})
		if item.Type == transfer.ItemFolder {
			flattenApps(item.Children, path, depth+1, rows)
		}
	}
}

func indexApps(ctx context.Context, tx pgx.Tx, spaceID string, items []transfer.AppItem) error {
	rows := FlattenApps(items)
	if len(rows) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(`
			INSERT INTO space_apps (space_id, path, type, title, url)
			VALUES ($1, $2, $3, $4, $5)
		`, spaceID, r.Path, string(r.Type), r.Title, r.URL)
	}
	return tx.SendBatch(ctx, batch).Close()
}

// App is an indexed app item together with its owning space.
type App struct {
	ID        int64             `json:"id"`
	SpaceID   string            `json:"space_id"`
	SpaceName string            `json:"space_name"`
	Path      string            `json:"path"`
	Type      transfer.ItemType `json:"type"`
	Title     string            `json:"title"`
	URL       string            `json:"url,omitempty"`
}

// AppWithScore includes similarity score for search results.
type AppWithScore struct {
	App
	Score float32 `json:"score"`
}

const appColumns = `a.id, a.space_id, s.name, a.path, a.type, a.title, a.url`

// AddAppEmbedding stores an embedding for an app item.
// Multiple embeddings per item are supported (one per model).
func (db *DB) AddAppEmbedding(ctx context.Context, appID int64, model string, embedding []float32) error {
	vec := pgvector.NewVector(embedding)
	_, err := db.pool.Exec(ctx, `
		INSERT INTO space_app_embeddings (app_id, model, dims, embedding)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (app_id, model) DO UPDATE SET
			dims = EXCLUDED.dims,
			embedding = EXCLUDED.embedding
	`, appID, model, len(embedding), vec)
	if err != nil {
		return fmt.Errorf("insert app embedding: %w", err)
	}

	return db.EnsureHNSWIndex(ctx)
}

// CountAppsMissingEmbedding counts live app items without an embedding for model.
func (db *DB) CountAppsMissingEmbedding(ctx context.Context, model string) (int64, error) {
	var total int64
	err := db.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM space_apps a
		JOIN spaces s ON s.id = a.space_id
		WHERE s.tenant_id = $1 AND s.deleted_at IS NULL
		  AND NOT EXISTS (
			SELECT 1 FROM space_app_embeddings e WHERE e.app_id = a.id AND e.model = $2
		  )
	`, db.tenantID, model).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count apps missing embedding: %w", err)
	}
	return total, nil
}

// AppsMissingEmbedding returns up to limit live app items with ID above
// afterID that have no embedding for model, ordered by ID.
func (db *DB) AppsMissingEmbedding(ctx context.Context, model string, afterID int64, limit int) ([]App, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := db.pool.Query(ctx, `
		SELECT `+appColumns+`
		FROM space_apps a
		JOIN spaces s ON s.id = a.space_id
		WHERE s.tenant_id = $1 AND s.deleted_at IS NULL AND a.id > $3
		  AND NOT EXISTS (
			SELECT 1 FROM space_app_embeddings e WHERE e.app_id = a.id AND e.model = $2
		  )
		ORDER BY a.id
		LIMIT $4
	`, db.tenantID, model, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("query apps missing embedding: %w", err)
	}
	defer rows.Close()

	var apps []App
	for rows.Next() {
		var a App
		var itemType string
		if err := rows.Scan(&a.ID, &a.SpaceID, &a.SpaceName, &a.Path, &itemType, &a.Title, &a.URL); err != nil {
			return nil, fmt.Errorf("scan app: %w", err)
		}
		a.Type = transfer.ItemType(itemType)
		apps = append(apps, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate apps: %w", err)
	}
	return apps, nil
}

// VectorSearchParams contains parameters for vector similarity search.
type VectorSearchParams struct {
	Embedding []float32
	Limit     int
	Model     string // Optional: filter by embedding model (empty = any model)
}

// VectorSearchApps performs vector similarity search over live app items.
func (db *DB) VectorSearchApps(ctx context.Context, params VectorSearchParams) ([]AppWithScore, error) {
	if params.Limit <= 0 {
		params.Limit = 10
	}

	vec := pgvector.NewVector(params.Embedding)

	var rows pgx.Rows
	var err error

	if params.Model != "" {
		rows, err = db.pool.Query(ctx, `
			SELECT `+appColumns+`, 1 - (e.embedding <=> $1) AS score
			FROM space_apps a
			JOIN spaces s ON s.id = a.space_id
			JOIN space_app_embeddings e ON e.app_id = a.id
			WHERE s.tenant_id = $2 AND s.deleted_at IS NULL AND e.model = $3
			ORDER BY e.embedding <=> $1
			LIMIT $4
		`, vec, db.tenantID, params.Model, params.Limit)
	} else {
		rows, err = db.pool.Query(ctx, `
			SELECT * FROM (
				SELECT DISTINCT ON (a.id) `+appColumns+`, 1 - (e.embedding <=> $1) AS score
				FROM space_apps a
				JOIN spaces s ON s.id = a.space_id
				JOIN space_app_embeddings e ON e.app_id = a.id
				WHERE s.tenant_id = $2 AND s.deleted_at IS NULL
				ORDER BY a.id, e.embedding <=> $1
			) ranked
			ORDER BY score DESC
			LIMIT $3
		`, vec, db.tenantID, params.Limit)
	}
	if err != nil {
		return nil, fmt.Errorf("vector search apps: %w", err)
	}
	defer rows.Close()

	return scanAppsWithScore(rows)
}

// LexicalSearchParams contains parameters for lexical (trigram) search.
type LexicalSearchParams struct {
	Query string
	Limit int
}

// LexicalSearchApps performs trigram similarity search over titles and URLs.
func (db *DB) LexicalSearchApps(ctx context.Context, params LexicalSearchParams) ([]AppWithScore, error) {
	if params.Limit <= 0 {
		params.Limit = 10
	}

	rows, err := db.pool.Query(ctx, `
		SELECT `+appColumns+`, similarity(a.title || ' ' || a.url, $1) AS score
		FROM space_apps a
		JOIN spaces s ON s.id = a.space_id
		WHERE s.tenant_id = $2 AND s.deleted_at IS NULL
		  AND (a.title || ' ' || a.url) % $1
		ORDER BY score DESC
		LIMIT $3
	`, params.Query, db.tenantID, params.Limit)
	if err != nil {
		return nil, fmt.Errorf("lexical search apps: %w", err)
	}
	defer rows.Close()

	return scanAppsWithScore(rows)
}

func scanAppsWithScore(rows pgx.Rows) ([]AppWithScore, error) {
	var results []AppWithScore

	for rows.Next() {
		var a AppWithScore
		var itemType string
		err := rows.Scan(&a.ID, &a.SpaceID, &a.SpaceName, &a.Path, &itemType, &a.Title, &a.URL, &a.Score)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		a.Type = transfer.ItemType(itemType)
		results = append(results, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return results, nil
}

package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/johnswift/eclipse/internal/transfer"
)

const spaceColumns = `id, name, icon_type, apps, created_at, deleted_at`

// ListSpaces returns the tenant's live spaces in dock order.
func (db *DB) ListSpaces(ctx context.Context) ([]transfer.Space, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT `+spaceColumns+`
		FROM spaces
		WHERE tenant_id = $1 AND deleted_at IS NULL
		ORDER BY position, created_at
	`, db.tenantID)
	if err != nil {
		return nil, fmt.Errorf("query spaces: %w", err)
	}
	defer rows.Close()

	return scanSpaces(rows)
}

// GetSpace retrieves a live space by ID.
func (db *DB) GetSpace(ctx context.Context, id string) (*transfer.Space, error) {
	row := db.pool.QueryRow(ctx, `
		SELECT `+spaceColumns+`
		FROM spaces
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL
	`, id, db.tenantID)

	s, err := scanSpace(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("space %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query space: %w", err)
	}
	return &s, nil
}

// GetSpaces retrieves live spaces in the order of ids. A missing id is ErrNotFound.
func (db *DB) GetSpaces(ctx context.Context, ids []string) ([]transfer.Space, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT `+spaceColumns+`
		FROM spaces
		WHERE id = ANY($1) AND tenant_id = $2 AND deleted_at IS NULL
	`, ids, db.tenantID)
	if err != nil {
		return nil, fmt.Errorf("query spaces: %w", err)
	}
	defer rows.Close()

	found, err := scanSpaces(rows)
	if err != nil {
		return nil, err
	}
	return orderByIDs(found, ids)
}

// CreateSpaces inserts spaces after the tenant's existing ones and indexes
// their app items, all in one transaction.
func (db *DB) CreateSpaces(ctx context.Context, spaces []transfer.Space) error {
	return db.WithTx(ctx, func(tx pgx.Tx) error {
		var next int
		err := tx.QueryRow(ctx, `
			SELECT COALESCE(MAX(position) + 1, 0) FROM spaces WHERE tenant_id = $1
		`, db.tenantID).Scan(&next)
		if err != nil {
			return fmt.Errorf("next position: %w", err)
		}

		for i, s := range spaces {
			appsJSON, err := marshalApps(s.Apps)
			if err != nil {
				return err
			}

			_, err = tx.Exec(ctx, `
				INSERT INTO spaces (id, tenant_id, name, icon_type, apps, position, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			`, s.ID, db.tenantID, s.Name, string(s.IconType), appsJSON, next+i, s.CreatedAt)
			if err != nil {
				return fmt.Errorf("insert space %s: %w", s.ID, err)
			}

			if err := indexApps(ctx, tx, s.ID, s.Apps); err != nil {
				return fmt.Errorf("index apps of space %s: %w", s.ID, err)
			}
		}
		return nil
	})
}

// DeleteSpace soft-deletes a space; it stays restorable until purged.
func (db *DB) DeleteSpace(ctx context.Context, id string) error {
	result, err := db.pool.Exec(ctx, `
		UPDATE spaces SET deleted_at = now()
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL
	`, id, db.tenantID)
	if err != nil {
		return fmt.Errorf("delete space: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("space %s: %w", id, ErrNotFound)
	}
	return nil
}

// RestoreSpace brings a soft-deleted space back into the dock.
func (db *DB) RestoreSpace(ctx context.Context, id string) error {
	result, err := db.pool.Exec(ctx, `
		UPDATE spaces SET deleted_at = NULL
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NOT NULL
	`, id, db.tenantID)
	if err != nil {
		return fmt.Errorf("restore space: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("deleted space %s: %w", id, ErrNotFound)
	}
	return nil
}

// ListDeletedSpaces returns soft-deleted spaces, most recently deleted first.
func (db *DB) ListDeletedSpaces(ctx context.Context) ([]transfer.Space, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT `+spaceColumns+`
		FROM spaces
		WHERE tenant_id = $1 AND deleted_at IS NOT NULL
		ORDER BY deleted_at DESC
	`, db.tenantID)
	if err != nil {
		return nil, fmt.Errorf("query deleted spaces: %w", err)
	}
	defer rows.Close()

	return scanSpaces(rows)
}

// PurgeDeletedSpaces permanently removes spaces deleted before the cutoff.
func (db *DB) PurgeDeletedSpaces(ctx context.Context, before time.Time) (int64, error) {
	result, err := db.pool.Exec(ctx, `
		DELETE FROM spaces
		WHERE tenant_id = $1 AND deleted_at IS NOT NULL AND deleted_at < $2
	`, db.tenantID, before)
	if err != nil {
		return 0, fmt.Errorf("purge deleted spaces: %w", err)
	}
	return result.RowsAffected(), nil
}

func marshalApps(apps []transfer.AppItem) ([]byte, error) {
	if apps == nil {
		apps = []transfer.AppItem{}
	}
	data, err := json.Marshal(apps)
	if err != nil {
		return nil, fmt.Errorf("marshal apps: %w", err)
	}
	return data, nil
}

func scanSpace(row pgx.Row) (transfer.Space, error) {
	var s transfer.Space
	var iconType string
	var appsJSON []byte

	if err := row.Scan(&s.ID, &s.Name, &iconType, &appsJSON, &s.CreatedAt, &s.DeletedAt); err != nil {
		return transfer.Space{}, err
	}
	s.IconType = transfer.IconType(iconType)

	if len(appsJSON) > 0 {
		if err := json.Unmarshal(appsJSON, &s.Apps); err != nil {
			return transfer.Space{}, fmt.Errorf("unmarshal apps: %w", err)
		}
	}
	if s.Apps == nil {
		s.Apps = []transfer.AppItem{}
	}
	return s, nil
}

func scanSpaces(rows pgx.Rows) ([]transfer.Space, error) {
	var spaces []transfer.Space
	for rows.Next() {
		s, err := scanSpace(rows)
		if err != nil {
			return nil, fmt.Errorf("scan space: %w", err)
		}
		spaces = append(spaces, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate spaces: %w", err)
	}
	return spaces, nil
}

// orderByIDs reorders spaces to follow ids.
func orderByIDs(spaces []transfer.Space, ids []string) ([]transfer.Space, error) {
	byID := make(map[string]transfer.Space, len(spaces))
	for _, s := range spaces {
		byID[s.ID] = s
	}

	ordered := make([]transfer.Space, 0, len(ids))
	for _, id := range ids {
		s, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("space %s: %w", id, ErrNotFound)
		}
		ordered = append(ordered, s)
	}
	return ordered, nil
}

package transfer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SpaceStore is the live space storage an import commits into.
type SpaceStore interface {
	ListSpaces(ctx context.Context) ([]Space, error)
	// CreateSpaces persists all spaces or none.
	CreateSpaces(ctx context.Context, spaces []Space) error
}

// DeletedSpaceLister is implemented by stores that keep soft-deleted spaces.
// Their ids stay reserved until the space is purged.
type DeletedSpaceLister interface {
	ListDeletedSpaces(ctx context.Context) ([]Space, error)
}

// Importer handles space import operations.
type Importer struct {
	store  SpaceStore
	logger *zap.Logger

	now   func() time.Time
	newID func() string
}

// NewImporter creates a new importer writing into store.
func NewImporter(store SpaceStore, logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{
		store:  store,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Commit imports payload as new spaces.
//
// The preview is rebuilt against the store at commit time so final names
// reflect the spaces that exist now, not when the user was asked. Existing
// spaces are never modified. New ids avoid every live space and, when the
// store implements DeletedSpaceLister, every restorable deleted space.
func (i *Importer) Commit(ctx context.Context, payload ImportPayload, opts ImportOptions) (*ImportResult, error) {
	normalized, err := Normalize(payload)
	if err != nil {
		return nil, err
	}
	incoming := normalized.Spaces()
	if len(incoming) == 0 {
		return nil, ErrNoSpacesSelected
	}

	existing, err := i.store.ListSpaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("list spaces: %w", err)
	}

	preview := BuildPreview(normalized, existing)
	result := &ImportResult{Preview: preview, DryRun: opts.DryRun}
	if opts.DryRun {
		return result, nil
	}

	reserved := existing
	if lister, ok := i.store.(DeletedSpaceLister); ok {
		deleted, err := lister.ListDeletedSpaces(ctx)
		if err != nil {
			return nil, fmt.Errorf("list deleted spaces: %w", err)
		}
		reserved = append(append([]Space(nil), existing...), deleted...)
	}

	usedIDs := make(map[string]struct{}, len(reserved)+len(incoming))
	for _, s := range reserved {
		usedIDs[s.ID] = struct{}{}
	}

	now := i.now().UTC()
	created := make([]Space, len(incoming))
	for idx, sp := range incoming {
		id := i.newID()
		for {
			if _, taken := usedIDs[id]; !taken {
				break
			}
			id = i.newID()
		}
		usedIDs[id] = struct{}{}

		created[idx] = Space{
			ID:        id,
			Name:      preview.Items[idx].FinalName,
			IconType:  sp.IconType,
			Apps:      sp.Apps,
			CreatedAt: now,
		}
	}

	if err := i.store.CreateSpaces(ctx, created); err != nil {
		return nil, fmt.Errorf("create spaces: %w", err)
	}

	i.logger.Info("imported spaces",
		zap.Int("spaces", len(created)),
		zap.Int("renamed", preview.NameConflicts),
		zap.Int("app_items", preview.TotalAppItems),
	)

	result.Created = created
	return result, nil
}

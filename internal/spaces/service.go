// Package spaces composes the space store, the import/export engine, the
// preview cache and shortcut search into the operations exposed to clients.
package spaces

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/johnswift/eclipse/internal/previewcache"
	"github.com/johnswift/eclipse/internal/search"
	"github.com/johnswift/eclipse/internal/transfer"
	"go.uber.org/zap"
)

// ErrSearchUnavailable is returned by Search when no searcher is configured.
var ErrSearchUnavailable = errors.New("shortcut search is not configured")

// ErrMissingInput is returned when an import names neither a token nor data.
var ErrMissingInput = errors.New("either a preview token or export data is required")

// Store is the live space storage the service operates on.
type Store interface {
	ListSpaces(ctx context.Context) ([]transfer.Space, error)
	GetSpaces(ctx context.Context, ids []string) ([]transfer.Space, error)
	CreateSpaces(ctx context.Context, spaces []transfer.Space) error
	DeleteSpace(ctx context.Context, id string) error
	RestoreSpace(ctx context.Context, id string) error
	ListDeletedSpaces(ctx context.Context) ([]transfer.Space, error)
}

// Searcher finds shortcuts across live spaces.
type Searcher interface {
	Search(ctx context.Context, params search.SearchParams) ([]search.SearchResult, error)
}

// Indexer is told when new shortcuts need embedding.
type Indexer interface {
	Trigger()
}

// Service implements the space operations.
type Service struct {
	store    Store
	cache    previewcache.Store
	importer *transfer.Importer
	exporter *transfer.Exporter
	searcher Searcher
	indexer  Indexer
	logger   *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithSearcher enables Search.
func WithSearcher(s Searcher) Option {
	return func(svc *Service) { svc.searcher = s }
}

// WithIndexer registers an indexer nudged after every committed import.
func WithIndexer(i Indexer) Option {
	return func(svc *Service) { svc.indexer = i }
}

// NewService creates a service over store, keeping previews in cache.
func NewService(store Store, cache previewcache.Store, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &Service{
		store:    store,
		cache:    cache,
		importer: transfer.NewImporter(store, logger.Named("importer")),
		exporter: transfer.NewExporter(store),
		logger:   logger.Named("spaces"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// List returns live spaces in dock order.
func (s *Service) List(ctx context.Context) ([]transfer.Space, error) {
	spaces, err := s.store.ListSpaces(ctx)
	if err != nil {
		return nil, err
	}
	if spaces == nil {
		spaces = []transfer.Space{}
	}
	return spaces, nil
}

// ExportRequest selects what to export.
type ExportRequest struct {
	IDs    []string
	Bundle bool
}

// ExportResponse carries the encoded export document.
type ExportResponse struct {
	Document []byte
	Result   transfer.ExportResult
}

// Export encodes the requested spaces as an export document.
func (s *Service) Export(ctx context.Context, req ExportRequest) (*ExportResponse, error) {
	var buf bytes.Buffer
	result, err := s.exporter.Export(ctx, &buf, transfer.ExportOptions{IDs: req.IDs, Bundle: req.Bundle})
	if err != nil {
		return nil, err
	}
	return &ExportResponse{Document: buf.Bytes(), Result: *result}, nil
}

// PreviewRequest is an uploaded export plus the user's choices.
type PreviewRequest struct {
	Data      []byte
	Selection string // empty means every space
	Locale    string
	MaxItems  int
}

// PreviewResponse describes what importing would do. Token confirms the
// import without re-uploading Data.
type PreviewResponse struct {
	Token   string           `json:"token"`
	Preview transfer.Preview `json:"preview"`
	Message string           `json:"message"`
}

// Preview decodes data, applies the selection and previews the result
// against the current live spaces.
func (s *Service) Preview(ctx context.Context, req PreviewRequest) (*PreviewResponse, error) {
	payload, err := transfer.Decode(req.Data)
	if err != nil {
		return nil, err
	}

	indices, err := parseSelection(req.Selection, len(payload.Spaces()))
	if err != nil {
		return nil, err
	}
	selected, err := applySelection(payload, indices)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.ListSpaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("list spaces: %w", err)
	}

	preview := transfer.BuildPreview(selected, existing)
	preview.IncomingSpaces = len(payload.Spaces())

	token, err := s.cache.Put(ctx, previewcache.PendingImport{Payload: payload, Selection: indices})
	if err != nil {
		return nil, fmt.Errorf("cache preview: %w", err)
	}

	s.logger.Debug("previewed import",
		zap.String("token", token),
		zap.Int("incoming", preview.IncomingSpaces),
		zap.Int("selected", preview.SelectedSpaces),
		zap.Int("conflicts", preview.NameConflicts),
	)

	return &PreviewResponse{
		Token:   token,
		Preview: preview,
		Message: transfer.FormatMessage(preview, transfer.ParseLocale(req.Locale), transfer.MessageOptions{MaxItems: req.MaxItems}),
	}, nil
}

// ImportRequest commits either a previewed token or raw data.
type ImportRequest struct {
	Token     string
	Data      []byte
	Selection string // ignored when Token is set
	DryRun    bool
}

// Import commits an import. A token is consumed by a successful non-dry run.
func (s *Service) Import(ctx context.Context, req ImportRequest) (*transfer.ImportResult, error) {
	var (
		payload transfer.ImportPayload
		indices []int
		err     error
	)

	switch {
	case req.Token != "":
		pending, err := s.cache.Get(ctx, req.Token)
		if err != nil {
			return nil, err
		}
		payload, indices = pending.Payload, pending.Selection
	case len(req.Data) > 0:
		payload, err = transfer.Decode(req.Data)
		if err != nil {
			return nil, err
		}
		indices, err = parseSelection(req.Selection, len(payload.Spaces()))
		if err != nil {
			return nil, err
		}
	default:
		return nil, ErrMissingInput
	}

	selected, err := applySelection(payload, indices)
	if err != nil {
		return nil, err
	}

	result, err := s.importer.Commit(ctx, selected, transfer.ImportOptions{DryRun: req.DryRun})
	if err != nil {
		return nil, err
	}
	result.Preview.IncomingSpaces = len(payload.Spaces())

	if result.DryRun {
		return result, nil
	}

	if req.Token != "" {
		if err := s.cache.Delete(ctx, req.Token); err != nil {
			s.logger.Warn("drop consumed preview", zap.String("token", req.Token), zap.Error(err))
		}
	}
	if s.indexer != nil && result.Preview.TotalAppItems > 0 {
		s.indexer.Trigger()
	}
	return result, nil
}

// Delete soft-deletes a space.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.DeleteSpace(ctx, id)
}

// Restore undoes Delete while the space has not been purged.
func (s *Service) Restore(ctx context.Context, id string) error {
	return s.store.RestoreSpace(ctx, id)
}

// ListDeleted returns soft-deleted spaces awaiting purge.
func (s *Service) ListDeleted(ctx context.Context) ([]transfer.Space, error) {
	spaces, err := s.store.ListDeletedSpaces(ctx)
	if err != nil {
		return nil, err
	}
	if spaces == nil {
		spaces = []transfer.Space{}
	}
	return spaces, nil
}

// Search finds shortcuts by title or URL.
func (s *Service) Search(ctx context.Context, params search.SearchParams) ([]search.SearchResult, error) {
	if s.searcher == nil {
		return nil, ErrSearchUnavailable
	}
	return s.searcher.Search(ctx, params)
}

// parseSelection returns nil for an empty selection, meaning every space.
func parseSelection(selection string, available int) ([]int, error) {
	if selection == "" {
		return nil, nil
	}
	return transfer.ParseSelection(selection, available)
}

func applySelection(payload transfer.ImportPayload, indices []int) (transfer.ImportPayload, error) {
	if indices == nil {
		return payload, nil
	}

	switch payload.Kind {
	case transfer.KindMulti:
		picked, err := transfer.Pick(payload.Multi, indices)
		if err != nil {
			return transfer.ImportPayload{}, err
		}
		return transfer.MultiPayload(picked), nil
	default:
		// A single-space export has one selectable entry, already range-checked.
		if len(indices) == 0 {
			return transfer.ImportPayload{}, transfer.ErrNoSpacesSelected
		}
		return payload, nil
	}
}

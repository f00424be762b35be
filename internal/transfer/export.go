package transfer

import (
	"context"
	"fmt"
	"io"
)

// SpaceReader reads live spaces.
type SpaceReader interface {
	ListSpaces(ctx context.Context) ([]Space, error)
	GetSpaces(ctx context.Context, ids []string) ([]Space, error)
}

// ExportOptions configures export behavior.
type ExportOptions struct {
	// IDs restricts the export to these spaces, in this order (empty = all).
	IDs []string

	// Bundle forces a multi-space export even for a single space.
	Bundle bool
}

// ExportResult contains statistics from an export operation.
type ExportResult struct {
	Type     ExportType `json:"type"`
	Spaces   int        `json:"spaces"`
	AppItems int        `json:"appItems"`
}

// Exporter handles space export operations.
type Exporter struct {
	store SpaceReader
}

// NewExporter creates a new exporter reading from store.
func NewExporter(store SpaceReader) *Exporter {
	return &Exporter{store: store}
}

// Export writes the selected spaces to w. One space produces a single-space
// export unless opts.Bundle is set; anything else produces a bundle.
func (e *Exporter) Export(ctx context.Context, w io.Writer, opts ExportOptions) (*ExportResult, error) {
	payload, err := e.Build(ctx, opts)
	if err != nil {
		return nil, err
	}

	if err := EncodePayload(w, payload); err != nil {
		return nil, err
	}

	result := &ExportResult{Spaces: len(payload.Spaces())}
	for _, s := range payload.Spaces() {
		result.AppItems += CountAppItems(s.Apps)
	}
	if payload.Kind == KindSingle {
		result.Type = TypeSingleSpace
	} else {
		result.Type = TypeMultiSpace
	}
	return result, nil
}

// Build loads the selected spaces and wraps them in an export envelope.
func (e *Exporter) Build(ctx context.Context, opts ExportOptions) (ImportPayload, error) {
	var (
		spaces []Space
		err    error
	)
	if len(opts.IDs) > 0 {
		spaces, err = e.store.GetSpaces(ctx, opts.IDs)
	} else {
		spaces, err = e.store.ListSpaces(ctx)
	}
	if err != nil {
		return ImportPayload{}, fmt.Errorf("load spaces: %w", err)
	}
	if len(spaces) == 0 {
		return ImportPayload{}, ErrNoSpacesSelected
	}

	if len(spaces) == 1 && !opts.Bundle {
		return SinglePayload(ExportSpace(spaces[0])), nil
	}
	return MultiPayload(ExportSpaces(spaces)), nil
}

// ExportSpace wraps one live space in a current-version envelope.
func ExportSpace(s Space) *SpaceExportData {
	return &SpaceExportData{
		Version:       ExportVersion,
		SchemaVersion: intPtr(CurrentSchemaVersion),
		Type:          TypeSingleSpace,
		Data:          spacePayload(s),
	}
}

// ExportSpaces wraps live spaces, in order, in a current-version bundle.
func ExportSpaces(spaces []Space) *MultiSpaceExportData {
	payloads := make([]SpacePayload, len(spaces))
	for i, s := range spaces {
		payloads[i] = spacePayload(s)
	}
	return &MultiSpaceExportData{
		Version:       ExportVersion,
		SchemaVersion: intPtr(CurrentSchemaVersion),
		Type:          TypeMultiSpace,
		Data:          MultiSpaceData{Spaces: payloads},
	}
}

func spacePayload(s Space) SpacePayload {
	return SpacePayload{
		Name:     s.Name,
		IconType: s.IconType,
		Apps:     stripItemIDs(s.Apps, 1),
	}
}

// stripItemIDs copies items without their store-local ids.
func stripItemIDs(items []AppItem, depth int) []AppItem {
	out := make([]AppItem, len(items))
	for i, item := range items {
		out[i] = item
		out[i].ID = ""
		if item.Children != nil && depth <= MaxItemDepth {
			out[i].Children = stripItemIDs(item.Children, depth+1)
		}
	}
	return out
}

// Package transfer provides export/import functionality for Eclipse spaces.
package transfer

import (
	"time"
)

// ExportVersion is the envelope version written into every export.
const ExportVersion = "1.0"

// CurrentSchemaVersion is the newest export schema this build understands.
// Payloads declaring a higher version are rejected.
const CurrentSchemaVersion = 1

// LegacySchemaVersion is assumed for payloads that carry no schemaVersion field.
const LegacySchemaVersion = 0

// MaxItemDepth bounds folder nesting inside a space.
const MaxItemDepth = 32

// ExportType is the envelope type tag.
type ExportType string

const (
	TypeSingleSpace ExportType = "eclipse-space-export"
	TypeMultiSpace  ExportType = "eclipse-multi-space-export"

	// Short tags accepted on import only.
	typeSingleSpaceAlias ExportType = "single-space-export"
	typeMultiSpaceAlias  ExportType = "multi-space-export"
)

// ItemType tags an AppItem variant.
type ItemType string

const (
	ItemApp    ItemType = "app"
	ItemFolder ItemType = "folder"
)

// IconType selects how a space icon is rendered. Values are opaque here.
type IconType string

// AppItem is a dock entry: an app shortcut or a folder of further items.
type AppItem struct {
	ID       string    `json:"id,omitempty"`
	Type     ItemType  `json:"type"`
	Title    string    `json:"title"`
	URL      string    `json:"url,omitempty"`
	Icon     string    `json:"icon,omitempty"`
	Children []AppItem `json:"children,omitempty"`
}

// SpacePayload is the exported content of one space.
type SpacePayload struct {
	Name     string    `json:"name"`
	IconType IconType  `json:"iconType"`
	Apps     []AppItem `json:"apps"`
}

// SpaceExportData is the single-space envelope.
type SpaceExportData struct {
	Version       string       `json:"version"`
	SchemaVersion *int         `json:"schemaVersion,omitempty"`
	Type          ExportType   `json:"type"`
	Data          SpacePayload `json:"data"`
}

// MultiSpaceData holds the spaces of a bundle in order.
type MultiSpaceData struct {
	Spaces []SpacePayload `json:"spaces"`
}

// MultiSpaceExportData is the multi-space (bundle) envelope.
type MultiSpaceExportData struct {
	Version       string         `json:"version"`
	SchemaVersion *int           `json:"schemaVersion,omitempty"`
	Type          ExportType     `json:"type"`
	Data          MultiSpaceData `json:"data"`
}

// Space is a live space as held by the space store.
type Space struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	IconType  IconType   `json:"iconType"`
	Apps      []AppItem  `json:"apps"`
	CreatedAt time.Time  `json:"createdAt"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

// PayloadKind discriminates ImportPayload.
type PayloadKind string

const (
	KindSingle PayloadKind = "single"
	KindMulti  PayloadKind = "multi"
)

// ImportPayload is a decoded export of either shape.
// Exactly one of Single and Multi is set, matching Kind.
type ImportPayload struct {
	Kind   PayloadKind           `json:"type"`
	Single *SpaceExportData      `json:"single,omitempty"`
	Multi  *MultiSpaceExportData `json:"multi,omitempty"`
}

// SinglePayload wraps a single-space export.
func SinglePayload(data *SpaceExportData) ImportPayload {
	return ImportPayload{Kind: KindSingle, Single: data}
}

// MultiPayload wraps a multi-space export.
func MultiPayload(data *MultiSpaceExportData) ImportPayload {
	return ImportPayload{Kind: KindMulti, Multi: data}
}

// Spaces flattens the payload into its ordered list of space payloads.
func (p ImportPayload) Spaces() []SpacePayload {
	switch p.Kind {
	case KindSingle:
		if p.Single == nil {
			return nil
		}
		return []SpacePayload{p.Single.Data}
	case KindMulti:
		if p.Multi == nil {
			return nil
		}
		return p.Multi.Data.Spaces
	default:
		return nil
	}
}

// PreviewItem describes how one incoming space will land.
type PreviewItem struct {
	OriginalName string `json:"originalName"`
	FinalName    string `json:"finalName"`
	AppItemCount int    `json:"appItemCount"`
}

// Renamed reports whether the space will be imported under a different name.
func (i PreviewItem) Renamed() bool {
	return i.FinalName != i.OriginalName
}

// Preview summarizes an import before it is committed.
type Preview struct {
	IncomingSpaces int           `json:"incomingSpaces"`
	SelectedSpaces int           `json:"selectedSpaces"`
	NameConflicts  int           `json:"nameConflicts"`
	TotalAppItems  int           `json:"totalAppItems"`
	Items          []PreviewItem `json:"items"`
}

// ImportOptions configures import behavior.
type ImportOptions struct {
	// DryRun builds the preview against the store without writing anything.
	DryRun bool
}

// ImportResult contains the outcome of an import.
type ImportResult struct {
	Preview Preview `json:"preview"`
	Created []Space `json:"created"`
	DryRun  bool    `json:"dryRun"`
}

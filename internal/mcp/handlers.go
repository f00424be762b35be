package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/johnswift/eclipse/internal/search"
	"github.com/johnswift/eclipse/internal/spaces"
	"github.com/johnswift/eclipse/internal/transfer"
)

// ValidateAndUnmarshal validates and unmarshals JSON parameters into the target struct.
// It returns an InvalidParams error if unmarshaling fails.
func ValidateAndUnmarshal[T any](params json.RawMessage) (T, error) {
	var result T
	if len(params) == 0 {
		return result, NewError(InvalidParams, "Missing required parameters")
	}

	if err := json.Unmarshal(params, &result); err != nil {
		return result, NewError(InvalidParams, fmt.Sprintf("Invalid parameters: %s", err.Error()))
	}

	return result, nil
}

// unmarshalOptional is ValidateAndUnmarshal for tools whose arguments are all optional.
func unmarshalOptional[T any](params json.RawMessage) (T, error) {
	trimmed := bytes.TrimSpace(params)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		var zero T
		return zero, nil
	}
	return ValidateAndUnmarshal[T](params)
}

// SpaceService defines the space operations exposed as tools.
// This allows the MCP handlers to be decoupled from storage.
type SpaceService interface {
	List(ctx context.Context) ([]transfer.Space, error)
	Export(ctx context.Context, req spaces.ExportRequest) (*spaces.ExportResponse, error)
	Preview(ctx context.Context, req spaces.PreviewRequest) (*spaces.PreviewResponse, error)
	Import(ctx context.Context, req spaces.ImportRequest) (*transfer.ImportResult, error)
	Delete(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) error
	ListDeleted(ctx context.Context) ([]transfer.Space, error)
	Search(ctx context.Context, params search.SearchParams) ([]search.SearchResult, error)
}

// SpaceSummary is a space without its item tree.
type SpaceSummary struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	IconType  string     `json:"iconType"`
	AppItems  int        `json:"appItems"`
	CreatedAt time.Time  `json:"createdAt"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

// SpaceListResult is returned by space.list and space.deleted.
type SpaceListResult struct {
	Spaces []SpaceSummary `json:"spaces"`
}

// SpaceExportArgs are the arguments of space.export.
type SpaceExportArgs struct {
	IDs    []string `json:"ids,omitempty"`
	Bundle bool     `json:"bundle,omitempty"`
}

// SpaceExportResult carries the export document inline.
type SpaceExportResult struct {
	transfer.ExportResult
	Document json.RawMessage `json:"document"`
}

// SpacePreviewArgs are the arguments of space.preview.
type SpacePreviewArgs struct {
	Data      json.RawMessage `json:"data"`
	Selection string          `json:"selection,omitempty"`
	Locale    string          `json:"locale,omitempty"`
	MaxItems  int             `json:"max_items,omitempty"`
}

// SpaceImportArgs are the arguments of space.import.
type SpaceImportArgs struct {
	Token     string          `json:"token,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Selection string          `json:"selection,omitempty"`
	DryRun    bool            `json:"dry_run,omitempty"`
}

// SpaceImportResult reports what an import created.
type SpaceImportResult struct {
	DryRun  bool             `json:"dryRun"`
	Preview transfer.Preview `json:"preview"`
	Created []SpaceSummary   `json:"created"`
}

// SpaceIDArgs are the arguments of space.delete and space.restore.
type SpaceIDArgs struct {
	ID string `json:"id"`
}

// OKResult acknowledges a state change.
type OKResult struct {
	OK bool `json:"ok"`
}

// ShortcutSearchArgs are the arguments of shortcut.search.
type ShortcutSearchArgs struct {
	Query  string `json:"query"`
	K      *int   `json:"k,omitempty"`
	Hybrid *bool  `json:"hybrid,omitempty"`
	Model  string `json:"model,omitempty"`
}

// SpaceHandlers creates handlers for space tools that use the provided service.
type SpaceHandlers struct {
	service SpaceService
}

// NewSpaceHandlers creates a new SpaceHandlers with the given service.
func NewSpaceHandlers(service SpaceService) *SpaceHandlers {
	return &SpaceHandlers{service: service}
}

// Register registers all space tool handlers with the server.
func (h *SpaceHandlers) Register(server *Server) {
	for _, tool := range SpaceTools() {
		var handler Handler
		switch tool.Name {
		case ToolSpaceList:
			handler = h.HandleList
		case ToolSpaceExport:
			handler = h.HandleExport
		case ToolSpacePreview:
			handler = h.HandlePreview
		case ToolSpaceImport:
			handler = h.HandleImport
		case ToolSpaceDelete:
			handler = h.HandleDelete
		case ToolSpaceRestore:
			handler = h.HandleRestore
		case ToolSpaceDeleted:
			handler = h.HandleDeleted
		case ToolShortcutSearch:
			handler = h.HandleSearch
		default:
			continue
		}
		server.RegisterTool(tool, handler)
	}
}

// HandleList handles the space.list tool call.
func (h *SpaceHandlers) HandleList(ctx context.Context, _ json.RawMessage) (any, error) {
	list, err := h.service.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list spaces: %w", err)
	}
	return SpaceListResult{Spaces: summarize(list)}, nil
}

// HandleExport handles the space.export tool call.
func (h *SpaceHandlers) HandleExport(ctx context.Context, params json.RawMessage) (any, error) {
	args, err := unmarshalOptional[SpaceExportArgs](params)
	if err != nil {
		return nil, err
	}

	resp, err := h.service.Export(ctx, spaces.ExportRequest{IDs: args.IDs, Bundle: args.Bundle})
	if err != nil {
		return nil, err
	}

	return SpaceExportResult{
		ExportResult: resp.Result,
		Document:     json.RawMessage(bytes.TrimSpace(resp.Document)),
	}, nil
}

// HandlePreview handles the space.preview tool call.
func (h *SpaceHandlers) HandlePreview(ctx context.Context, params json.RawMessage) (any, error) {
	args, err := ValidateAndUnmarshal[SpacePreviewArgs](params)
	if err != nil {
		return nil, err
	}

	data, err := documentBytes(args.Data)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, NewError(InvalidParams, "data is required and cannot be empty")
	}
	if args.MaxItems < 0 {
		return nil, NewError(InvalidParams, "max_items cannot be negative")
	}

	return h.service.Preview(ctx, spaces.PreviewRequest{
		Data:      data,
		Selection: args.Selection,
		Locale:    args.Locale,
		MaxItems:  args.MaxItems,
	})
}

// HandleImport handles the space.import tool call.
func (h *SpaceHandlers) HandleImport(ctx context.Context, params json.RawMessage) (any, error) {
	args, err := ValidateAndUnmarshal[SpaceImportArgs](params)
	if err != nil {
		return nil, err
	}

	data, err := documentBytes(args.Data)
	if err != nil {
		return nil, err
	}
	if args.Token == "" && len(data) == 0 {
		return nil, NewError(InvalidParams, "either token or data is required")
	}

	result, err := h.service.Import(ctx, spaces.ImportRequest{
		Token:     args.Token,
		Data:      data,
		Selection: args.Selection,
		DryRun:    args.DryRun,
	})
	if err != nil {
		return nil, err
	}

	return SpaceImportResult{
		DryRun:  result.DryRun,
		Preview: result.Preview,
		Created: summarize(result.Created),
	}, nil
}

// HandleDelete handles the space.delete tool call.
func (h *SpaceHandlers) HandleDelete(ctx context.Context, params json.RawMessage) (any, error) {
	args, err := ValidateAndUnmarshal[SpaceIDArgs](params)
	if err != nil {
		return nil, err
	}
	if args.ID == "" {
		return nil, NewError(InvalidParams, "id is required and cannot be empty")
	}

	if err := h.service.Delete(ctx, args.ID); err != nil {
		return nil, fmt.Errorf("failed to delete space: %w", err)
	}
	return OKResult{OK: true}, nil
}

// HandleRestore handles the space.restore tool call.
func (h *SpaceHandlers) HandleRestore(ctx context.Context, params json.RawMessage) (any, error) {
	args, err := ValidateAndUnmarshal[SpaceIDArgs](params)
	if err != nil {
		return nil, err
	}
	if args.ID == "" {
		return nil, NewError(InvalidParams, "id is required and cannot be empty")
	}

	if err := h.service.Restore(ctx, args.ID); err != nil {
		return nil, fmt.Errorf("failed to restore space: %w", err)
	}
	return OKResult{OK: true}, nil
}

// HandleDeleted handles the space.deleted tool call.
func (h *SpaceHandlers) HandleDeleted(ctx context.Context, _ json.RawMessage) (any, error) {
	list, err := h.service.ListDeleted(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list deleted spaces: %w", err)
	}
	return SpaceListResult{Spaces: summarize(list)}, nil
}

// HandleSearch handles the shortcut.search tool call.
func (h *SpaceHandlers) HandleSearch(ctx context.Context, params json.RawMessage) (any, error) {
	args, err := ValidateAndUnmarshal[ShortcutSearchArgs](params)
	if err != nil {
		return nil, err
	}

	// Validate required fields
	if args.Query == "" {
		return nil, NewError(InvalidParams, "query is required and cannot be empty")
	}

	// Set defaults
	k := 10
	if args.K != nil {
		k = *args.K
	}
	hybrid := true
	if args.Hybrid != nil {
		hybrid = *args.Hybrid
	}

	// Clamp k to valid range
	if k < 1 {
		k = 1
	}
	if k > 100 {
		k = 100
	}

	results, err := h.service.Search(ctx, search.SearchParams{
		Query:  args.Query,
		Limit:  k,
		Hybrid: hybrid,
		Model:  args.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search shortcuts: %w", err)
	}
	if results == nil {
		results = []search.SearchResult{}
	}
	return results, nil
}

// documentBytes accepts an export document either inline or as a JSON string.
func documentBytes(raw json.RawMessage) ([]byte, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] != '"' {
		return trimmed, nil
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return nil, NewError(InvalidParams, fmt.Sprintf("Invalid data: %s", err.Error()))
	}
	return bytes.TrimSpace([]byte(s)), nil
}

func summarize(list []transfer.Space) []SpaceSummary {
	out := make([]SpaceSummary, len(list))
	for i, s := range list {
		out[i] = SpaceSummary{
			ID:        s.ID,
			Name:      s.Name,
			IconType:  string(s.IconType),
			AppItems:  transfer.CountAppItems(s.Apps),
			CreatedAt: s.CreatedAt,
			DeletedAt: s.DeletedAt,
		}
	}
	return out
}

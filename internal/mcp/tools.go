package mcp

// Tool names.
const (
	ToolSpaceList      = "space.list"
	ToolSpaceExport    = "space.export"
	ToolSpacePreview   = "space.preview"
	ToolSpaceImport    = "space.import"
	ToolSpaceDelete    = "space.delete"
	ToolSpaceRestore   = "space.restore"
	ToolSpaceDeleted   = "space.deleted"
	ToolShortcutSearch = "shortcut.search"
)

// SpaceInstructions is sent to clients on initialize.
const SpaceInstructions = `Spaces are named groups of shortcuts on the Eclipse new-tab dock.
To import an export file, call space.preview with the document, show the user
its message, and call space.import with the returned token once they agree.
Imports only add spaces; a name already in use gets a " (n)" suffix.`

func annotations(title string, readOnly, destructive, idempotent bool) *ToolAnnotations {
	return &ToolAnnotations{
		Title:           title,
		ReadOnlyHint:    readOnly,
		DestructiveHint: destructive,
		IdempotentHint:  idempotent,
	}
}

// SpaceTools returns the MCP tool definitions for space operations.
func SpaceTools() []Tool {
	return []Tool{
		SpaceListTool(),
		SpaceExportTool(),
		SpacePreviewTool(),
		SpaceImportTool(),
		SpaceDeleteTool(),
		SpaceRestoreTool(),
		SpaceDeletedTool(),
		ShortcutSearchTool(),
	}
}

func emptyObjectSchema() JSONSchema {
	falseVal := false
	return JSONSchema{
		Type:                 "object",
		Properties:           map[string]JSONSchema{},
		AdditionalProperties: &falseVal,
	}
}

func exportDocumentSchema() JSONSchema {
	return JSONSchema{
		Type:        "object",
		Description: "An export document as produced by space.export or the new-tab page: {version, schemaVersion, type, data}. A JSON string holding the document is also accepted.",
	}
}

// SpaceListTool returns the tool definition for space.list.
func SpaceListTool() Tool {
	return Tool{
		Name:        ToolSpaceList,
		Annotations: annotations("List spaces", true, false, true),
		Description: "List the spaces currently in the dock, in dock order, with their ids and shortcut counts.",
		InputSchema: emptyObjectSchema(),
	}
}

// SpaceExportTool returns the tool definition for space.export.
func SpaceExportTool() Tool {
	falseVal := false

	return Tool{
		Name:        ToolSpaceExport,
		Annotations: annotations("Export spaces", true, false, true),
		Description: "Export spaces as a JSON document that can be re-imported here or on another device. One space yields a single-space export; several yield a bundle.",
		InputSchema: JSONSchema{
			Type: "object",
			Properties: map[string]JSONSchema{
				"ids": {
					Type:        "array",
					Description: "Space ids to export, in order. Omit to export every space.",
					Items:       &JSONSchema{Type: "string"},
				},
				"bundle": {
					Type:        "boolean",
					Description: "Always produce a multi-space bundle, even for one space.",
					Default:     false,
				},
			},
			AdditionalProperties: &falseVal,
		},
	}
}

// SpacePreviewTool returns the tool definition for space.preview.
func SpacePreviewTool() Tool {
	falseVal := false
	minItems := 0.0

	return Tool{
		Name:        ToolSpacePreview,
		Annotations: annotations("Preview import", true, false, false),
		Description: "Preview importing an export document: which spaces will be created, which names will be renamed to avoid conflicts, and how many shortcuts they hold. Returns a token to pass to space.import and a ready-to-show confirmation message.",
		InputSchema: JSONSchema{
			Type: "object",
			Properties: map[string]JSONSchema{
				"data": exportDocumentSchema(),
				"selection": {
					Type:        "string",
					Description: "Which spaces of a bundle to import, 1-based: \"1,3\", \"2-4\", \"1 3-5\". Omit for all.",
				},
				"locale": {
					Type:        "string",
					Description: "Language of the confirmation message (BCP 47 tag or Accept-Language value). Chinese tags get a Chinese message, anything else English.",
					Default:     "en",
				},
				"max_items": {
					Type:        "integer",
					Description: "Maximum number of spaces listed in the message; 0 lists all.",
					Minimum:     &minItems,
					Default:     0,
				},
			},
			Required:             []string{"data"},
			AdditionalProperties: &falseVal,
		},
	}
}

// SpaceImportTool returns the tool definition for space.import.
func SpaceImportTool() Tool {
	falseVal := false

	return Tool{
		Name:        ToolSpaceImport,
		Annotations: annotations("Import spaces", false, false, false),
		Description: "Import spaces, either by confirming a space.preview token or directly from an export document. Imported spaces are always added as new spaces; existing spaces are never changed. Names are re-checked at import time.",
		InputSchema: JSONSchema{
			Type: "object",
			Properties: map[string]JSONSchema{
				"token": {
					Type:        "string",
					Description: "Token returned by space.preview. The selection made at preview time is reused.",
				},
				"data": exportDocumentSchema(),
				"selection": {
					Type:        "string",
					Description: "Which spaces of a bundle to import when passing data directly. Ignored with a token.",
				},
				"dry_run": {
					Type:        "boolean",
					Description: "Compute the result without writing anything.",
					Default:     false,
				},
			},
			AdditionalProperties: &falseVal,
		},
	}
}

func spaceIDTool(name, description string, ann *ToolAnnotations) Tool {
	falseVal := false

	return Tool{
		Name:        name,
		Description: description,
		Annotations: ann,
		InputSchema: JSONSchema{
			Type: "object",
			Properties: map[string]JSONSchema{
				"id": {
					Type:        "string",
					Description: "The space id.",
				},
			},
			Required:             []string{"id"},
			AdditionalProperties: &falseVal,
		},
	}
}

// SpaceDeleteTool returns the tool definition for space.delete.
func SpaceDeleteTool() Tool {
	return spaceIDTool(ToolSpaceDelete, "Delete a space. It can be restored with space.restore until the retention period ends.",
		annotations("Delete space", false, true, true))
}

// SpaceRestoreTool returns the tool definition for space.restore.
func SpaceRestoreTool() Tool {
	return spaceIDTool(ToolSpaceRestore, "Restore a deleted space to the end of the dock.",
		annotations("Restore space", false, false, true))
}

// SpaceDeletedTool returns the tool definition for space.deleted.
func SpaceDeletedTool() Tool {
	return Tool{
		Name:        ToolSpaceDeleted,
		Annotations: annotations("List deleted spaces", true, false, true),
		Description: "List deleted spaces that can still be restored, most recently deleted first.",
		InputSchema: emptyObjectSchema(),
	}
}

// ShortcutSearchTool returns the tool definition for shortcut.search.
func ShortcutSearchTool() Tool {
	falseVal := false
	minK := 1.0
	maxK := 100.0
	defaultK := 10.0

	return Tool{
		Name:        ToolShortcutSearch,
		Annotations: annotations("Search shortcuts", true, false, true),
		Description: "Search shortcuts across all spaces by title or URL. Uses semantic (vector) and lexical (trigram) similarity when an embedding backend is configured, lexical only otherwise.",
		InputSchema: JSONSchema{
			Type: "object",
			Properties: map[string]JSONSchema{
				"query": {
					Type:        "string",
					Description: "Words from the shortcut's title or URL.",
				},
				"k": {
					Type:        "integer",
					Description: "Maximum number of results to return (1-100).",
					Minimum:     &minK,
					Maximum:     &maxK,
					Default:     defaultK,
				},
				"hybrid": {
					Type:        "boolean",
					Description: "If true, fuse vector and lexical similarity. If false, use vector search only.",
					Default:     true,
				},
				"model": {
					Type:        "string",
					Description: "Optional: restrict vector search to one embedding model.",
				},
			},
			Required:             []string{"query"},
			AdditionalProperties: &falseVal,
		},
	}
}

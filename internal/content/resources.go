package content

import "github.com/ehlowr0ld/scratch-notebook-mcp/internal/mcp"

// --- scratchpad://data-model resource ---

// DataModelResource documents the pad/cell/namespace/schema shapes.
type DataModelResource struct{}

func (r *DataModelResource) Definition() mcp.ResourceDefinition {
	return mcp.ResourceDefinition{
		URI:         "scratchpad://data-model",
		Name:        "Scratchpad Data Model",
		Description: "Reference of the pad, cell, namespace, and schema-registry shapes and their fields",
		MimeType:    "text/markdown",
	}
}

func (r *DataModelResource) Read() (*mcp.ResourcesReadResult, error) {
	return &mcp.ResourcesReadResult{
		Contents: []mcp.ResourceContent{
			{
				URI:      "scratchpad://data-model",
				MimeType: "text/markdown",
				Text:     dataModelContent,
			},
		},
	}, nil
}

// --- scratchpad://tool-reference resource ---

// ToolReferenceResource exposes a quick-reference card for all scratch_* tools.
type ToolReferenceResource struct{}

func (r *ToolReferenceResource) Definition() mcp.ResourceDefinition {
	return mcp.ResourceDefinition{
		URI:         "scratchpad://tool-reference",
		Name:        "Scratchpad Tool Reference",
		Description: "Quick-reference card for all scratch_* tools with parameters and usage notes",
		MimeType:    "text/markdown",
	}
}

func (r *ToolReferenceResource) Read() (*mcp.ResourcesReadResult, error) {
	return &mcp.ResourcesReadResult{
		Contents: []mcp.ResourceContent{
			{
				URI:      "scratchpad://tool-reference",
				MimeType: "text/markdown",
				Text:     toolReferenceContent,
			},
		},
	}, nil
}

// --- Static content ---

const dataModelContent = `# Scratchpad Data Model

## Scratchpad ("pad")

A pad is the top-level, tenant-scoped container.

- **scratch_id** (string, UUID) — stable identifier, assigned on creation
- **namespace** (string) — groups related pads; defaults to ` + "`default`" + `
- **tags** ([]string) — free-form labels
- **metadata** (map[string]any) — caller-defined key/value data
- **created_at**, **last_access_at** (time)
- **cells** ([]Cell) — ordered content
- **schemas** (map[string]Schema) — pad-local named JSON Schema registry

## Cell

An ordered unit of content within a pad.

- **cell_id** (string) — unique within its pad
- **index** (int) — position in the pad's cell order
- **language** (string) — ` + "`json`" + `, ` + "`yaml`" + `/` + "`yml`" + `, ` + "`md`" + `, ` + "`txt`" + `, or a code dialect such as ` + "`py`" + `, ` + "`js`" + `, ` + "`ts`" + `, ` + "`go`" + `, ` + "`rs`" + `
- **content** (string)
- **tags** ([]string)
- **json_schema** (object, optional) — either an inline JSON Schema or a
  ` + "`{\"$ref\": \"scratchpad://schemas/<name>\"}`" + ` pointing at the pad's registry
- **validate** (bool) — when set on write, the response includes advisory
  validation diagnostics for the written cell

## Schema

A named JSON Schema scoped to one pad.

- **name** (string) — referenced as ` + "`scratchpad://schemas/<name>`" + `
- **description** (string, optional)
- **schema** (object) — the JSON Schema document

## Namespace

A logical grouping of pads within a tenant. Namespaces exist implicitly the
first time a pad references them, or can be created, renamed, and deleted
explicitly via the namespace tools.

## Tenant

Every operation is scoped to a tenant id, resolved by transport: the implicit
default tenant for stdio (the first configured principal once auth is
enabled), or the bearer-token-derived principal for HTTP. Pads, cells, tags, and schemas never cross tenant boundaries.
`

const toolReferenceContent = `# Scratchpad Tool Quick Reference

## Pads

### scratch_create
Create a new pad, optionally seeded with cells.
- **Optional**: namespace (string), tags ([]string), metadata (object), cells ([]Cell)

### scratch_read
Fetch a pad's full content.
- **Required**: scratch_id (string)
- **Optional**: cell_ids ([]string) — restrict to specific cells

### scratch_list
List pads for the tenant as lean summaries (no cell content).
- **Optional**: namespaces ([]string), tags ([]string), limit (int)

### scratch_delete
Delete a pad and its cells.
- **Required**: scratch_id (string)

## Cells

### scratch_list_cells
List a pad's cells as summaries (no content).
- **Required**: scratch_id (string)

### scratch_append_cell
Append a new cell to a pad.
- **Required**: scratch_id (string), cell (Cell, without index)
- **Optional**: cell.validate (bool)

### scratch_replace_cell
Replace an existing cell's content, optionally moving it.
- **Required**: scratch_id (string), cell_id (string), cell (Cell)
- **Optional**: new_index (int) — omit to keep the current position

## Validation

### scratch_validate
Run advisory validation over a pad's cells (or a subset by cell id).
- **Required**: scratch_id (string)
- **Optional**: cell_ids ([]string)
- Never mutates the pad; diagnostics are advisory only.

## Search

### scratch_search
Semantic search over cell content across the tenant's pads.
- **Required**: query (string)
- **Optional**: namespaces ([]string), tags ([]string), limit (int)
- Returns an error if semantic search is disabled on the server.

## Tags

### scratch_list_tags
List distinct tags in use, optionally restricted to namespaces.
- **Optional**: namespaces ([]string)

## Schemas

### scratch_upsert_schema
Create or update a named JSON Schema on a pad.
- **Required**: scratch_id (string), name (string), schema (object)
- **Optional**: description (string)

### scratch_get_schema
Fetch a single named schema from a pad.
- **Required**: scratch_id (string), name (string)

### scratch_list_schemas
List all schemas registered on a pad.
- **Required**: scratch_id (string)

## Namespaces

### scratch_namespace_create
- **Required**: name (string)

### scratch_namespace_list
- No parameters.

### scratch_namespace_delete
- **Required**: name (string)
- **Optional**: cascade (bool) — also delete the namespace's pads

### scratch_namespace_rename
- **Required**: from (string), to (string)
- **Optional**: migrate (bool) — move existing pads to the new name
`

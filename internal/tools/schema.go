package tools

import (
	"context"
	"encoding/json"

	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/mcp"
)

// --- scratch_upsert_schema ---

type upsertSchemaParams struct {
	ScratchID   string         `json:"scratch_id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Schema      map[string]any `json:"schema"`
}

// UpsertSchema implements scratch_upsert_schema: creates
// or overwrites a named entry in a pad's JSON-Schema registry, addressable
// from cell validation via a "scratchpad://schemas/<name>" $ref.
type UpsertSchema struct{ deps Deps }

func (t *UpsertSchema) Name() string { return "scratch_upsert_schema" }
func (t *UpsertSchema) Description() string {
	return "Create or replace a named JSON Schema in a scratchpad's schema registry. Cells may reference it via scratchpad://schemas/<name>."
}
func (t *UpsertSchema) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "scratch_id": {"type": "string"},
    "name": {"type": "string"},
    "description": {"type": "string"},
    "schema": {"type": "object"}
  },
  "required": ["scratch_id", "name", "schema"]
}`)
}

func (t *UpsertSchema) Execute(ctx context.Context, tenantID string, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p upsertSchemaParams
	if err := decodeParams(params, &p); err != nil {
		return badParams(err)
	}
	entry, err := t.deps.Store.UpsertSchema(ctx, tenantID, p.ScratchID, p.Name, p.Description, p.Schema)
	if err != nil {
		return nil, err
	}
	return mcp.JSONResult(map[string]any{"name": p.Name, "schema": entry})
}

// --- scratch_get_schema ---

type getSchemaParams struct {
	ScratchID string `json:"scratch_id"`
	Name      string `json:"name"`
}

// GetSchema implements scratch_get_schema.
type GetSchema struct{ deps Deps }

func (t *GetSchema) Name() string { return "scratch_get_schema" }
func (t *GetSchema) Description() string {
	return "Fetch one named schema from a scratchpad's schema registry."
}
func (t *GetSchema) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "scratch_id": {"type": "string"},
    "name": {"type": "string"}
  },
  "required": ["scratch_id", "name"]
}`)
}

func (t *GetSchema) Execute(ctx context.Context, tenantID string, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p getSchemaParams
	if err := decodeParams(params, &p); err != nil {
		return badParams(err)
	}
	entry, err := t.deps.Store.GetSchema(ctx, tenantID, p.ScratchID, p.Name)
	if err != nil {
		return nil, err
	}
	return mcp.JSONResult(map[string]any{"name": p.Name, "schema": entry})
}

// --- scratch_list_schemas ---

type listSchemasParams struct {
	ScratchID string `json:"scratch_id"`
}

// ListSchemas implements scratch_list_schemas.
type ListSchemas struct{ deps Deps }

func (t *ListSchemas) Name() string { return "scratch_list_schemas" }
func (t *ListSchemas) Description() string {
	return "List every named schema in a scratchpad's schema registry."
}
func (t *ListSchemas) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {"scratch_id": {"type": "string"}},
  "required": ["scratch_id"]
}`)
}

func (t *ListSchemas) Execute(ctx context.Context, tenantID string, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p listSchemasParams
	if err := decodeParams(params, &p); err != nil {
		return badParams(err)
	}
	schemas, err := t.deps.Store.ListSchemas(ctx, tenantID, p.ScratchID)
	if err != nil {
		return nil, err
	}
	return mcp.JSONResult(map[string]any{"schemas": schemas})
}

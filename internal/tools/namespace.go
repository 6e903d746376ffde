package tools

import (
	"context"
	"encoding/json"

	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/mcp"
)

// --- scratch_namespace_create ---

type namespaceCreateParams struct {
	Name string `json:"name"`
}

// NamespaceCreate implements scratch_namespace_create:
// registers a namespace explicitly, even with no pads in it yet.
type NamespaceCreate struct{ deps Deps }

func (t *NamespaceCreate) Name() string { return "scratch_namespace_create" }
func (t *NamespaceCreate) Description() string {
	return "Register a namespace so it exists even before any scratchpad uses it."
}
func (t *NamespaceCreate) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {"name": {"type": "string"}},
  "required": ["name"]
}`)
}

func (t *NamespaceCreate) Execute(ctx context.Context, tenantID string, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p namespaceCreateParams
	if err := decodeParams(params, &p); err != nil {
		return badParams(err)
	}
	if err := t.deps.Store.NamespaceCreate(ctx, tenantID, p.Name); err != nil {
		return nil, err
	}
	return mcp.JSONResult(map[string]any{"name": p.Name})
}

// --- scratch_namespace_list ---

// NamespaceList implements scratch_namespace_list.
type NamespaceList struct{ deps Deps }

func (t *NamespaceList) Name() string { return "scratch_namespace_list" }
func (t *NamespaceList) Description() string {
	return "List every registered namespace for the tenant."
}
func (t *NamespaceList) InputSchema() json.RawMessage {
	return json.RawMessage(`{"type": "object", "properties": {}}`)
}

func (t *NamespaceList) Execute(ctx context.Context, tenantID string, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	namespaces, err := t.deps.Store.NamespaceList(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return mcp.JSONResult(map[string]any{"namespaces": namespaces, "count": len(namespaces)})
}

// --- scratch_namespace_delete ---

type namespaceDeleteParams struct {
	Name    string `json:"name"`
	Cascade bool   `json:"cascade,omitempty"`
}

// NamespaceDelete implements scratch_namespace_delete. Without cascade, a
// namespace with pads in it fails with CONFLICT rather than silently
// orphaning them.
type NamespaceDelete struct{ deps Deps }

func (t *NamespaceDelete) Name() string { return "scratch_namespace_delete" }
func (t *NamespaceDelete) Description() string {
	return "Delete a namespace. If it still has scratchpads, pass cascade=true to delete them too; otherwise the call fails."
}
func (t *NamespaceDelete) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "name": {"type": "string"},
    "cascade": {"type": "boolean"}
  },
  "required": ["name"]
}`)
}

func (t *NamespaceDelete) Execute(ctx context.Context, tenantID string, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p namespaceDeleteParams
	if err := decodeParams(params, &p); err != nil {
		return badParams(err)
	}
	removed, err := t.deps.Store.NamespaceDelete(ctx, tenantID, p.Name, p.Cascade)
	if err != nil {
		return nil, err
	}
	return mcp.JSONResult(map[string]any{"name": p.Name, "pads_deleted": removed})
}

// --- scratch_namespace_rename ---

type namespaceRenameParams struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Migrate bool   `json:"migrate,omitempty"`
}

// NamespaceRename implements scratch_namespace_rename: when migrate is set, every pad under
// from moves to to in the same transaction as the registry update.
type NamespaceRename struct{ deps Deps }

func (t *NamespaceRename) Name() string { return "scratch_namespace_rename" }
func (t *NamespaceRename) Description() string {
	return "Rename a namespace. With migrate=true, every scratchpad currently in it is moved to the new name atomically."
}
func (t *NamespaceRename) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "from": {"type": "string"},
    "to": {"type": "string"},
    "migrate": {"type": "boolean"}
  },
  "required": ["from", "to"]
}`)
}

func (t *NamespaceRename) Execute(ctx context.Context, tenantID string, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p namespaceRenameParams
	if err := decodeParams(params, &p); err != nil {
		return badParams(err)
	}
	migrated, err := t.deps.Store.NamespaceRename(ctx, tenantID, p.From, p.To, p.Migrate)
	if err != nil {
		return nil, err
	}
	return mcp.JSONResult(map[string]any{"from": p.From, "to": p.To, "pads_migrated": migrated})
}

package tools

import (
	"context"
	"encoding/json"

	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/mcp"
	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/model"
	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/store"
)

// --- scratch_create ---

type createPadParams struct {
	ScratchID string         `json:"scratch_id,omitempty"`
	Namespace string         `json:"namespace,omitempty"`
	Tags      []string       `json:"tags,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Cells     []cellInput    `json:"cells,omitempty"`
}

// CreatePad implements scratch_create.
type CreatePad struct{ deps Deps }

func (t *CreatePad) Name() string { return "scratch_create" }
func (t *CreatePad) Description() string {
	return "Create a new scratchpad, optionally seeded with initial cells. Returns the lightweight pad view (no cell content)."
}
func (t *CreatePad) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "scratch_id": {"type": "string", "description": "Client-supplied id; omit to have the server generate one. Colliding with an existing id fails with INVALID_ID."},
    "namespace": {"type": "string", "description": "Namespace to create the pad in (default: \"default\")"},
    "tags": {"type": "array", "items": {"type": "string"}, "description": "Scratchpad-level tags"},
    "metadata": {"type": "object", "description": "Free-form metadata (title/description live here)"},
    "cells": {
      "type": "array",
      "description": "Initial cells, in order",
      "items": {
        "type": "object",
        "properties": {
          "language": {"type": "string"},
          "content": {"type": "string"},
          "validate": {"type": "boolean"},
          "json_schema": {},
          "metadata": {"type": "object"},
          "tags": {"type": "array", "items": {"type": "string"}}
        },
        "required": ["language", "content"]
      }
    }
  }
}`)
}

func (t *CreatePad) Execute(ctx context.Context, tenantID string, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p createPadParams
	if len(params) > 0 {
		if err := decodeParams(params, &p); err != nil {
			return badParams(err)
		}
	}

	cells := make([]model.Cell, len(p.Cells))
	for i, c := range p.Cells {
		cells[i] = c.toModelCell()
	}

	pad := &model.Scratchpad{
		ScratchID: p.ScratchID,
		TenantID:  tenantID,
		Namespace: p.Namespace,
		Tags:      model.NewStringSet(p.Tags),
		Metadata:  p.Metadata,
	}

	result, err := t.deps.Store.CreatePad(ctx, tenantID, pad, cells)
	if err != nil {
		return nil, err
	}

	light := result.Pad.ToLight()
	return mcp.JSONResult(map[string]any{
		"pad":     light,
		"evicted": result.Evicted,
	})
}

// --- scratch_read ---

type readPadParams struct {
	ScratchID       string   `json:"scratch_id"`
	CellIDs         []string `json:"cell_ids,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	Namespaces      []string `json:"namespaces,omitempty"`
	IncludeMetadata bool     `json:"include_metadata,omitempty"`
}

// ReadPad implements scratch_read. This is the one
// operation that returns full cell content.
type ReadPad struct{ deps Deps }

func (t *ReadPad) Name() string { return "scratch_read" }
func (t *ReadPad) Description() string {
	return "Read a scratchpad, including full cell content, optionally filtered by cell id, tag, or namespace."
}
func (t *ReadPad) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "scratch_id": {"type": "string"},
    "cell_ids": {"type": "array", "items": {"type": "string"}},
    "tags": {"type": "array", "items": {"type": "string"}},
    "namespaces": {"type": "array", "items": {"type": "string"}},
    "include_metadata": {"type": "boolean"}
  },
  "required": ["scratch_id"]
}`)
}

func (t *ReadPad) Execute(ctx context.Context, tenantID string, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p readPadParams
	if err := decodeParams(params, &p); err != nil {
		return badParams(err)
	}

	pad, err := t.deps.Store.ReadPad(ctx, tenantID, p.ScratchID, store.ReadView{
		CellIDs:         p.CellIDs,
		Tags:            p.Tags,
		Namespaces:      p.Namespaces,
		IncludeMetadata: p.IncludeMetadata,
	})
	if err != nil {
		return nil, err
	}
	return mcp.JSONResult(pad)
}

// --- scratch_list ---

type listPadsParams struct {
	Namespaces []string `json:"namespaces,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Limit      int      `json:"limit,omitempty"`
}

// ListPads implements scratch_list: lean rows,
// never cell content.
type ListPads struct{ deps Deps }

func (t *ListPads) Name() string { return "scratch_list" }
func (t *ListPads) Description() string {
	return "List scratchpads for the current tenant, optionally filtered by namespace or tag. Returns lean summaries, never cell content."
}
func (t *ListPads) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "namespaces": {"type": "array", "items": {"type": "string"}},
    "tags": {"type": "array", "items": {"type": "string"}},
    "limit": {"type": "integer"}
  }
}`)
}

func (t *ListPads) Execute(ctx context.Context, tenantID string, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p listPadsParams
	if len(params) > 0 {
		if err := decodeParams(params, &p); err != nil {
			return badParams(err)
		}
	}
	rows, err := t.deps.Store.ListPads(ctx, tenantID, p.Namespaces, p.Tags, p.Limit)
	if err != nil {
		return nil, err
	}
	return mcp.JSONResult(map[string]any{"pads": rows, "count": len(rows)})
}

// --- scratch_delete ---

type deletePadParams struct {
	ScratchID string `json:"scratch_id"`
}

// DeletePad implements scratch_delete: idempotent,
// deletes the pad's cells and embeddings atomically.
type DeletePad struct{ deps Deps }

func (t *DeletePad) Name() string { return "scratch_delete" }
func (t *DeletePad) Description() string {
	return "Delete a scratchpad and all of its cells. Idempotent: deleting an already-deleted pad succeeds with deleted=false."
}
func (t *DeletePad) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {"scratch_id": {"type": "string"}},
  "required": ["scratch_id"]
}`)
}

func (t *DeletePad) Execute(ctx context.Context, tenantID string, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p deletePadParams
	if err := decodeParams(params, &p); err != nil {
		return badParams(err)
	}
	deleted, err := t.deps.Store.DeletePad(ctx, tenantID, p.ScratchID)
	if err != nil {
		return nil, err
	}
	return mcp.JSONResult(map[string]any{"deleted": deleted, "scratch_id": p.ScratchID})
}

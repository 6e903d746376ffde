package tools

import (
	"context"
	"encoding/json"

	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/mcp"
)

// --- scratch_list_cells ---

type listCellsParams struct {
	ScratchID string   `json:"scratch_id"`
	CellIDs   []string `json:"cell_ids,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// ListCells implements scratch_list_cells: lean
// rows, never content.
type ListCells struct{ deps Deps }

func (t *ListCells) Name() string { return "scratch_list_cells" }
func (t *ListCells) Description() string {
	return "List a scratchpad's cells (id, index, language, tags, metadata), optionally filtered. Never returns content."
}
func (t *ListCells) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "scratch_id": {"type": "string"},
    "cell_ids": {"type": "array", "items": {"type": "string"}},
    "tags": {"type": "array", "items": {"type": "string"}}
  },
  "required": ["scratch_id"]
}`)
}

func (t *ListCells) Execute(ctx context.Context, tenantID string, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p listCellsParams
	if err := decodeParams(params, &p); err != nil {
		return badParams(err)
	}
	cells, err := t.deps.Store.ListCells(ctx, tenantID, p.ScratchID, p.CellIDs, p.Tags)
	if err != nil {
		return nil, err
	}
	return mcp.JSONResult(map[string]any{"cells": cells, "count": len(cells)})
}

// --- scratch_append_cell ---

type appendCellParams struct {
	ScratchID string    `json:"scratch_id"`
	Cell      cellInput `json:"cell"`
}

// AppendCell implements scratch_append_cell. If
// cell.validate is set, the cell is advisory-validated before returning,
// and diagnostics are included in the response but never block the write.
type AppendCell struct{ deps Deps }

func (t *AppendCell) Name() string { return "scratch_append_cell" }
func (t *AppendCell) Description() string {
	return "Append a new cell to the end of a scratchpad. Returns the lightweight pad view and, if cell.validate is set, advisory validation diagnostics."
}
func (t *AppendCell) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "scratch_id": {"type": "string"},
    "cell": {
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
  },
  "required": ["scratch_id", "cell"]
}`)
}

func (t *AppendCell) Execute(ctx context.Context, tenantID string, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p appendCellParams
	if err := decodeParams(params, &p); err != nil {
		return badParams(err)
	}

	result, err := t.deps.Store.AppendCell(ctx, tenantID, p.ScratchID, p.Cell.toModelCell())
	if err != nil {
		return nil, err
	}

	out := map[string]any{"pad": result.Pad.ToLight()}
	if result.Added.Validate {
		lookup := t.deps.schemaLookupFor(ctx, tenantID, p.ScratchID)
		if v, err := t.deps.Pipeline.ValidateCell(ctx, result.Added, lookup); err == nil {
			out["validation"] = v
		} else {
			out["validation_error"] = err.Error()
		}
	}
	return mcp.JSONResult(out)
}

// --- scratch_replace_cell ---

type replaceCellParams struct {
	ScratchID string    `json:"scratch_id"`
	CellID    string    `json:"cell_id"`
	Cell      cellInput `json:"cell"`
	NewIndex  *int      `json:"new_index,omitempty"`
}

// ReplaceCell implements scratch_replace_cell: replaces a cell's content and, when new_index is
// given, its position.
type ReplaceCell struct{ deps Deps }

func (t *ReplaceCell) Name() string { return "scratch_replace_cell" }
func (t *ReplaceCell) Description() string {
	return "Replace a cell's content, and optionally reposition it via new_index. Returns the lightweight pad view."
}
func (t *ReplaceCell) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "scratch_id": {"type": "string"},
    "cell_id": {"type": "string"},
    "cell": {
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
    },
    "new_index": {"type": "integer", "description": "Target position; omit to keep the current position"}
  },
  "required": ["scratch_id", "cell_id", "cell"]
}`)
}

func (t *ReplaceCell) Execute(ctx context.Context, tenantID string, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p replaceCellParams
	if err := decodeParams(params, &p); err != nil {
		return badParams(err)
	}

	newIndex := -1
	if p.NewIndex != nil {
		newIndex = *p.NewIndex
	}

	result, err := t.deps.Store.ReplaceCell(ctx, tenantID, p.ScratchID, p.CellID, p.Cell.toModelCell(), newIndex)
	if err != nil {
		return nil, err
	}

	out := map[string]any{"pad": result.Pad.ToLight()}
	if result.Added.Validate {
		lookup := t.deps.schemaLookupFor(ctx, tenantID, p.ScratchID)
		if v, err := t.deps.Pipeline.ValidateCell(ctx, result.Added, lookup); err == nil {
			out["validation"] = v
		} else {
			out["validation_error"] = err.Error()
		}
	}
	return mcp.JSONResult(out)
}

package tools

import (
	"context"
	"encoding/json"

	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/mcp"
	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/store"
)

type validateCellsParams struct {
	ScratchID string   `json:"scratch_id"`
	CellIDs   []string `json:"cell_ids,omitempty"`
}

// ValidateCells implements scratch_validate: advisory, best-effort
// validation against a cell's own content and, where applicable, the
// pad's schema registry. Never mutates, never blocks.
type ValidateCells struct{ deps Deps }

func (t *ValidateCells) Name() string { return "scratch_validate" }
func (t *ValidateCells) Description() string {
	return "Run advisory validation over a scratchpad's cells (or a subset by cell_id), returning per-cell diagnostics. Validation is best-effort and never mutates the pad."
}
func (t *ValidateCells) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "scratch_id": {"type": "string"},
    "cell_ids": {"type": "array", "items": {"type": "string"}, "description": "Restrict validation to these cells; omit to validate every cell"}
  },
  "required": ["scratch_id"]
}`)
}

func (t *ValidateCells) Execute(ctx context.Context, tenantID string, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p validateCellsParams
	if err := decodeParams(params, &p); err != nil {
		return badParams(err)
	}

	pad, err := t.deps.Store.ReadPad(ctx, tenantID, p.ScratchID, store.ReadView{CellIDs: p.CellIDs})
	if err != nil {
		return nil, err
	}

	lookup := t.deps.schemaLookupFor(ctx, tenantID, p.ScratchID)
	results, err := t.deps.Pipeline.ValidateCells(ctx, pad.Cells, lookup)
	if err != nil {
		return nil, err
	}
	return mcp.JSONResult(map[string]any{"results": results})
}

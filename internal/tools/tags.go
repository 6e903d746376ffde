package tools

import (
	"context"
	"encoding/json"

	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/mcp"
)

type listTagsParams struct {
	Namespaces []string `json:"namespaces,omitempty"`
}

// ListTags implements scratch_list_tags:
// scratchpad-level and cell-level tags, aggregated across a tenant's pads.
type ListTags struct{ deps Deps }

func (t *ListTags) Name() string { return "scratch_list_tags" }
func (t *ListTags) Description() string {
	return "List every scratchpad-level and cell-level tag in use for the tenant, optionally restricted to some namespaces."
}
func (t *ListTags) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "namespaces": {"type": "array", "items": {"type": "string"}}
  }
}`)
}

func (t *ListTags) Execute(ctx context.Context, tenantID string, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p listTagsParams
	if len(params) > 0 {
		if err := decodeParams(params, &p); err != nil {
			return badParams(err)
		}
	}
	listing, err := t.deps.Store.ListTags(ctx, tenantID, p.Namespaces)
	if err != nil {
		return nil, err
	}
	return mcp.JSONResult(listing)
}

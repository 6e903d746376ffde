package tools

import (
	"context"
	"encoding/json"

	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/errs"
	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/mcp"
)

type searchPadsParams struct {
	Query      string   `json:"query"`
	Namespaces []string `json:"namespaces,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Limit      int      `json:"limit,omitempty"`
}

// SearchPads implements scratch_search: semantic search over
// cell embeddings, restricted to the caller's tenant and filtered by
// namespace/tag before the top-k cut. Degrades to a clear error, not a
// panic, when semantic search is disabled.
type SearchPads struct{ deps Deps }

func (t *SearchPads) Name() string { return "scratch_search" }
func (t *SearchPads) Description() string {
	return "Semantic search over cell content across the tenant's scratchpads, optionally filtered by namespace or tag."
}
func (t *SearchPads) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "query": {"type": "string"},
    "namespaces": {"type": "array", "items": {"type": "string"}},
    "tags": {"type": "array", "items": {"type": "string"}},
    "limit": {"type": "integer"}
  },
  "required": ["query"]
}`)
}

func (t *SearchPads) Execute(ctx context.Context, tenantID string, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	if t.deps.Search == nil {
		return nil, errs.NewValidationError("semantic search is disabled on this server")
	}
	var p searchPadsParams
	if err := decodeParams(params, &p); err != nil {
		return badParams(err)
	}

	limit := p.Limit
	if limit <= 0 || (t.deps.SemanticSearchLimit > 0 && limit > t.deps.SemanticSearchLimit) {
		limit = t.deps.SemanticSearchLimit
	}

	hits, err := t.deps.Search.Search(ctx, tenantID, p.Query, p.Namespaces, p.Tags, limit)
	if err != nil {
		return nil, err
	}
	return mcp.JSONResult(map[string]any{"hits": hits, "count": len(hits)})
}

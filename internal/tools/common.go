// Package tools implements the MCP tool surface: one
// mcp.Tool per scratchpad operation, wiring together the catalog store
// (component B), the validation pipeline (component C), and the
// semantic-search engine (component E). Mutating operations always
// return the lightweight pad view — cell ids, indices, tags, metadata —
// never cell content.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/mcp"
	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/model"
	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/search"
	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/store"
	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/validate"
)

// Deps bundles the components every tool needs. Search is nil when
// semantic search is disabled;
// tools that need it degrade to a VALIDATION_ERROR-shaped refusal rather
// than a nil dereference.
type Deps struct {
	Store              *store.Store
	Pipeline           *validate.Pipeline
	Search             *search.Engine
	SemanticSearchLimit int
}

// Register adds every scratchpad tool to registry.
func Register(registry *mcp.Registry, deps Deps) {
	registry.Register(&CreatePad{deps})
	registry.Register(&ReadPad{deps})
	registry.Register(&ListPads{deps})
	registry.Register(&DeletePad{deps})
	registry.Register(&ListCells{deps})
	registry.Register(&AppendCell{deps})
	registry.Register(&ReplaceCell{deps})
	registry.Register(&ValidateCells{deps})
	registry.Register(&SearchPads{deps})
	registry.Register(&ListTags{deps})
	registry.Register(&UpsertSchema{deps})
	registry.Register(&GetSchema{deps})
	registry.Register(&ListSchemas{deps})
	registry.Register(&NamespaceCreate{deps})
	registry.Register(&NamespaceList{deps})
	registry.Register(&NamespaceDelete{deps})
	registry.Register(&NamespaceRename{deps})
}

// badParams reports a malformed request body as an in-band tool error
// rather than a Go error: the request never reached a domain operation,
// so there's nothing for handleToolsCall's error path to log or
// attribute a metric to.
func badParams(err error) (*mcp.ToolsCallResult, error) {
	return mcp.ErrorResult(fmt.Sprintf("invalid parameters: %v", err)), nil
}

// cellInput is the wire shape of a cell in request params. It converts to
// model.Cell via toModelCell.
type cellInput struct {
	CellID     string         `json:"cell_id,omitempty"`
	Language   string         `json:"language"`
	Content    string         `json:"content"`
	Validate   bool           `json:"validate,omitempty"`
	JSONSchema any            `json:"json_schema,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Tags       []string       `json:"tags,omitempty"`
}

func (c cellInput) toModelCell() model.Cell {
	return model.Cell{
		CellID:     c.CellID,
		Language:   model.Language(c.Language),
		Content:    c.Content,
		Validate:   c.Validate,
		JSONSchema: c.JSONSchema,
		Metadata:   c.Metadata,
		Tags:       model.NewStringSet(c.Tags),
	}
}

// schemaLookupFor builds a validate.SchemaLookup resolving
// "scratchpad://schemas/<name>" refs against one pad's registry;
// $ref resolution is always pad-scoped.
func (d Deps) schemaLookupFor(ctx context.Context, tenantID, scratchID string) validate.SchemaLookup {
	return func(name string) (map[string]any, bool) {
		entry, err := d.Store.GetSchema(ctx, tenantID, scratchID, name)
		if err != nil || entry == nil {
			return nil, false
		}
		return entry.Schema, true
	}
}

func decodeParams(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return fmt.Errorf("missing parameters")
	}
	return json.Unmarshal(raw, v)
}

// Package content provides the MCP prompts and resources bundled with the
// scratchpad server: onboarding guidance and a tool quick
// reference, surfaced through the same registry the tool handlers use.
package content

import "github.com/ehlowr0ld/scratch-notebook-mcp/internal/mcp"

// GuidePrompt walks an LLM client through the scratchpad lifecycle.
type GuidePrompt struct{}

func (p *GuidePrompt) Definition() mcp.PromptDefinition {
	return mcp.PromptDefinition{
		Name:        "scratchmcp-guide",
		Description: "Usage guide for the scratchpad tools: creating pads, appending cells, validating content, and searching.",
		Arguments:   []mcp.PromptArgument{},
	}
}

func (p *GuidePrompt) Get(arguments map[string]string) (*mcp.PromptsGetResult, error) {
	return &mcp.PromptsGetResult{
		Description: "Guide for using the scratchpad tools",
		Messages: []mcp.PromptMessage{
			{Role: "user", Content: mcp.TextContent(guideText)},
		},
	}, nil
}

const guideText = `# Scratchpad tools

A scratchpad ("pad") is an ordered list of cells — small units of content
(code, JSON, markdown, plain text) — scoped to a namespace and tagged for
later lookup.

## Typical flow

1. ` + "`scratch_create`" + ` — start a pad, optionally seeded with cells.
2. ` + "`scratch_append_cell`" + ` / ` + "`scratch_replace_cell`" + ` — add or edit cells.
   Set ` + "`cell.validate`" + ` to get advisory diagnostics back in the response;
   validation never blocks the write.
3. ` + "`scratch_read`" + ` — fetch full cell content, optionally filtered by
   cell id, tag, or namespace.
4. ` + "`scratch_list`" + ` / ` + "`scratch_list_cells`" + ` — lean summaries (no content),
   for browsing without paying for large payloads.
5. ` + "`scratch_search`" + ` — semantic search across a tenant's cells, when
   semantic search is enabled on the server.

## Schemas

A pad can carry named JSON Schemas (` + "`scratch_upsert_schema`" + `). Cells
reference one via ` + "`json_schema: {\"$ref\": \"scratchpad://schemas/<name>\"}`" + `
and ` + "`scratch_validate`" + ` resolves it against that pad's registry.

## Namespaces

Namespaces group pads and can be created empty, renamed (optionally
migrating their pads), or deleted (optionally cascading to their pads).
`

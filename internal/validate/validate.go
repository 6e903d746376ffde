// Package validate implements the advisory, language-aware content
// validation pipeline: json/yaml/code/markdown/text
// dispatch, a $ref schema resolver, and per-request timeout bounding.
// Validate is pure and side-effect-free; diagnostics never block
// persistence (spec's "Advisory rule").
package validate

import (
	"context"

	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/model"
)

// Cell validates a single cell and always returns a result — even for
// unknown/unsupported languages — it never crashes.
func Cell(ctx context.Context, cell model.Cell, lookup SchemaLookup) model.ValidationResult {
	var res model.ValidationResult
	switch cell.Language {
	case model.LangJSON:
		res = validateJSON(cell.Content, cell.JSONSchema, lookup)
	case model.LangYAML, model.LangYML:
		res = validateYAML(cell.Language, cell.Content, cell.JSONSchema, lookup)
	case model.LangMD:
		res = validateMarkdown(cell.Content)
	case model.LangTXT:
		res = model.ValidationResult{
			Language: model.LangTXT,
			Valid:    true,
			Details:  map[string]any{"reason": "no validation performed"},
		}
	default:
		if cell.Language.IsCode() {
			res = validateCode(ctx, cell.Language, cell.Content)
		} else {
			res = model.ValidationResult{
				Language: cell.Language,
				Valid:    true,
				Details:  map[string]any{"reason": "not validated"},
			}
		}
	}
	res.CellID = cell.CellID
	res.Index = cell.Index
	return res
}

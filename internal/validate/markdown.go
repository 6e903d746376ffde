package validate

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/model"
)

// validateMarkdown reports warnings only,
// never invalid unless the analyzer reports a fatal structural failure
// (which goldmark's streaming parser never does for arbitrary text — it
// degrades gracefully — so this path is effectively warning-only).
func validateMarkdown(content string) model.ValidationResult {
	res := model.ValidationResult{Language: model.LangMD, Valid: true}

	source := []byte(content)
	reader := text.NewReader(source)
	doc := goldmark.DefaultParser().Parse(reader)

	var headingCount, linkCount, emptyHeadingCount int

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Heading:
			headingCount++
			if t.Lines().Len() == 0 && t.ChildCount() == 0 {
				emptyHeadingCount++
			}
		case *ast.Link:
			linkCount++
			if len(t.Destination) == 0 {
				res.Warnings = append(res.Warnings, model.Diagnostic{
					Message: "link has an empty destination",
					Code:    "MARKDOWN_EMPTY_LINK",
				})
			}
		}
		return ast.WalkContinue, nil
	})

	if emptyHeadingCount > 0 {
		res.Warnings = append(res.Warnings, model.Diagnostic{
			Message: "document contains empty heading(s)",
			Code:    "MARKDOWN_EMPTY_HEADING",
		})
	}

	res.Details = map[string]any{
		"analysis": map[string]any{
			"headings": headingCount,
			"links":    linkCount,
		},
	}
	return res
}

package validate

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/css"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/html"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/php"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/toml"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/model"
)

// grammarFor maps a cell language to a tree-sitter grammar, when the
// syntax checker supports that dialect. A
// language absent from this table degrades to the "not validated" path
// rather than crashing.
func grammarFor(lang model.Language) *sitter.Language {
	switch lang {
	case model.LangPY:
		return python.GetLanguage()
	case model.LangJS, model.LangJSX:
		return javascript.GetLanguage()
	case model.LangTS:
		return typescript.GetLanguage()
	case model.LangTSX:
		return tsx.GetLanguage()
	case model.LangRS:
		return rust.GetLanguage()
	case model.LangC, model.LangH:
		return c.GetLanguage()
	case model.LangCPP, model.LangHPP:
		return cpp.GetLanguage()
	case model.LangSH:
		return bash.GetLanguage()
	case model.LangCSS:
		return css.GetLanguage()
	case model.LangHTML, model.LangHTM:
		return html.GetLanguage()
	case model.LangJAVA:
		return java.GetLanguage()
	case model.LangGO:
		return golang.GetLanguage()
	case model.LangRB:
		return ruby.GetLanguage()
	case model.LangTOML:
		return toml.GetLanguage()
	case model.LangPHP:
		return php.GetLanguage()
	case model.LangCS:
		return csharp.GetLanguage()
	default:
		return nil
	}
}

// validateCode parses with the matching tree-sitter grammar and walks
// the tree for ERROR/MISSING nodes, which become errors; unsupported
// dialects degrade to details.reason = "not validated" rather than
// crashing.
func validateCode(ctx context.Context, lang model.Language, content string) model.ValidationResult {
	res := model.ValidationResult{Language: lang, Valid: true}

	grammar := grammarFor(lang)
	if grammar == nil {
		res.Details = map[string]any{"reason": "not validated"}
		return res
	}

	parser := sitter.NewParser()
	parser.SetLanguage(grammar)
	tree, err := parser.ParseCtx(ctx, nil, []byte(content))
	if err != nil {
		// Parser offload was cancelled/timed out upstream; let the caller
		// (which owns the deadline) decide how to report it.
		res.Details = map[string]any{"reason": "not validated", "cause": err.Error()}
		return res
	}
	defer tree.Close()

	var diags []model.Diagnostic
	walkForErrors(tree.RootNode(), &diags)
	if len(diags) > 0 {
		res.Valid = false
		res.Errors = diags
	}
	res.Details = map[string]any{"syntax": map[string]any{"node_count": int(tree.RootNode().ChildCount())}}
	return res
}

// walkForErrors recursively collects tree-sitter ERROR/MISSING nodes,
// which mark syntax the grammar could not parse, as fatal diagnostics.
func walkForErrors(n *sitter.Node, out *[]model.Diagnostic) {
	if n == nil {
		return
	}
	if n.IsError() || n.IsMissing() {
		start := n.StartPoint()
		kind := "unexpected syntax"
		if n.IsMissing() {
			kind = "missing syntax: " + n.Type()
		}
		*out = append(*out, model.Diagnostic{
			Message: kind,
			Code:    "SYNTAX_ERROR",
			Line:    int(start.Row) + 1,
			Column:  int(start.Column) + 1,
		})
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		walkForErrors(n.Child(i), out)
	}
}

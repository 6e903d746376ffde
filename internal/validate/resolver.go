package validate

import (
	"encoding/json"
	"strings"

	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/model"
)

const schemaRefPrefix = "scratchpad://schemas/"

// SchemaLookup resolves a named entry from the owning pad's schema
// registry.
type SchemaLookup func(name string) (map[string]any, bool)

// resolveSchema turns a cell's json_schema field — an inline object, a
// string to parse as JSON, or a scratchpad://schemas/<name> reference —
// into a concrete schema map. An unresolved/missing $ref produces a
// warning, never an error, and validation proceeds without a schema.
func resolveSchema(raw any, lookup SchemaLookup) (map[string]any, []model.Diagnostic) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		if ref, ok := v["$ref"].(string); ok && len(v) == 1 {
			return resolveRef(ref, lookup)
		}
		return v, nil
	case string:
		var parsed map[string]any
		if err := json.Unmarshal([]byte(v), &parsed); err != nil {
			return nil, []model.Diagnostic{{
				Message: "json_schema string is not valid JSON: " + err.Error(),
				Code:    "INVALID_SCHEMA",
			}}
		}
		if ref, ok := parsed["$ref"].(string); ok && len(parsed) == 1 {
			return resolveRef(ref, lookup)
		}
		return parsed, nil
	default:
		return nil, []model.Diagnostic{{Message: "json_schema must be an object, a JSON string, or a $ref", Code: "INVALID_SCHEMA"}}
	}
}

func resolveRef(ref string, lookup SchemaLookup) (map[string]any, []model.Diagnostic) {
	if !strings.HasPrefix(ref, schemaRefPrefix) {
		return nil, []model.Diagnostic{{
			Message: "unsupported schema reference scheme: " + ref,
			Code:    "UNRESOLVED_SCHEMA_REF",
			Ref:     ref,
		}}
	}
	name := strings.TrimPrefix(ref, schemaRefPrefix)
	if lookup == nil {
		return nil, []model.Diagnostic{{
			Message: "schema registry unavailable to resolve " + ref,
			Code:    "UNRESOLVED_SCHEMA_REF",
			Ref:     name,
		}}
	}
	schema, ok := lookup(name)
	if !ok {
		return nil, []model.Diagnostic{{
			Message: "schema " + name + " not found in scratchpad registry",
			Code:    "UNRESOLVED_SCHEMA_REF",
			Ref:     name,
		}}
	}
	return schema, nil
}

package validate

import (
	"github.com/goccy/go-yaml"

	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/model"
)

// validateYAML safe-loads the content, then validates against
// json_schema if present, over the decoded object.
func validateYAML(language model.Language, content string, rawSchema any, lookup SchemaLookup) model.ValidationResult {
	res := model.ValidationResult{Language: language, Valid: true}

	var instance any
	if err := yaml.Unmarshal([]byte(content), &instance); err != nil {
		res.Valid = false
		res.Errors = append(res.Errors, model.Diagnostic{
			Message: "invalid YAML: " + err.Error(),
			Code:    "YAML_PARSE_ERROR",
		})
		return res
	}
	instance = normalizeYAMLValue(instance)

	if rawSchema == nil {
		return res
	}
	schemaMap, warnings := resolveSchema(rawSchema, lookup)
	res.Warnings = append(res.Warnings, warnings...)
	if schemaMap == nil {
		return res
	}
	if errs := validateAgainstSchema(schemaMap, instance); len(errs) > 0 {
		res.Valid = false
		res.Errors = append(res.Errors, errs...)
	}
	return res
}

// normalizeYAMLValue recursively converts map[any]any produced by some
// YAML decoders into map[string]any so the JSON Schema validator (which
// only understands JSON-shaped values) can walk it.
func normalizeYAMLValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalizeYAMLValue(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if ks, ok := k.(string); ok {
				out[ks] = normalizeYAMLValue(val)
			}
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeYAMLValue(val)
		}
		return out
	default:
		return v
	}
}

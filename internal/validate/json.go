package validate

import (
	"encoding/json"

	jsonschema "github.com/google/jsonschema-go/jsonschema"

	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/model"
)

// validateJSON parses the content, then validates against json_schema
// if present.
func validateJSON(content string, rawSchema any, lookup SchemaLookup) model.ValidationResult {
	res := model.ValidationResult{Language: model.LangJSON, Valid: true}

	var instance any
	if err := json.Unmarshal([]byte(content), &instance); err != nil {
		res.Valid = false
		res.Errors = append(res.Errors, model.Diagnostic{
			Message: "invalid JSON: " + err.Error(),
			Code:    "JSON_PARSE_ERROR",
		})
		return res
	}

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

// validateAgainstSchema compiles schemaMap with google/jsonschema-go and
// validates instance against it, translating failures into diagnostics.
func validateAgainstSchema(schemaMap map[string]any, instance any) []model.Diagnostic {
	raw, err := json.Marshal(schemaMap)
	if err != nil {
		return []model.Diagnostic{{Message: "schema is not serializable: " + err.Error(), Code: "INVALID_SCHEMA"}}
	}

	var schema jsonschema.Schema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return []model.Diagnostic{{Message: "schema does not parse as a JSON Schema: " + err.Error(), Code: "INVALID_SCHEMA"}}
	}

	resolved, err := schema.Resolve(nil)
	if err != nil {
		return []model.Diagnostic{{Message: "schema failed to resolve: " + err.Error(), Code: "SCHEMA_RESOLVE_ERROR"}}
	}

	if err := resolved.Validate(instance); err != nil {
		return []model.Diagnostic{{Message: err.Error(), Code: "SCHEMA_MISMATCH"}}
	}
	return nil
}

// SchemaPayload checks that a raw upsert_schema payload structurally
// parses as a JSON Schema: this is the one place a malformed schema is a
// hard VALIDATION_ERROR rather than a diagnostic, because it is the
// request's own structure, not cell content.
func SchemaPayload(schemaMap map[string]any) error {
	raw, err := json.Marshal(schemaMap)
	if err != nil {
		return err
	}
	var schema jsonschema.Schema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return err
	}
	_, err = schema.Resolve(nil)
	return err
}

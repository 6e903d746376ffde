package store

import (
	"context"

	bolt "go.etcd.io/bbolt"

	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/errs"
	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/model"
	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/validate"
)

const schemasMetaKey = "schemas"

// UpsertSchema creates or overwrites a named entry in a pad's schema
// registry, embedded in the pad's metadata map. The
// schema payload must structurally parse as a JSON Schema (a map), or the
// call fails with VALIDATION_ERROR — the one place schema-shape checking
// is a hard error rather than an advisory diagnostic.
func (s *Store) UpsertSchema(ctx context.Context, tenantID, scratchID, name, description string, schema map[string]any) (*model.SchemaEntry, error) {
	if schema == nil {
		return nil, errs.NewValidationError("schema payload must be a JSON object")
	}
	if err := validate.SchemaPayload(schema); err != nil {
		return nil, errs.NewValidationError("schema does not structurally parse as a JSON Schema: %v", err)
	}
	var entry model.SchemaEntry
	err := s.db.Update(func(tx *bolt.Tx) error {
		row, _, err := loadPadLocked(tx, tenantID, scratchID)
		if err != nil {
			return err
		}
		if row.Metadata == nil {
			row.Metadata = map[string]any{}
		}
		schemas, _ := row.Metadata[schemasMetaKey].(map[string]any)
		if schemas == nil {
			schemas = map[string]any{}
		}
		id := newID()
		if existing, ok := schemas[name].(map[string]any); ok {
			if existingID, ok := existing["id"].(string); ok && existingID != "" {
				id = existingID
			}
		}
		entry = model.SchemaEntry{ID: id, Description: description, Schema: schema}
		schemas[name] = map[string]any{"id": entry.ID, "description": entry.Description, "schema": entry.Schema}
		row.Metadata[schemasMetaKey] = schemas
		row.LastAccessAt = nowFunc()
		return tx.Bucket([]byte(bucketPads)).Put(padKey(tenantID, scratchID), marshal(row))
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetSchema looks up a named registry entry.
func (s *Store) GetSchema(ctx context.Context, tenantID, scratchID, name string) (*model.SchemaEntry, error) {
	var entry *model.SchemaEntry
	err := s.db.View(func(tx *bolt.Tx) error {
		row, _, err := loadPadLocked(tx, tenantID, scratchID)
		if err != nil {
			return err
		}
		entry = lookupSchema(row.Metadata, name)
		if entry == nil {
			return errs.NewNotFound("schema %q not found in scratchpad %q", name, scratchID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// ListSchemas returns every registry entry for a pad.
func (s *Store) ListSchemas(ctx context.Context, tenantID, scratchID string) (map[string]model.SchemaEntry, error) {
	out := map[string]model.SchemaEntry{}
	err := s.db.View(func(tx *bolt.Tx) error {
		row, _, err := loadPadLocked(tx, tenantID, scratchID)
		if err != nil {
			return err
		}
		schemas, _ := row.Metadata[schemasMetaKey].(map[string]any)
		for name := range schemas {
			if e := lookupSchema(row.Metadata, name); e != nil {
				out[name] = *e
			}
		}
		return nil
	})
	return out, err
}

func lookupSchema(metadata map[string]any, name string) *model.SchemaEntry {
	schemas, _ := metadata[schemasMetaKey].(map[string]any)
	raw, ok := schemas[name].(map[string]any)
	if !ok {
		return nil
	}
	entry := model.SchemaEntry{}
	if id, ok := raw["id"].(string); ok {
		entry.ID = id
	}
	if desc, ok := raw["description"].(string); ok {
		entry.Description = desc
	}
	if sch, ok := raw["schema"].(map[string]any); ok {
		entry.Schema = sch
	}
	return &entry
}

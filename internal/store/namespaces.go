package store

import (
	"context"
	"encoding/json"

	bolt "go.etcd.io/bbolt"

	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/errs"
	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/model"
)

// ensureNamespaceLocked pre-seeds the namespace registry row for ns if it
// doesn't already exist, inside an already-open write transaction. A
// namespace is "a lightweight label plus a registry row so it may exist
// without pads".
func (s *Store) ensureNamespaceLocked(tx *bolt.Tx, tenantID, ns string) error {
	nsB := tx.Bucket([]byte(bucketNamespaces))
	key := namespaceKey(tenantID, ns)
	if nsB.Get(key) != nil {
		return nil
	}
	row := namespaceRow{TenantID: tenantID, Name: ns, CreatedAt: nowFunc()}
	return nsB.Put(key, marshal(row))
}

// NamespaceCreate explicitly registers a namespace, even with no pads.
func (s *Store) NamespaceCreate(ctx context.Context, tenantID, name string) error {
	if name == "" {
		return errs.NewValidationError("namespace name must not be empty")
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return s.ensureNamespaceLocked(tx, tenantID, name)
	})
}

// NamespaceList returns every registered namespace for a tenant.
func (s *Store) NamespaceList(ctx context.Context, tenantID string) ([]model.Namespace, error) {
	var out []model.Namespace
	err := s.db.View(func(tx *bolt.Tx) error {
		nsB := tx.Bucket([]byte(bucketNamespaces))
		c := nsB.Cursor()
		prefix := namespaceKeyPrefix(tenantID)
		for k, v := c.Seek(prefix); k != nil && hasPrefix(k, prefix); k, v = c.Next() {
			var row namespaceRow
			if err := json.Unmarshal(v, &row); err != nil {
				return err
			}
			out = append(out, model.Namespace{TenantID: row.TenantID, Name: row.Name, CreatedAt: row.CreatedAt})
		}
		return nil
	})
	return out, err
}

// NamespaceDelete removes a namespace registry row. If cascade is true,
// every pad currently in that namespace is deleted too, all within one
// transaction; otherwise a namespace with pads in it fails with CONFLICT.
func (s *Store) NamespaceDelete(ctx context.Context, tenantID, name string, cascade bool) (int, error) {
	var removed int
	err := s.db.Update(func(tx *bolt.Tx) error {
		padsB := tx.Bucket([]byte(bucketPads))
		cellsB := tx.Bucket([]byte(bucketCells))
		embB := tx.Bucket([]byte(bucketEmbeddings))

		var victims []string
		c := padsB.Cursor()
		prefix := padKeyPrefix(tenantID)
		for k, v := c.Seek(prefix); k != nil && hasPrefix(k, prefix); k, v = c.Next() {
			var row padRow
			if err := json.Unmarshal(v, &row); err != nil {
				return err
			}
			if row.Namespace == name {
				victims = append(victims, row.ScratchID)
			}
		}
		if len(victims) > 0 && !cascade {
			return errs.NewConflict("namespace %q has %d scratchpad(s); pass cascade to delete them", name, len(victims))
		}
		for _, id := range victims {
			if err := deletePadLocked(padsB, cellsB, embB, tenantID, id); err != nil {
				return err
			}
		}
		removed = len(victims)

		nsB := tx.Bucket([]byte(bucketNamespaces))
		return nsB.Delete(namespaceKey(tenantID, name))
	})
	return removed, err
}

// NamespaceRename renames a namespace. When migrate is true, every pad
// under from is rewritten to to in the same transaction as the registry
// row update.
func (s *Store) NamespaceRename(ctx context.Context, tenantID, from, to string, migrate bool) (int, error) {
	var migrated int
	err := s.db.Update(func(tx *bolt.Tx) error {
		nsB := tx.Bucket([]byte(bucketNamespaces))
		if nsB.Get(namespaceKey(tenantID, to)) != nil {
			return errs.NewConflict("namespace %q already exists", to)
		}

		padsB := tx.Bucket([]byte(bucketPads))
		if migrate {
			c := padsB.Cursor()
			prefix := padKeyPrefix(tenantID)
			var keys [][]byte
			var rows []padRow
			for k, v := c.Seek(prefix); k != nil && hasPrefix(k, prefix); k, v = c.Next() {
				var row padRow
				if err := json.Unmarshal(v, &row); err != nil {
					return err
				}
				if row.Namespace == from {
					keys = append(keys, append([]byte(nil), k...))
					row.Namespace = to
					rows = append(rows, row)
				}
			}
			for i, k := range keys {
				if err := padsB.Put(k, marshal(rows[i])); err != nil {
					return err
				}
			}
			migrated = len(keys)

			embB := tx.Bucket([]byte(bucketEmbeddings))
			for _, row := range rows {
				if err := rewriteEmbeddingNamespaceLocked(embB, tenantID, row.ScratchID, to); err != nil {
					return err
				}
			}
		}

		if raw := nsB.Get(namespaceKey(tenantID, from)); raw != nil {
			if err := nsB.Delete(namespaceKey(tenantID, from)); err != nil {
				return err
			}
		}
		row := namespaceRow{TenantID: tenantID, Name: to, CreatedAt: nowFunc()}
		return nsB.Put(namespaceKey(tenantID, to), marshal(row))
	})
	return migrated, err
}

// rewriteEmbeddingNamespaceLocked updates the Namespace field of every
// embedding row under scratchID, in place: a namespace rename doesn't
// change tenant_id/scratch_id/cell_id, so the embedding key is unaffected
// and only the denormalized namespace in the value needs rewriting, the
// same field internal/search filters search hits on.
func rewriteEmbeddingNamespaceLocked(embB *bolt.Bucket, tenantID, scratchID, to string) error {
	c := embB.Cursor()
	prefix := cellKeyPrefix(tenantID, scratchID)
	var keys [][]byte
	var rows []EmbeddingRow
	for k, v := c.Seek(prefix); k != nil && hasPrefix(k, prefix); k, v = c.Next() {
		var row EmbeddingRow
		if err := json.Unmarshal(v, &row); err != nil {
			return err
		}
		keys = append(keys, append([]byte(nil), k...))
		row.Namespace = to
		rows = append(rows, row)
	}
	for i, k := range keys {
		if err := embB.Put(k, marshal(rows[i])); err != nil {
			return err
		}
	}
	return nil
}

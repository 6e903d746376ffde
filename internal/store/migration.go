package store

import (
	"context"
	"encoding/json"
	"time"

	bolt "go.etcd.io/bbolt"
)

// MigrationRecord is the audit trail entry for the first-enable tenant
// migration.
type MigrationRecord struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	PadCount  int       `json:"pad_count"`
	MigratedAt time.Time `json:"migrated_at"`
}

// MigrateImplicitDefault rewrites every pad under the implicit default
// tenant to target, in one transaction, and appends an audit record.
// When there is nothing under the implicit tenant it moves nothing and
// still appends an audit record, with pad_count=0.
func (s *Store) MigrateImplicitDefault(ctx context.Context, implicitTenant, target string) (*MigrationRecord, error) {
	var rec MigrationRecord
	err := s.db.Update(func(tx *bolt.Tx) error {
		padsB := tx.Bucket([]byte(bucketPads))
		cellsB := tx.Bucket([]byte(bucketCells))
		embB := tx.Bucket([]byte(bucketEmbeddings))

		c := padsB.Cursor()
		prefix := padKeyPrefix(implicitTenant)
		var rows []padRow
		var oldKeys [][]byte
		for k, v := c.Seek(prefix); k != nil && hasPrefix(k, prefix); k, v = c.Next() {
			var row padRow
			if err := json.Unmarshal(v, &row); err != nil {
				return err
			}
			rows = append(rows, row)
			oldKeys = append(oldKeys, append([]byte(nil), k...))
		}

		for i, row := range rows {
			scratchID := row.ScratchID
			row.TenantID = target
			if err := padsB.Delete(oldKeys[i]); err != nil {
				return err
			}
			if err := padsB.Put(padKey(target, scratchID), marshal(row)); err != nil {
				return err
			}
			if err := moveCellsAndEmbeddings(cellsB, embB, implicitTenant, target, scratchID); err != nil {
				return err
			}
		}

		rec = MigrationRecord{From: implicitTenant, To: target, PadCount: len(rows), MigratedAt: nowFunc()}
		migB := tx.Bucket([]byte(bucketMigrations))
		return migB.Put([]byte(rec.MigratedAt.Format(time.RFC3339Nano)), marshal(rec))
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func moveCellsAndEmbeddings(cellsB, embB *bolt.Bucket, from, to, scratchID string) error {
	c := cellsB.Cursor()
	prefix := cellKeyPrefix(from, scratchID)
	var keys [][]byte
	var vals [][]byte
	for k, v := c.Seek(prefix); k != nil && hasPrefix(k, prefix); k, v = c.Next() {
		keys = append(keys, append([]byte(nil), k...))
		vals = append(vals, append([]byte(nil), v...))
	}
	for i, k := range keys {
		var row cellRow
		if err := json.Unmarshal(vals[i], &row); err != nil {
			return err
		}
		if err := cellsB.Delete(k); err != nil {
			return err
		}
		if err := cellsB.Put(cellKey(to, scratchID, row.CellID), vals[i]); err != nil {
			return err
		}
	}

	ec := embB.Cursor()
	var ekeys [][]byte
	var evals [][]byte
	for k, v := ec.Seek(prefix); k != nil && hasPrefix(k, prefix); k, v = ec.Next() {
		ekeys = append(ekeys, append([]byte(nil), k...))
		evals = append(evals, append([]byte(nil), v...))
	}
	for i, k := range ekeys {
		var row EmbeddingRow
		if err := json.Unmarshal(evals[i], &row); err != nil {
			return err
		}
		if err := embB.Delete(k); err != nil {
			return err
		}
		row.TenantID = to
		if err := embB.Put(embeddingKey(to, scratchID, row.CellID), marshal(row)); err != nil {
			return err
		}
	}
	return nil
}

// PadExistsForTenant reports whether any pad is stored under tenantID,
// used to decide whether the first-enable migration has work to do.
func (s *Store) PadExistsForTenant(ctx context.Context, tenantID string) (bool, error) {
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		padsB := tx.Bucket([]byte(bucketPads))
		c := padsB.Cursor()
		prefix := padKeyPrefix(tenantID)
		k, _ := c.Seek(prefix)
		found = k != nil && hasPrefix(k, prefix)
		return nil
	})
	return found, err
}

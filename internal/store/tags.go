package store

import (
	"context"
	"encoding/json"

	bolt "go.etcd.io/bbolt"

	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/model"
)

// ListTags aggregates scratchpad-level and cell-level tags across a
// tenant's pads (optionally restricted to some namespaces), recomputing
// each pad's cell_tags as the union of its cell tag sets at read time.
func (s *Store) ListTags(ctx context.Context, tenantID string, namespaces []string) (*model.TagListing, error) {
	padTags := model.StringSet{}
	cellTags := model.StringSet{}
	err := s.db.View(func(tx *bolt.Tx) error {
		padsB := tx.Bucket([]byte(bucketPads))
		c := padsB.Cursor()
		prefix := padKeyPrefix(tenantID)
		for k, v := c.Seek(prefix); k != nil && hasPrefix(k, prefix); k, v = c.Next() {
			var row padRow
			if err := json.Unmarshal(v, &row); err != nil {
				return err
			}
			if !matchesNamespace(row.Namespace, namespaces) {
				continue
			}
			padTags = padTags.Union(model.NewStringSet(row.Tags))
			_, cells, err := loadPadLocked(tx, tenantID, row.ScratchID)
			if err != nil {
				return err
			}
			for _, cell := range cells {
				cellTags = cellTags.Union(cell.Tags)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &model.TagListing{
		ScratchpadTags:  padTags.Slice(),
		CellTags:        cellTags.Slice(),
		NamespaceFilter: namespaces,
	}, nil
}

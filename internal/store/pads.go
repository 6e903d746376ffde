package store

import (
	"context"
	"encoding/json"
	"sort"

	bolt "go.etcd.io/bbolt"

	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/errs"
	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/model"
)

// CreateResult is the outcome of CreatePad: the persisted pad plus any
// pads evicted to make room for it.
type CreateResult struct {
	Pad      *model.Scratchpad
	Evicted  []string
}

// CreatePad inserts a new pad, optionally with initial cells, inside a
// single transaction. Duplicate (tenant_id, scratch_id)
// fails with INVALID_ID; over-capacity under "fail" fails with
// CAPACITY_LIMIT_REACHED; under "discard" the LRU victims are deleted in
// the same commit and returned in CreateResult.Evicted.
func (s *Store) CreatePad(ctx context.Context, tenantID string, pad *model.Scratchpad, initialCells []model.Cell) (*CreateResult, error) {
	if pad.ScratchID == "" {
		pad.ScratchID = newID()
	}
	if pad.Namespace == "" {
		pad.Namespace = model.DefaultNamespace
	}
	now := nowFunc()
	pad.CreatedAt = now
	pad.LastAccessAt = now
	if err := s.checkCellSizes(initialCells); err != nil {
		return nil, err
	}
	if s.limits.MaxCellsPerPad > 0 && len(initialCells) > s.limits.MaxCellsPerPad {
		return nil, errs.NewCapacityLimitReached("cell count %d exceeds max_cells_per_pad %d", len(initialCells), s.limits.MaxCellsPerPad)
	}

	embeddedCells, embedRows, err := s.prepareCellEmbeddings(ctx, tenantID, pad.ScratchID, pad.Namespace, pad.Tags, initialCells)
	if err != nil {
		return nil, err
	}

	var result CreateResult
	err = s.db.Update(func(tx *bolt.Tx) error {
		padsB := tx.Bucket([]byte(bucketPads))
		key := padKey(tenantID, pad.ScratchID)
		if padsB.Get(key) != nil {
			return errs.NewInvalidID("scratchpad %q already exists", pad.ScratchID)
		}

		if err := s.enforceCapacityLocked(tx, tenantID, &result); err != nil {
			return err
		}

		if err := s.ensureNamespaceLocked(tx, tenantID, pad.Namespace); err != nil {
			return err
		}

		for i := range embeddedCells {
			embeddedCells[i].Index = i
		}
		pad.Cells = embeddedCells

		if err := padsB.Put(key, marshal(toRow(pad))); err != nil {
			return err
		}
		cellsB := tx.Bucket([]byte(bucketCells))
		for _, c := range pad.Cells {
			if err := cellsB.Put(cellKey(tenantID, pad.ScratchID, c.CellID), marshal(toCellRow(c))); err != nil {
				return err
			}
		}
		embB := tx.Bucket([]byte(bucketEmbeddings))
		for _, row := range embedRows {
			if err := embB.Put(embeddingKey(row.TenantID, row.ScratchID, row.CellID), marshal(row)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.mirrorIndex(embedRows)
	result.Pad = pad
	if s.metrics != nil {
		s.metrics.PadsCreated.Inc()
		if len(result.Evicted) > 0 {
			s.metrics.Evictions.WithLabelValues(string(PolicyDiscard)).Add(float64(len(result.Evicted)))
		}
	}
	return &result, nil
}

// enforceCapacityLocked applies the active eviction policy at creation
// time. Called with the write transaction already open so
// eviction and the new pad's insert commit atomically.
func (s *Store) enforceCapacityLocked(tx *bolt.Tx, tenantID string, result *CreateResult) error {
	if s.limits.MaxScratchpads <= 0 {
		return nil
	}
	padsB := tx.Bucket([]byte(bucketPads))
	var rows []padRow
	c := padsB.Cursor()
	prefix := padKeyPrefix(tenantID)
	for k, v := c.Seek(prefix); k != nil && hasPrefix(k, prefix); k, v = c.Next() {
		var r padRow
		if err := json.Unmarshal(v, &r); err != nil {
			return err
		}
		rows = append(rows, r)
	}
	if len(rows) < s.limits.MaxScratchpads {
		return nil
	}

	switch s.limits.Policy {
	case PolicyFail:
		return errs.NewCapacityLimitReached("tenant has reached max_scratchpads (%d)", s.limits.MaxScratchpads)
	case PolicyPreempt:
		// Creation-time eviction is disabled under preempt; the sweeper
		// reclaims capacity on its own schedule.
		return nil
	default: // discard: ascending last_access_at, ties by ascending created_at
		sort.Slice(rows, func(i, j int) bool {
			if !rows[i].LastAccessAt.Equal(rows[j].LastAccessAt) {
				return rows[i].LastAccessAt.Before(rows[j].LastAccessAt)
			}
			return rows[i].CreatedAt.Before(rows[j].CreatedAt)
		})
		toEvict := len(rows) - s.limits.MaxScratchpads + 1
		cellsB := tx.Bucket([]byte(bucketCells))
		embB := tx.Bucket([]byte(bucketEmbeddings))
		for i := 0; i < toEvict; i++ {
			victim := rows[i]
			if err := deletePadLocked(padsB, cellsB, embB, tenantID, victim.ScratchID); err != nil {
				return err
			}
			result.Evicted = append(result.Evicted, victim.ScratchID)
		}
		return nil
	}
}

func hasPrefix(k, prefix []byte) bool {
	if len(k) < len(prefix) {
		return false
	}
	for i := range prefix {
		if k[i] != prefix[i] {
			return false
		}
	}
	return true
}

// ReadView filters what ReadPad returns.
type ReadView struct {
	CellIDs         []string
	Tags            []string
	Namespaces      []string
	IncludeMetadata bool
}

// ReadPad reads a pad and applies the read-time filters, updating
// last_access_at in the same transaction.
// When both CellIDs and Tags are set, the result is their intersection.
func (s *Store) ReadPad(ctx context.Context, tenantID, scratchID string, view ReadView) (*model.Scratchpad, error) {
	var pad *model.Scratchpad
	err := s.db.Update(func(tx *bolt.Tx) error {
		row, cells, err := loadPadLocked(tx, tenantID, scratchID)
		if err != nil {
			return err
		}
		if !matchesNamespace(row.Namespace, view.Namespaces) {
			return errs.NewConflict("scratchpad %q is not in the requested namespace", scratchID)
		}
		now := nowFunc()
		row.LastAccessAt = now
		if err := tx.Bucket([]byte(bucketPads)).Put(padKey(tenantID, scratchID), marshal(row)); err != nil {
			return err
		}

		pad = fromRow(row)
		pad.Cells = filterCells(cells, view)
		if !view.IncludeMetadata {
			// IncludeMetadata does not change the result: the full
			// metadata map (including any schema registry) is returned
			// whether or not it is set.
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pad, nil
}

func filterCells(cells []model.Cell, view ReadView) []model.Cell {
	idSet := map[string]bool{}
	for _, id := range view.CellIDs {
		idSet[id] = true
	}
	out := make([]model.Cell, 0, len(cells))
	for _, c := range cells {
		if len(view.CellIDs) > 0 && !idSet[c.CellID] {
			continue
		}
		if len(view.Tags) > 0 && !matchesTags(c.Tags, view.Tags) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// loadPadLocked reads a pad row and its cells (ordered by index) inside
// an already-open transaction. Returns NOT_FOUND if absent.
func loadPadLocked(tx *bolt.Tx, tenantID, scratchID string) (padRow, []model.Cell, error) {
	padsB := tx.Bucket([]byte(bucketPads))
	raw := padsB.Get(padKey(tenantID, scratchID))
	if raw == nil {
		return padRow{}, nil, errs.NewNotFound("scratchpad %q not found", scratchID)
	}
	var row padRow
	if err := json.Unmarshal(raw, &row); err != nil {
		return padRow{}, nil, errs.NewInternal("decoding pad row: %v", err)
	}

	cellsB := tx.Bucket([]byte(bucketCells))
	var cells []model.Cell
	c := cellsB.Cursor()
	prefix := cellKeyPrefix(tenantID, scratchID)
	for k, v := c.Seek(prefix); k != nil && hasPrefix(k, prefix); k, v = c.Next() {
		var cr cellRow
		if err := json.Unmarshal(v, &cr); err != nil {
			return padRow{}, nil, errs.NewInternal("decoding cell row: %v", err)
		}
		cells = append(cells, fromCellRow(cr))
	}
	sort.Slice(cells, func(i, j int) bool { return cells[i].Index < cells[j].Index })
	return row, cells, nil
}

// ListPads returns lean rows across a tenant's pads, predicates pushed into the bucket scan rather than
// loaded into memory wholesale then filtered.
func (s *Store) ListPads(ctx context.Context, tenantID string, namespaces, tags []string, limit int) ([]model.PadSummary, error) {
	var out []model.PadSummary
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
			if len(tags) > 0 && !matchesTags(model.NewStringSet(row.Tags), tags) {
				continue
			}
			pad := fromRow(row)
			cellCount := countCellsLocked(tx, tenantID, row.ScratchID)
			summary := pad.ToSummary()
			summary.CellCount = cellCount
			out = append(out, summary)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
		return nil
	})
	return out, err
}

func countCellsLocked(tx *bolt.Tx, tenantID, scratchID string) int {
	cellsB := tx.Bucket([]byte(bucketCells))
	c := cellsB.Cursor()
	prefix := cellKeyPrefix(tenantID, scratchID)
	n := 0
	for k, _ := c.Seek(prefix); k != nil && hasPrefix(k, prefix); k, _ = c.Next() {
		n++
	}
	return n
}

// DeletePad removes a pad, its cells, and any embeddings referencing
// it. It is idempotent: a second call for an already-deleted pad
// returns deleted=false rather than an error.
func (s *Store) DeletePad(ctx context.Context, tenantID, scratchID string) (bool, error) {
	var deleted bool
	err := s.db.Update(func(tx *bolt.Tx) error {
		padsB := tx.Bucket([]byte(bucketPads))
		if padsB.Get(padKey(tenantID, scratchID)) == nil {
			return nil
		}
		cellsB := tx.Bucket([]byte(bucketCells))
		embB := tx.Bucket([]byte(bucketEmbeddings))
		if err := deletePadLocked(padsB, cellsB, embB, tenantID, scratchID); err != nil {
			return err
		}
		deleted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if deleted {
		if s.index != nil {
			s.index.Delete(tenantID, scratchID, "")
		}
		if s.metrics != nil {
			s.metrics.PadsDeleted.Inc()
		}
	}
	return deleted, nil
}

func deletePadLocked(padsB, cellsB, embB *bolt.Bucket, tenantID, scratchID string) error {
	if err := padsB.Delete(padKey(tenantID, scratchID)); err != nil {
		return err
	}
	c := cellsB.Cursor()
	prefix := cellKeyPrefix(tenantID, scratchID)
	var cellKeys [][]byte
	for k, _ := c.Seek(prefix); k != nil && hasPrefix(k, prefix); k, _ = c.Next() {
		cellKeys = append(cellKeys, append([]byte(nil), k...))
	}
	for _, k := range cellKeys {
		if err := cellsB.Delete(k); err != nil {
			return err
		}
	}
	ec := embB.Cursor()
	var embKeys [][]byte
	for k, _ := ec.Seek(prefix); k != nil && hasPrefix(k, prefix); k, _ = ec.Next() {
		embKeys = append(embKeys, append([]byte(nil), k...))
	}
	// embeddings keyed the same way as cells (tenant/scratch/cell); a
	// pad-level embedding uses an empty cell component and shares the
	// tenant+scratch prefix, so this one scan catches both.
	for _, k := range embKeys {
		if err := embB.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) checkCellSizes(cells []model.Cell) error {
	if s.limits.MaxCellBytes <= 0 {
		return nil
	}
	for _, c := range cells {
		if n := len([]byte(c.Content)); n > s.limits.MaxCellBytes {
			return errs.NewCapacityLimitReached("cell content is %d bytes, exceeds max_cell_bytes %d", n, s.limits.MaxCellBytes)
		}
	}
	return nil
}

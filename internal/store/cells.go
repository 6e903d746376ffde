package store

import (
	"context"

	bolt "go.etcd.io/bbolt"

	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/errs"
	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/model"
)

// ListCells returns lightweight cell rows — no content — matching the
// given filters.
func (s *Store) ListCells(ctx context.Context, tenantID, scratchID string, cellIDs, tags []string) ([]model.CellSummary, error) {
	var out []model.CellSummary
	err := s.db.View(func(tx *bolt.Tx) error {
		_, cells, err := loadPadLocked(tx, tenantID, scratchID)
		if err != nil {
			return err
		}
		filtered := filterCells(cells, ReadView{CellIDs: cellIDs, Tags: tags})
		for _, c := range filtered {
			out = append(out, model.CellSummary{
				CellID:   c.CellID,
				Index:    c.Index,
				Language: c.Language,
				Tags:     c.TagSlice(),
				Metadata: c.Metadata,
			})
		}
		return nil
	})
	return out, err
}

// MutationResult is the outcome of append_cell/replace_cell: the updated
// pad with its full cells, content included; tool handlers project it to
// the lightweight view (ToLight) before responding.
type MutationResult struct {
	Pad   *model.Scratchpad
	Added model.Cell // the cell as persisted, for validation pipeline input
}

// AppendCell adds a new cell to the end of a pad, enforcing max_cells_per_pad and max_cell_bytes and
// transactionally committing its embedding alongside the content.
func (s *Store) AppendCell(ctx context.Context, tenantID, scratchID string, cell model.Cell) (*MutationResult, error) {
	if s.limits.MaxCellBytes > 0 {
		if n := len([]byte(cell.Content)); n > s.limits.MaxCellBytes {
			return nil, errs.NewCapacityLimitReached("cell content is %d bytes, exceeds max_cell_bytes %d", n, s.limits.MaxCellBytes)
		}
	}
	if cell.CellID == "" {
		cell.CellID = newID()
	}

	var padNamespace string
	var padTags model.StringSet
	err := s.db.View(func(tx *bolt.Tx) error {
		row, cells, err := loadPadLocked(tx, tenantID, scratchID)
		if err != nil {
			return err
		}
		if s.limits.MaxCellsPerPad > 0 && len(cells)+1 > s.limits.MaxCellsPerPad {
			return errs.NewCapacityLimitReached("cell count would exceed max_cells_per_pad %d", s.limits.MaxCellsPerPad)
		}
		padNamespace = row.Namespace
		padTags = model.NewStringSet(row.Tags)
		return nil
	})
	if err != nil {
		return nil, err
	}

	embedRow, err := s.prepareSingleEmbedding(ctx, tenantID, scratchID, padNamespace, cell.Tags.Union(padTags), cell)
	if err != nil {
		return nil, err
	}

	var pad *model.Scratchpad
	err = s.db.Update(func(tx *bolt.Tx) error {
		row, cells, err := loadPadLocked(tx, tenantID, scratchID)
		if err != nil {
			return err
		}
		if s.limits.MaxCellsPerPad > 0 && len(cells)+1 > s.limits.MaxCellsPerPad {
			return errs.NewCapacityLimitReached("cell count would exceed max_cells_per_pad %d", s.limits.MaxCellsPerPad)
		}
		cell.Index = len(cells)
		cells = append(cells, cell)

		row.LastAccessAt = nowFunc()
		if err := tx.Bucket([]byte(bucketPads)).Put(padKey(tenantID, scratchID), marshal(row)); err != nil {
			return err
		}
		if err := tx.Bucket([]byte(bucketCells)).Put(cellKey(tenantID, scratchID, cell.CellID), marshal(toCellRow(cell))); err != nil {
			return err
		}
		if embedRow != nil {
			if err := tx.Bucket([]byte(bucketEmbeddings)).Put(embeddingKey(tenantID, scratchID, cell.CellID), marshal(*embedRow)); err != nil {
				return err
			}
		}

		pad = fromRow(row)
		pad.Cells = cells
		return nil
	})
	if err != nil {
		return nil, err
	}
	if embedRow != nil {
		s.mirrorIndex([]EmbeddingRow{*embedRow})
	}
	if s.metrics != nil {
		s.metrics.CellsAppended.Inc()
	}
	return &MutationResult{Pad: pad, Added: cell}, nil
}

// ReplaceCell replaces a cell's content (and, via newIndex, its position)
// inside one transaction.
// newIndex < 0 means "keep current position".
func (s *Store) ReplaceCell(ctx context.Context, tenantID, scratchID, cellID string, newCell model.Cell, newIndex int) (*MutationResult, error) {
	if s.limits.MaxCellBytes > 0 {
		if n := len([]byte(newCell.Content)); n > s.limits.MaxCellBytes {
			return nil, errs.NewCapacityLimitReached("cell content is %d bytes, exceeds max_cell_bytes %d", n, s.limits.MaxCellBytes)
		}
	}

	var padNamespace string
	var padTags model.StringSet
	err := s.db.View(func(tx *bolt.Tx) error {
		row, cells, err := loadPadLocked(tx, tenantID, scratchID)
		if err != nil {
			return err
		}
		if !cellExists(cells, cellID) {
			return errs.NewInvalidID("cell %q not found in scratchpad %q", cellID, scratchID)
		}
		padNamespace = row.Namespace
		padTags = model.NewStringSet(row.Tags)
		return nil
	})
	if err != nil {
		return nil, err
	}

	newCell.CellID = cellID
	embedRow, err := s.prepareSingleEmbedding(ctx, tenantID, scratchID, padNamespace, newCell.Tags.Union(padTags), newCell)
	if err != nil {
		return nil, err
	}

	var pad *model.Scratchpad
	err = s.db.Update(func(tx *bolt.Tx) error {
		row, cells, err := loadPadLocked(tx, tenantID, scratchID)
		if err != nil {
			return err
		}
		idx := indexOf(cells, cellID)
		if idx < 0 {
			return errs.NewInvalidID("cell %q not found in scratchpad %q", cellID, scratchID)
		}

		// Remove, reinsert at target position, then renumber contiguously.
		target := newIndex
		if target < 0 {
			target = cells[idx].Index
		}
		cells = append(cells[:idx], cells[idx+1:]...)
		if target > len(cells) {
			target = len(cells)
		}
		if target < 0 {
			target = 0
		}
		cells = append(cells[:target], append([]model.Cell{newCell}, cells[target:]...)...)
		for i := range cells {
			cells[i].Index = i
		}

		row.LastAccessAt = nowFunc()
		if err := tx.Bucket([]byte(bucketPads)).Put(padKey(tenantID, scratchID), marshal(row)); err != nil {
			return err
		}
		cellsB := tx.Bucket([]byte(bucketCells))
		for _, c := range cells {
			if err := cellsB.Put(cellKey(tenantID, scratchID, c.CellID), marshal(toCellRow(c))); err != nil {
				return err
			}
		}
		if embedRow != nil {
			if err := tx.Bucket([]byte(bucketEmbeddings)).Put(embeddingKey(tenantID, scratchID, cellID), marshal(*embedRow)); err != nil {
				return err
			}
		}

		pad = fromRow(row)
		pad.Cells = cells
		return nil
	})
	if err != nil {
		return nil, err
	}
	if embedRow != nil {
		s.mirrorIndex([]EmbeddingRow{*embedRow})
	}

	var added model.Cell
	for _, c := range pad.Cells {
		if c.CellID == cellID {
			added = c
			break
		}
	}
	if s.metrics != nil {
		s.metrics.CellsReplaced.Inc()
	}
	return &MutationResult{Pad: pad, Added: added}, nil
}

func cellExists(cells []model.Cell, id string) bool { return indexOf(cells, id) >= 0 }

func indexOf(cells []model.Cell, id string) int {
	for i, c := range cells {
		if c.CellID == id {
			return i
		}
	}
	return -1
}

package store

import (
	"context"

	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/errs"
	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/model"
)

// prepareCellEmbeddings computes one embedding row per cell ahead of the
// write transaction. CPU-bound
// embedding generation must never run while a bbolt write lock is held,
// so this always happens before Store.db.Update opens.
func (s *Store) prepareCellEmbeddings(ctx context.Context, tenantID, scratchID, namespace string, padTags model.StringSet, cells []model.Cell) ([]model.Cell, []EmbeddingRow, error) {
	assigned := make([]model.Cell, len(cells))
	var rows []EmbeddingRow
	for i, c := range cells {
		if c.CellID == "" {
			c.CellID = newID()
		}
		assigned[i] = c
		if s.embedder == nil {
			continue
		}
		vec, version, err := s.embedder.Embed(ctx, c.Content)
		if err != nil {
			return nil, nil, errs.NewInternal("embedding cell: %v", err)
		}
		rows = append(rows, EmbeddingRow{
			TenantID:         tenantID,
			ScratchID:        scratchID,
			CellID:           c.CellID,
			Namespace:        namespace,
			Tags:             c.Tags.Union(padTags).Slice(),
			Language:         string(c.Language),
			Vector:           vec,
			EmbeddingVersion: version,
			UpdatedAt:        nowFunc(),
		})
	}
	return assigned, rows, nil
}

// prepareSingleEmbedding embeds one cell's content for append/replace
// operations.
func (s *Store) prepareSingleEmbedding(ctx context.Context, tenantID, scratchID, namespace string, tags model.StringSet, c model.Cell) (*EmbeddingRow, error) {
	if s.embedder == nil {
		return nil, nil
	}
	vec, version, err := s.embedder.Embed(ctx, c.Content)
	if err != nil {
		return nil, errs.NewInternal("embedding cell: %v", err)
	}
	return &EmbeddingRow{
		TenantID:         tenantID,
		ScratchID:        scratchID,
		CellID:           c.CellID,
		Namespace:        namespace,
		Tags:             tags.Slice(),
		Language:         string(c.Language),
		Vector:           vec,
		EmbeddingVersion: version,
		UpdatedAt:        nowFunc(),
	}, nil
}

// mirrorIndex pushes newly committed embedding rows into the in-memory
// ANN index. The bbolt embeddings bucket remains the durable source of
// truth; this is a best-effort cache refresh, not part of the commit.
func (s *Store) mirrorIndex(rows []EmbeddingRow) {
	if s.index == nil {
		return
	}
	for _, r := range rows {
		_ = s.index.Upsert(r)
	}
}

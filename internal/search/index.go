package search

import (
	"fmt"
	"sync"

	"github.com/blevesearch/go-faiss"

	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/store"
)

// Index is an in-memory, brute-force-exact vector index over go-faiss's
// IndexFlatIP, satisfying store.IndexWriter. It is a read-optimization
// cache over the bbolt embeddings bucket (the durable source of truth),
// not itself durable: a restart rebuilds it via Rebuild.
//
// IndexFlatIP computes an exact inner-product against every stored vector
// on every query — there is no approximation — which lets Search fetch
// every match before applying tenant/namespace/tag predicates and only
// then truncating to the caller's limit, satisfying the "filter before
// top-k" requirement without needing faiss-native metadata filtering.
type Index struct {
	mu         sync.RWMutex
	dim        int
	faissIndex *faiss.IndexFlatIP
	rows       []store.EmbeddingRow // position == faiss label
	deleted    []bool
	keyToLabel map[string]int64
}

func rowKey(tenantID, scratchID, cellID string) string {
	return tenantID + "\x00" + scratchID + "\x00" + cellID
}

// NewIndex creates an empty index for vectors of width dim.
func NewIndex(dim int) (*Index, error) {
	fi, err := faiss.NewIndexFlatIP(dim)
	if err != nil {
		return nil, fmt.Errorf("creating faiss index: %w", err)
	}
	return &Index{
		dim:        dim,
		faissIndex: fi,
		keyToLabel: make(map[string]int64),
	}, nil
}

// Upsert adds or replaces the vector for (tenant, scratchpad, cell). A
// prior vector for the same key is tombstoned rather than physically
// removed — IndexFlatIP has no in-place update — and is skipped by Search.
func (idx *Index) Upsert(row store.EmbeddingRow) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	key := rowKey(row.TenantID, row.ScratchID, row.CellID)
	if old, ok := idx.keyToLabel[key]; ok {
		idx.deleted[old] = true
	}

	if len(row.Vector) != idx.dim {
		return fmt.Errorf("embedding dimension mismatch: got %d want %d", len(row.Vector), idx.dim)
	}
	label := int64(len(idx.rows))
	if err := idx.faissIndex.Add(row.Vector); err != nil {
		return fmt.Errorf("adding vector to index: %w", err)
	}
	idx.rows = append(idx.rows, row)
	idx.deleted = append(idx.deleted, false)
	idx.keyToLabel[key] = label
	return nil
}

// Rebuild replaces the index contents with rows, in order. Used once at
// startup to repopulate the cache from the durable embeddings bucket.
func (idx *Index) Rebuild(rows []store.EmbeddingRow) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	fi, err := faiss.NewIndexFlatIP(idx.dim)
	if err != nil {
		return fmt.Errorf("creating faiss index: %w", err)
	}
	idx.faissIndex = fi
	idx.rows = idx.rows[:0]
	idx.deleted = idx.deleted[:0]
	idx.keyToLabel = make(map[string]int64, len(rows))

	for _, row := range rows {
		if len(row.Vector) != idx.dim {
			continue
		}
		label := int64(len(idx.rows))
		if err := idx.faissIndex.Add(row.Vector); err != nil {
			return fmt.Errorf("adding vector to index: %w", err)
		}
		idx.rows = append(idx.rows, row)
		idx.deleted = append(idx.deleted, false)
		idx.keyToLabel[rowKey(row.TenantID, row.ScratchID, row.CellID)] = label
	}
	return nil
}

// Delete tombstones the vector for (tenant, scratchpad, cell). An empty
// cellID deletes every row for that scratchpad (used by pad deletion).
func (idx *Index) Delete(tenantID, scratchID, cellID string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if cellID != "" {
		key := rowKey(tenantID, scratchID, cellID)
		if label, ok := idx.keyToLabel[key]; ok {
			idx.deleted[label] = true
			delete(idx.keyToLabel, key)
		}
		return nil
	}
	for key, label := range idx.keyToLabel {
		if idx.rows[label].TenantID == tenantID && idx.rows[label].ScratchID == scratchID {
			idx.deleted[label] = true
			delete(idx.keyToLabel, key)
		}
	}
	return nil
}

// scoredRow is one exact-search result before predicate filtering.
type scoredRow struct {
	row   store.EmbeddingRow
	score float32
}

// searchAll runs an exhaustive nearest-neighbor search against every
// live (non-tombstoned) vector and returns them all, score-descending,
// for the caller to predicate-filter before truncating to a limit.
func (idx *Index) searchAll(query []float32) ([]scoredRow, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	n := int64(len(idx.rows))
	if n == 0 {
		return nil, nil
	}
	distances, labels, err := idx.faissIndex.Search(query, n)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}

	out := make([]scoredRow, 0, len(labels))
	for i, lbl := range labels {
		if lbl < 0 || int(lbl) >= len(idx.rows) || idx.deleted[lbl] {
			continue
		}
		out = append(out, scoredRow{row: idx.rows[lbl], score: distances[i]})
	}
	return out, nil
}

package search

import (
	"context"
	"sort"
	"time"

	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/metrics"
	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/model"
)

// queryEmbedder is the subset of Embedder that Engine needs, so tests can
// substitute a fake rather than loading a real fastembed model.
type queryEmbedder interface {
	Embed(ctx context.Context, text string) ([]float32, string, error)
}

// Engine ties the embedder and vector index together into the
// scratch_search tool's semantics: embed the query, filter by
// tenant/namespace/tags, then truncate to limit with a deterministic
// tie-break.
type Engine struct {
	embedder queryEmbedder
	index    *Index
	metrics  *metrics.Registry // nil when metrics are disabled
}

// NewEngine wires an Embedder and Index into a search Engine.
func NewEngine(embedder *Embedder, index *Index) *Engine {
	return &Engine{embedder: embedder, index: index}
}

// SetMetrics wires a metrics registry into the engine so every search
// observes its end-to-end latency (embed + index scan) in SearchLatency.
func (e *Engine) SetMetrics(m *metrics.Registry) {
	e.metrics = m
}

// Search embeds query and returns the matching cells for tenantID,
// restricted to namespaces/tags when given (OR-within-each-list),
// sorted by score descending and truncated to limit. Ties break on
// (scratch_id, cell_id) ascending for determinism.
func (e *Engine) Search(ctx context.Context, tenantID, query string, namespaces, tags []string, limit int) ([]model.SearchHit, error) {
	start := nowFunc()
	if e.metrics != nil {
		defer func() { e.metrics.SearchLatency.Observe(nowFunc().Sub(start).Seconds()) }()
	}

	vec, _, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	all, err := e.index.searchAll(vec)
	if err != nil {
		return nil, err
	}

	hits := make([]model.SearchHit, 0, len(all))
	for _, sr := range all {
		row := sr.row
		if row.TenantID != tenantID {
			continue
		}
		if len(namespaces) > 0 && !containsAny([]string{row.Namespace}, namespaces) {
			continue
		}
		if len(tags) > 0 && !containsAny(row.Tags, tags) {
			continue
		}
		hits = append(hits, model.SearchHit{
			ScratchID:        row.ScratchID,
			CellID:           row.CellID,
			TenantID:         row.TenantID,
			Namespace:        row.Namespace,
			Tags:             row.Tags,
			Score:            sr.score,
			EmbeddingVersion: row.EmbeddingVersion,
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		if hits[i].ScratchID != hits[j].ScratchID {
			return hits[i].ScratchID < hits[j].ScratchID
		}
		return hits[i].CellID < hits[j].CellID
	})

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// nowFunc is indirected so tests can assert SearchLatency without relying
// on wall-clock timing.
var nowFunc = time.Now

func containsAny(haystack, needles []string) bool {
	for _, n := range needles {
		for _, h := range haystack {
			if h == n {
				return true
			}
		}
	}
	return false
}

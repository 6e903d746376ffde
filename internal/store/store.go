// Package store implements the catalog: a tenant-scoped, transactional
// multi-table persistence layer for pads, cells, namespaces, and
// embeddings, backed by go.etcd.io/bbolt — an embedded,
// ACID B+tree KV engine. Each logical table is one bbolt bucket; every
// mutating operation runs inside a single bbolt.Update so partial
// visibility across tables is impossible.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/errs"
	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/metrics"
	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/model"
)

// Bucket names — one per logical table. "pads" rows carry
// their cell_tags_cache and embedded schema registry; "cells" rows carry
// content; "namespaces" is the registry of namespace labels (which may
// exist without pads); "embeddings" holds the durable vector rows that
// back the semantic-search index; "migrations" is the audit trail for
// the first-enable tenant migration.
const (
	bucketPads       = "pads"
	bucketCells      = "cells"
	bucketNamespaces = "namespaces"
	bucketEmbeddings = "embeddings"
	bucketMigrations = "migrations"
)

var allBuckets = []string{bucketPads, bucketCells, bucketNamespaces, bucketEmbeddings, bucketMigrations}

// Embedder generates a fixed-dimension vector for a unit of text,
// implemented by internal/search against the configured embedding
// model. Store calls it synchronously before opening the write
// transaction that persists the resulting vector, so CPU-bound embedding
// work never happens while a bbolt write lock is held.
type Embedder interface {
	Embed(ctx context.Context, text string) (vector []float32, version string, err error)
	Dimension() int
}

// IndexWriter mirrors committed embedding rows into the in-memory ANN
// index; it is a read-optimization over the bbolt-durable
// embeddings bucket, never the source of truth.
type IndexWriter interface {
	Upsert(row EmbeddingRow) error
	Delete(tenantID, scratchID, cellID string) error
}

// Limits bounds pad/cell sizes. Zero means
// unlimited. Policy selects the creation-time capacity strategy; the
// sweeper's preempt-age eviction is SweepPreempt, scheduled by
// internal/lifecycle with its own max age, so it is not modeled here.
type Limits struct {
	MaxScratchpads int
	MaxCellsPerPad int
	MaxCellBytes   int
	Policy         EvictionPolicy
}

// EvictionPolicy mirrors config.EvictionPolicy without introducing an
// import edge from store to config.
type EvictionPolicy string

const (
	PolicyDiscard EvictionPolicy = "discard"
	PolicyFail    EvictionPolicy = "fail"
	PolicyPreempt EvictionPolicy = "preempt"
)

// Store is the catalog store.
type Store struct {
	db       *bolt.DB
	limits   Limits
	embedder Embedder // nil when semantic search is disabled
	index    IndexWriter
	metrics  *metrics.Registry // nil when metrics are disabled
}

// Open opens (creating if necessary) the bbolt dataset at path and ensures
// every logical-table bucket exists.
func Open(path string, limits Limits) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, errs.NewInternal("opening catalog: %v", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists([]byte(b)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, errs.NewInternal("initializing catalog buckets: %v", err)
	}
	return &Store{db: db, limits: limits}, nil
}

// SetEmbedder wires the semantic-search embedder into the store, enabling
// transactional embedding updates on content mutation.
func (s *Store) SetEmbedder(e Embedder, idx IndexWriter) {
	s.embedder = e
	s.index = idx
}

// SetMetrics wires a metrics registry into the store so catalog mutations
// increment the matching Prometheus counters. A nil registry (the
// default) leaves every increment a no-op.
func (s *Store) SetMetrics(m *metrics.Registry) {
	s.metrics = m
}

// Close flushes and closes the underlying dataset.
func (s *Store) Close() error { return s.db.Close() }

// AllEmbeddings returns every durable embedding row across every tenant,
// for rebuilding the in-memory ANN index on startup: the
// embeddings bucket is the source of truth, the index is a cache over it.
func (s *Store) AllEmbeddings(ctx context.Context) ([]EmbeddingRow, error) {
	var rows []EmbeddingRow
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(bucketEmbeddings)).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			var row EmbeddingRow
			if err := json.Unmarshal(v, &row); err != nil {
				return err
			}
			rows = append(rows, row)
		}
		return nil
	})
	return rows, err
}

// padKey is tenant_id \x00 scratch_id so a tenant's pads form a
// contiguous bbolt key range, a secondary scalar index on tenant_id for
// fast tenant-scoped scans.
func padKey(tenantID, scratchID string) []byte {
	return []byte(tenantID + "\x00" + scratchID)
}

func padKeyPrefix(tenantID string) []byte { return []byte(tenantID + "\x00") }

// cellKey is tenant_id \x00 scratch_id \x00 cell_id.
func cellKey(tenantID, scratchID, cellID string) []byte {
	return []byte(tenantID + "\x00" + scratchID + "\x00" + cellID)
}

func cellKeyPrefix(tenantID, scratchID string) []byte {
	return []byte(tenantID + "\x00" + scratchID + "\x00")
}

func namespaceKey(tenantID, name string) []byte {
	return []byte(tenantID + "\x00" + name)
}

func namespaceKeyPrefix(tenantID string) []byte { return []byte(tenantID + "\x00") }

func embeddingKey(tenantID, scratchID, cellID string) []byte {
	return []byte(tenantID + "\x00" + scratchID + "\x00" + cellID)
}

// padRow is the persisted representation of a Scratchpad (without its
// cells, which live in the cells bucket keyed by the same prefix).
type padRow struct {
	ScratchID      string         `json:"scratch_id"`
	TenantID       string         `json:"tenant_id"`
	Namespace      string         `json:"namespace"`
	Tags           []string       `json:"tags"`
	Metadata       map[string]any `json:"metadata"`
	CreatedAt      time.Time      `json:"created_at"`
	LastAccessAt   time.Time      `json:"last_access_at"`
	CellTagsCache  []string       `json:"cell_tags_cache"`
}

// cellRow is the persisted representation of a Cell.
type cellRow struct {
	CellID     string         `json:"cell_id"`
	Index      int            `json:"index"`
	Language   string         `json:"language"`
	Content    string         `json:"content"`
	Validate   bool           `json:"validate"`
	Tags       []string       `json:"tags"`
	Metadata   map[string]any `json:"metadata"`
}

// namespaceRow is the persisted representation of a Namespace.
type namespaceRow struct {
	TenantID  string    `json:"tenant_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// EmbeddingRow is the persisted representation of an embedding. CellID is empty for a pad-metadata-level embedding.
type EmbeddingRow struct {
	TenantID         string    `json:"tenant_id"`
	ScratchID        string    `json:"scratch_id"`
	CellID           string    `json:"cell_id,omitempty"`
	Namespace        string    `json:"namespace"`
	Tags             []string  `json:"tags"`
	Language         string    `json:"language,omitempty"`
	Vector           []float32 `json:"vector"`
	EmbeddingVersion string    `json:"embedding_version"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func marshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("store: marshal invariant violated: %v", err))
	}
	return b
}

func toRow(p *model.Scratchpad) padRow {
	return padRow{
		ScratchID:     p.ScratchID,
		TenantID:      p.TenantID,
		Namespace:     p.Namespace,
		Tags:          p.Tags.Slice(),
		Metadata:      p.Metadata,
		CreatedAt:     p.CreatedAt,
		LastAccessAt:  p.LastAccessAt,
		CellTagsCache: p.CellTags().Slice(),
	}
}

func fromRow(r padRow) *model.Scratchpad {
	return &model.Scratchpad{
		ScratchID:    r.ScratchID,
		TenantID:     r.TenantID,
		Namespace:    r.Namespace,
		Tags:         model.NewStringSet(r.Tags),
		Metadata:     r.Metadata,
		CreatedAt:    r.CreatedAt,
		LastAccessAt: r.LastAccessAt,
	}
}

func toCellRow(c model.Cell) cellRow {
	return cellRow{
		CellID:   c.CellID,
		Index:    c.Index,
		Language: string(c.Language),
		Content:  c.Content,
		Validate: c.Validate,
		Tags:     c.TagSlice(),
		Metadata: c.Metadata,
	}
}

func fromCellRow(r cellRow) model.Cell {
	return model.Cell{
		CellID:   r.CellID,
		Index:    r.Index,
		Language: model.Language(r.Language),
		Content:  r.Content,
		Validate: r.Validate,
		Tags:     model.NewStringSet(r.Tags),
		Metadata: r.Metadata,
	}
}

// matchesNamespace implements the OR-within-a-list namespace predicate.
func matchesNamespace(ns string, filter []string) bool {
	if len(filter) == 0 {
		return true
	}
	for _, f := range filter {
		if f == ns {
			return true
		}
	}
	return false
}

// matchesTags implements the OR-within-a-list tag predicate.
func matchesTags(tags model.StringSet, filter []string) bool {
	if len(filter) == 0 {
		return true
	}
	for _, f := range filter {
		if _, ok := tags[f]; ok {
			return true
		}
	}
	return false
}

func splitKey(key []byte) []string {
	return strings.Split(string(key), "\x00")
}

// nowFunc is indirected so tests can freeze time when exercising
// last_access_at monotonicity and preempt-age boundaries.
var nowFunc = func() time.Time { return time.Now().UTC() }

package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/store"
)

func row(tenant, scratch, cell string, v []float32) store.EmbeddingRow {
	return store.EmbeddingRow{TenantID: tenant, ScratchID: scratch, CellID: cell, Vector: v}
}

func TestIndexUpsertRejectsDimensionMismatch(t *testing.T) {
	idx, err := NewIndex(3)
	require.NoError(t, err)

	err = idx.Upsert(row("t1", "s1", "c1", []float32{1, 0}))
	require.Error(t, err)
}

func TestIndexUpsertReplacesPriorVector(t *testing.T) {
	idx, err := NewIndex(2)
	require.NoError(t, err)

	require.NoError(t, idx.Upsert(row("t1", "s1", "c1", []float32{1, 0})))
	require.NoError(t, idx.Upsert(row("t1", "s1", "c1", []float32{0, 1})))

	results, err := idx.searchAll([]float32{0, 1})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, float32(1), results[0].score)
}

func TestIndexDeleteTombstonesSingleCell(t *testing.T) {
	idx, err := NewIndex(2)
	require.NoError(t, err)

	require.NoError(t, idx.Upsert(row("t1", "s1", "c1", []float32{1, 0})))
	require.NoError(t, idx.Upsert(row("t1", "s1", "c2", []float32{0, 1})))

	require.NoError(t, idx.Delete("t1", "s1", "c1"))

	results, err := idx.searchAll([]float32{1, 0})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "c2", results[0].row.CellID)
}

func TestIndexDeleteWithoutCellIDRemovesWholePad(t *testing.T) {
	idx, err := NewIndex(2)
	require.NoError(t, err)

	require.NoError(t, idx.Upsert(row("t1", "s1", "c1", []float32{1, 0})))
	require.NoError(t, idx.Upsert(row("t1", "s1", "c2", []float32{0, 1})))
	require.NoError(t, idx.Upsert(row("t1", "s2", "c1", []float32{1, 1})))

	require.NoError(t, idx.Delete("t1", "s1", ""))

	results, err := idx.searchAll([]float32{1, 1})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "s2", results[0].row.ScratchID)
}

func TestIndexRebuildReplacesContents(t *testing.T) {
	idx, err := NewIndex(2)
	require.NoError(t, err)

	require.NoError(t, idx.Upsert(row("t1", "s1", "c1", []float32{1, 0})))

	err = idx.Rebuild([]store.EmbeddingRow{
		row("t2", "s9", "c9", []float32{0, 1}),
		row("t2", "s9", "c-bad", []float32{1, 1, 1}), // wrong dimension, skipped
	})
	require.NoError(t, err)

	results, err := idx.searchAll([]float32{0, 1})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "s9", results[0].row.ScratchID)
	assert.Equal(t, "t2", results[0].row.TenantID)
}

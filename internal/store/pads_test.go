package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/errs"
	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/model"
)

func openTestStore(t *testing.T, limits Limits) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scratchpad.db")
	st, err := Open(path, limits)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestCreateAndReadPad(t *testing.T) {
	st := openTestStore(t, Limits{})
	ctx := context.Background()

	pad := &model.Scratchpad{Namespace: "notes", Tags: model.NewStringSet([]string{"a"})}
	cells := []model.Cell{{CellID: "c1", Language: model.LangTXT, Content: "hello"}}

	result, err := st.CreatePad(ctx, "tenant-a", pad, cells)
	require.NoError(t, err)
	require.NotEmpty(t, result.Pad.ScratchID)
	assert.Empty(t, result.Evicted)

	got, err := st.ReadPad(ctx, "tenant-a", result.Pad.ScratchID, ReadView{})
	require.NoError(t, err)
	assert.Equal(t, "notes", got.Namespace)
	require.Len(t, got.Cells, 1)
	assert.Equal(t, "hello", got.Cells[0].Content)
}

func TestCreatePadDuplicateScratchID(t *testing.T) {
	st := openTestStore(t, Limits{})
	ctx := context.Background()

	pad := &model.Scratchpad{ScratchID: "fixed-id"}
	_, err := st.CreatePad(ctx, "tenant-a", pad, nil)
	require.NoError(t, err)

	dup := &model.Scratchpad{ScratchID: "fixed-id"}
	_, err = st.CreatePad(ctx, "tenant-a", dup, nil)
	require.Error(t, err)
	assert.Equal(t, errs.InvalidID, errs.CodeOf(err))
}

func TestReadPadNotFound(t *testing.T) {
	st := openTestStore(t, Limits{})
	_, err := st.ReadPad(context.Background(), "tenant-a", "missing", ReadView{})
	require.Error(t, err)
	assert.Equal(t, errs.NotFound, errs.CodeOf(err))
}

func TestTenantIsolation(t *testing.T) {
	st := openTestStore(t, Limits{})
	ctx := context.Background()

	res, err := st.CreatePad(ctx, "tenant-a", &model.Scratchpad{}, nil)
	require.NoError(t, err)

	_, err = st.ReadPad(ctx, "tenant-b", res.Pad.ScratchID, ReadView{})
	require.Error(t, err)
	assert.Equal(t, errs.NotFound, errs.CodeOf(err))
}

func TestListPadsFiltersByNamespaceAndTags(t *testing.T) {
	st := openTestStore(t, Limits{})
	ctx := context.Background()

	_, err := st.CreatePad(ctx, "tenant-a", &model.Scratchpad{Namespace: "work", Tags: model.NewStringSet([]string{"x"})}, nil)
	require.NoError(t, err)
	_, err = st.CreatePad(ctx, "tenant-a", &model.Scratchpad{Namespace: "home", Tags: model.NewStringSet([]string{"y"})}, nil)
	require.NoError(t, err)

	listed, err := st.ListPads(ctx, "tenant-a", []string{"work"}, nil, 0)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "work", listed[0].Namespace)

	listed, err = st.ListPads(ctx, "tenant-a", nil, []string{"y"}, 0)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "home", listed[0].Namespace)
}

func TestDeletePadIsIdempotent(t *testing.T) {
	st := openTestStore(t, Limits{})
	ctx := context.Background()

	res, err := st.CreatePad(ctx, "tenant-a", &model.Scratchpad{}, []model.Cell{{CellID: "c1", Language: model.LangTXT, Content: "x"}})
	require.NoError(t, err)

	deleted, err := st.DeletePad(ctx, "tenant-a", res.Pad.ScratchID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = st.DeletePad(ctx, "tenant-a", res.Pad.ScratchID)
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = st.ReadPad(ctx, "tenant-a", res.Pad.ScratchID, ReadView{})
	require.Error(t, err)
	assert.Equal(t, errs.NotFound, errs.CodeOf(err))
}

func TestCapacityPolicyFail(t *testing.T) {
	st := openTestStore(t, Limits{MaxScratchpads: 1, Policy: PolicyFail})
	ctx := context.Background()

	_, err := st.CreatePad(ctx, "tenant-a", &model.Scratchpad{}, nil)
	require.NoError(t, err)

	_, err = st.CreatePad(ctx, "tenant-a", &model.Scratchpad{}, nil)
	require.Error(t, err)
	assert.Equal(t, errs.CapacityLimitReached, errs.CodeOf(err))
}

func TestCapacityPolicyDiscardEvictsOldest(t *testing.T) {
	st := openTestStore(t, Limits{MaxScratchpads: 1, Policy: PolicyDiscard})
	ctx := context.Background()

	first, err := st.CreatePad(ctx, "tenant-a", &model.Scratchpad{}, nil)
	require.NoError(t, err)

	second, err := st.CreatePad(ctx, "tenant-a", &model.Scratchpad{}, nil)
	require.NoError(t, err)
	require.Len(t, second.Evicted, 1)
	assert.Equal(t, first.Pad.ScratchID, second.Evicted[0])

	_, err = st.ReadPad(ctx, "tenant-a", first.Pad.ScratchID, ReadView{})
	require.Error(t, err)
	assert.Equal(t, errs.NotFound, errs.CodeOf(err))
}

func TestCreatePadRejectsOversizedCell(t *testing.T) {
	st := openTestStore(t, Limits{MaxCellBytes: 4})
	ctx := context.Background()

	_, err := st.CreatePad(ctx, "tenant-a", &model.Scratchpad{}, []model.Cell{{CellID: "c1", Content: "too long"}})
	require.Error(t, err)
	assert.Equal(t, errs.CapacityLimitReached, errs.CodeOf(err))
}

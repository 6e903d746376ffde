package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/errs"
	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/model"
)

func TestNamespaceCreateAndList(t *testing.T) {
	st := openTestStore(t, Limits{})
	ctx := context.Background()

	require.NoError(t, st.NamespaceCreate(ctx, "tenant-a", "empty-ns"))

	list, err := st.NamespaceList(ctx, "tenant-a")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "empty-ns", list[0].Name)
}

func TestNamespaceCreateRejectsEmptyName(t *testing.T) {
	st := openTestStore(t, Limits{})
	err := st.NamespaceCreate(context.Background(), "tenant-a", "")
	require.Error(t, err)
	assert.Equal(t, errs.ValidationError, errs.CodeOf(err))
}

func TestNamespaceDeleteRequiresCascadeWhenNonEmpty(t *testing.T) {
	st := openTestStore(t, Limits{})
	ctx := context.Background()

	_, err := st.CreatePad(ctx, "tenant-a", &model.Scratchpad{Namespace: "work"}, nil)
	require.NoError(t, err)

	_, err = st.NamespaceDelete(ctx, "tenant-a", "work", false)
	require.Error(t, err)
	assert.Equal(t, errs.Conflict, errs.CodeOf(err))

	removed, err := st.NamespaceDelete(ctx, "tenant-a", "work", true)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}

func TestNamespaceRenameMigratesPads(t *testing.T) {
	st := openTestStore(t, Limits{})
	ctx := context.Background()

	res, err := st.CreatePad(ctx, "tenant-a", &model.Scratchpad{Namespace: "old"}, nil)
	require.NoError(t, err)

	migrated, err := st.NamespaceRename(ctx, "tenant-a", "old", "new", true)
	require.NoError(t, err)
	assert.Equal(t, 1, migrated)

	pad, err := st.ReadPad(ctx, "tenant-a", res.Pad.ScratchID, ReadView{})
	require.NoError(t, err)
	assert.Equal(t, "new", pad.Namespace)
}

func TestNamespaceRenameMigratesEmbeddingNamespace(t *testing.T) {
	st := openTestStore(t, Limits{})
	idx := &fakeIndex{}
	st.SetEmbedder(&fakeEmbedder{dim: 2}, idx)
	ctx := context.Background()

	res, err := st.CreatePad(ctx, "tenant-a", &model.Scratchpad{Namespace: "old"}, []model.Cell{
		{CellID: "c1", Content: "hello"},
	})
	require.NoError(t, err)

	_, err = st.NamespaceRename(ctx, "tenant-a", "old", "new", true)
	require.NoError(t, err)

	rows, err := st.AllEmbeddings(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "new", rows[0].Namespace)
	assert.Equal(t, res.Pad.ScratchID, rows[0].ScratchID)
}

func TestNamespaceRenameRejectsExistingTarget(t *testing.T) {
	st := openTestStore(t, Limits{})
	ctx := context.Background()

	require.NoError(t, st.NamespaceCreate(ctx, "tenant-a", "a"))
	require.NoError(t, st.NamespaceCreate(ctx, "tenant-a", "b"))

	_, err := st.NamespaceRename(ctx, "tenant-a", "a", "b", false)
	require.Error(t, err)
	assert.Equal(t, errs.Conflict, errs.CodeOf(err))
}

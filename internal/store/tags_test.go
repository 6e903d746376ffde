package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/model"
)

func TestListTagsUnionsPadAndCellTags(t *testing.T) {
	st := openTestStore(t, Limits{})
	ctx := context.Background()

	_, err := st.CreatePad(ctx, "tenant-a", &model.Scratchpad{Tags: model.NewStringSet([]string{"pad-tag"})}, []model.Cell{
		{CellID: "c1", Content: "x", Tags: model.NewStringSet([]string{"cell-tag"})},
	})
	require.NoError(t, err)

	listing, err := st.ListTags(ctx, "tenant-a", nil)
	require.NoError(t, err)
	assert.Contains(t, listing.ScratchpadTags, "pad-tag")
	assert.Contains(t, listing.CellTags, "cell-tag")
}

func TestListTagsRestrictsByNamespace(t *testing.T) {
	st := openTestStore(t, Limits{})
	ctx := context.Background()

	_, err := st.CreatePad(ctx, "tenant-a", &model.Scratchpad{Namespace: "work", Tags: model.NewStringSet([]string{"work-tag"})}, nil)
	require.NoError(t, err)
	_, err = st.CreatePad(ctx, "tenant-a", &model.Scratchpad{Namespace: "home", Tags: model.NewStringSet([]string{"home-tag"})}, nil)
	require.NoError(t, err)

	listing, err := st.ListTags(ctx, "tenant-a", []string{"work"})
	require.NoError(t, err)
	assert.Contains(t, listing.ScratchpadTags, "work-tag")
	assert.NotContains(t, listing.ScratchpadTags, "home-tag")
}

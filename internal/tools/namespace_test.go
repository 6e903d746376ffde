package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/errs"
)

func TestNamespaceCreateAndList(t *testing.T) {
	deps := newTestDeps(t)
	create := &NamespaceCreate{deps}
	list := &NamespaceList{deps}

	params, err := json.Marshal(map[string]any{"name": "work"})
	require.NoError(t, err)
	result, err := create.Execute(context.Background(), "tenant-a", params)
	require.NoError(t, err)
	require.False(t, result.IsError)

	listResult, err := list.Execute(context.Background(), "tenant-a", json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.Contains(t, listResult.Content[0].Text, "work")
}

func TestNamespaceDeleteRequiresCascadeWhenNonEmpty(t *testing.T) {
	deps := newTestDeps(t)
	create := &CreatePad{deps}
	del := &NamespaceDelete{deps}

	createParams, err := json.Marshal(map[string]any{"namespace": "work"})
	require.NoError(t, err)
	_, err = create.Execute(context.Background(), "tenant-a", createParams)
	require.NoError(t, err)

	delParams, err := json.Marshal(map[string]any{"name": "work"})
	require.NoError(t, err)
	result, err := del.Execute(context.Background(), "tenant-a", delParams)
	require.Error(t, err)
	assert.Equal(t, errs.Conflict, errs.CodeOf(err))
	assert.Nil(t, result)

	cascadeParams, err := json.Marshal(map[string]any{"name": "work", "cascade": true})
	require.NoError(t, err)
	result, err = del.Execute(context.Background(), "tenant-a", cascadeParams)
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, result.Content[0].Text, "\"pads_deleted\": 1")
}

func TestNamespaceRenameMigratesPads(t *testing.T) {
	deps := newTestDeps(t)
	create := &CreatePad{deps}
	rename := &NamespaceRename{deps}

	createParams, err := json.Marshal(map[string]any{"namespace": "work"})
	require.NoError(t, err)
	_, err = create.Execute(context.Background(), "tenant-a", createParams)
	require.NoError(t, err)

	renameParams, err := json.Marshal(map[string]any{"from": "work", "to": "projects", "migrate": true})
	require.NoError(t, err)
	result, err := rename.Execute(context.Background(), "tenant-a", renameParams)
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Contains(t, result.Content[0].Text, "\"pads_migrated\": 1")
}

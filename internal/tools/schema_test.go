package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/errs"
)

func TestUpsertSchemaAndGetSchema(t *testing.T) {
	deps := newTestDeps(t)
	create := &CreatePad{deps}
	upsert := &UpsertSchema{deps}
	get := &GetSchema{deps}

	createResult, err := create.Execute(context.Background(), "tenant-a", json.RawMessage(`{}`))
	require.NoError(t, err)
	var body struct {
		Pad struct {
			ScratchID string `json:"scratch_id"`
		} `json:"pad"`
	}
	require.NoError(t, json.Unmarshal([]byte(createResult.Content[0].Text), &body))

	upsertParams, err := json.Marshal(map[string]any{
		"scratch_id": body.Pad.ScratchID,
		"name":       "person",
		"schema":     map[string]any{"type": "object"},
	})
	require.NoError(t, err)

	result, err := upsert.Execute(context.Background(), "tenant-a", upsertParams)
	require.NoError(t, err)
	require.False(t, result.IsError)

	getParams, err := json.Marshal(map[string]any{"scratch_id": body.Pad.ScratchID, "name": "person"})
	require.NoError(t, err)
	getResult, err := get.Execute(context.Background(), "tenant-a", getParams)
	require.NoError(t, err)
	require.False(t, getResult.IsError)
	assert.Contains(t, getResult.Content[0].Text, "person")
}

func TestGetSchemaNotFoundReturnsError(t *testing.T) {
	deps := newTestDeps(t)
	create := &CreatePad{deps}
	get := &GetSchema{deps}

	createResult, err := create.Execute(context.Background(), "tenant-a", json.RawMessage(`{}`))
	require.NoError(t, err)
	var body struct {
		Pad struct {
			ScratchID string `json:"scratch_id"`
		} `json:"pad"`
	}
	require.NoError(t, json.Unmarshal([]byte(createResult.Content[0].Text), &body))

	params, err := json.Marshal(map[string]any{"scratch_id": body.Pad.ScratchID, "name": "missing"})
	require.NoError(t, err)
	result, err := get.Execute(context.Background(), "tenant-a", params)
	require.Error(t, err)
	assert.Equal(t, errs.NotFound, errs.CodeOf(err))
	assert.Nil(t, result)
}

func TestUpsertSchemaToolRejectsStructurallyInvalidSchema(t *testing.T) {
	deps := newTestDeps(t)
	create := &CreatePad{deps}
	upsert := &UpsertSchema{deps}

	createResult, err := create.Execute(context.Background(), "tenant-a", json.RawMessage(`{}`))
	require.NoError(t, err)
	var body struct {
		Pad struct {
			ScratchID string `json:"scratch_id"`
		} `json:"pad"`
	}
	require.NoError(t, json.Unmarshal([]byte(createResult.Content[0].Text), &body))

	params, err := json.Marshal(map[string]any{
		"scratch_id": body.Pad.ScratchID,
		"name":       "bad",
		"schema":     map[string]any{"type": 5},
	})
	require.NoError(t, err)

	result, err := upsert.Execute(context.Background(), "tenant-a", params)
	require.Error(t, err)
	assert.Equal(t, errs.ValidationError, errs.CodeOf(err))
	assert.Nil(t, result)
}

func TestListSchemasReturnsAll(t *testing.T) {
	deps := newTestDeps(t)
	create := &CreatePad{deps}
	upsert := &UpsertSchema{deps}
	list := &ListSchemas{deps}

	createResult, err := create.Execute(context.Background(), "tenant-a", json.RawMessage(`{}`))
	require.NoError(t, err)
	var body struct {
		Pad struct {
			ScratchID string `json:"scratch_id"`
		} `json:"pad"`
	}
	require.NoError(t, json.Unmarshal([]byte(createResult.Content[0].Text), &body))

	for _, name := range []string{"a", "b"} {
		params, err := json.Marshal(map[string]any{"scratch_id": body.Pad.ScratchID, "name": name, "schema": map[string]any{"type": "object"}})
		require.NoError(t, err)
		_, err = upsert.Execute(context.Background(), "tenant-a", params)
		require.NoError(t, err)
	}

	listParams, err := json.Marshal(map[string]any{"scratch_id": body.Pad.ScratchID})
	require.NoError(t, err)
	result, err := list.Execute(context.Background(), "tenant-a", listParams)
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Contains(t, result.Content[0].Text, "\"a\"")
	assert.Contains(t, result.Content[0].Text, "\"b\"")
}

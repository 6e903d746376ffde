package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/errs"
)

func TestValidateCellsToolReturnsPerCellResults(t *testing.T) {
	deps := newTestDepsWithPipeline(t)
	create := &CreatePad{deps}
	validateTool := &ValidateCells{deps}

	createParams, err := json.Marshal(map[string]any{
		"cells": []map[string]any{
			{"language": "json", "content": `{"ok": true}`},
			{"language": "json", "content": `{bad`},
		},
	})
	require.NoError(t, err)
	createResult, err := create.Execute(context.Background(), "tenant-a", createParams)
	require.NoError(t, err)
	var body struct {
		Pad struct {
			ScratchID string `json:"scratch_id"`
		} `json:"pad"`
	}
	require.NoError(t, json.Unmarshal([]byte(createResult.Content[0].Text), &body))

	params, err := json.Marshal(map[string]any{"scratch_id": body.Pad.ScratchID})
	require.NoError(t, err)
	result, err := validateTool.Execute(context.Background(), "tenant-a", params)
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Contains(t, result.Content[0].Text, "\"valid\": false")
}

func TestValidateCellsToolUnknownPadReturnsNotFound(t *testing.T) {
	deps := newTestDepsWithPipeline(t)
	validateTool := &ValidateCells{deps}

	params, err := json.Marshal(map[string]any{"scratch_id": "missing"})
	require.NoError(t, err)
	result, err := validateTool.Execute(context.Background(), "tenant-a", params)
	require.Error(t, err)
	assert.Equal(t, errs.NotFound, errs.CodeOf(err))
	assert.Nil(t, result)
}

package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/errs"
)

func TestSearchPadsDegradesWhenSearchDisabled(t *testing.T) {
	deps := newTestDeps(t)
	search := &SearchPads{deps}

	params, err := json.Marshal(map[string]any{"query": "anything"})
	require.NoError(t, err)
	result, err := search.Execute(context.Background(), "tenant-a", params)
	require.Error(t, err)
	assert.Equal(t, errs.ValidationError, errs.CodeOf(err))
	assert.Contains(t, err.Error(), "disabled")
	assert.Nil(t, result)
}


package validate

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/errs"
	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/metrics"
	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/model"
	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/workerpool"
)

func TestValidateCellsReturnsResultPerCell(t *testing.T) {
	p := New(workerpool.New(4), time.Second)
	cells := []model.Cell{
		{CellID: "c1", Language: model.LangJSON, Content: `{"a":1}`},
		{CellID: "c2", Language: model.LangJSON, Content: `{bad`},
	}
	results, err := p.ValidateCells(context.Background(), cells, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.True(t, results[0].Valid)
	assert.False(t, results[1].Valid)
}

func TestValidateCellsTimesOutAsWholeRequest(t *testing.T) {
	p := New(workerpool.New(1), time.Nanosecond)
	cells := []model.Cell{{CellID: "c1", Language: model.LangTXT, Content: "x"}}
	_, err := p.ValidateCells(context.Background(), cells, nil)
	require.Error(t, err)
	assert.Equal(t, errs.ValidationTimeout, errs.CodeOf(err))
}

func TestValidateCellSingle(t *testing.T) {
	p := New(workerpool.New(2), time.Second)
	res, err := p.ValidateCell(context.Background(), model.Cell{CellID: "c1", Language: model.LangTXT, Content: "hi"}, nil)
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Equal(t, "c1", res.CellID)
}

func TestValidateCellsRecordsOutcomeMetricsByLanguage(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	p := New(workerpool.New(4), time.Second)
	p.SetMetrics(m)

	cells := []model.Cell{
		{CellID: "c1", Language: model.LangJSON, Content: `{"a":1}`},
		{CellID: "c2", Language: model.LangJSON, Content: `{bad`},
	}
	_, err := p.ValidateCells(context.Background(), cells, nil)
	require.NoError(t, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.ValidationRuns.WithLabelValues("json", "valid")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ValidationRuns.WithLabelValues("json", "invalid")))
}

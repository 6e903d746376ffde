package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistersAllMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.PadsCreated.Inc()
	m.Evictions.WithLabelValues("discard").Inc()
	m.ToolCallDuration.WithLabelValues("scratch_create").Observe(0.01)
	m.ToolCallErrors.WithLabelValues("scratch_create", "NOT_FOUND").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["scratchmcp_pads_created_total"])
	assert.True(t, names["scratchmcp_evictions_total"])
	assert.True(t, names["scratchmcp_tool_call_duration_seconds"])
	assert.True(t, names["scratchmcp_tool_call_errors_total"])
}

func TestPadsCreatedCounterIncrements(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.PadsCreated.Inc()
	m.PadsCreated.Inc()

	var metric dto.Metric
	require.NoError(t, m.PadsCreated.Write(&metric))
	assert.Equal(t, float64(2), metric.GetCounter().GetValue())
}

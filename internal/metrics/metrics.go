// Package metrics exposes Prometheus instrumentation for the catalog and
// dispatch layers.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry bundles every metric the server emits, constructed once at
// startup and threaded through the components that update it.
type Registry struct {
	PadsCreated      prometheus.Counter
	PadsDeleted      prometheus.Counter
	CellsAppended    prometheus.Counter
	CellsReplaced    prometheus.Counter
	Evictions        *prometheus.CounterVec
	ValidationRuns   *prometheus.CounterVec
	SearchLatency    prometheus.Histogram
	ToolCallDuration *prometheus.HistogramVec
	ToolCallErrors   *prometheus.CounterVec
}

// New registers every metric against reg and returns the bundle.
func New(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)
	return &Registry{
		PadsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "scratchmcp",
			Name:      "pads_created_total",
			Help:      "Total scratchpads created.",
		}),
		PadsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "scratchmcp",
			Name:      "pads_deleted_total",
			Help:      "Total scratchpads deleted.",
		}),
		CellsAppended: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "scratchmcp",
			Name:      "cells_appended_total",
			Help:      "Total cells appended.",
		}),
		CellsReplaced: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "scratchmcp",
			Name:      "cells_replaced_total",
			Help:      "Total cells replaced.",
		}),
		Evictions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scratchmcp",
			Name:      "evictions_total",
			Help:      "Total pad evictions, by policy.",
		}, []string{"policy"}),
		ValidationRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scratchmcp",
			Name:      "validation_runs_total",
			Help:      "Total cell validations, by language and outcome.",
		}, []string{"language", "outcome"}),
		SearchLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "scratchmcp",
			Name:      "search_latency_seconds",
			Help:      "Semantic search request latency.",
			Buckets:   prometheus.DefBuckets,
		}),
		ToolCallDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "scratchmcp",
			Name:      "tool_call_duration_seconds",
			Help:      "MCP tool call latency, by tool name.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"tool"}),
		ToolCallErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scratchmcp",
			Name:      "tool_call_errors_total",
			Help:      "Total MCP tool call errors, by tool name and error code.",
		}, []string{"tool", "code"}),
	}
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QueriesCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travel_queries_completed_total",
			Help: "Total number of travel queries answered",
		},
		[]string{"status"},
	)

	QueryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "travel_query_duration_seconds",
			Help:    "Wall-clock duration of one agent run",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)

	ToolCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travel_tool_calls_total",
			Help: "Tool invocations dispatched by the agent loop",
		},
		[]string{"tool"},
	)

	AgentSteps = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "travel_agent_steps",
			Help:    "Model round trips taken per query",
			Buckets: prometheus.LinearBuckets(1, 1, 15),
		},
	)
)

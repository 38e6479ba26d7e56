// Package metrics 声明通过 /metrics 暴露的 prometheus 指标。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ChatMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_messages_total",
			Help: "Messages appended to chat transcripts by sender",
		},
		[]string{"sender"},
	)

	ChatIntents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_intents_total",
			Help: "Classification outcomes by knowledge-base rule, fallback for no match",
		},
		[]string{"rule"},
	)

	ChatSessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_sessions_active",
			Help: "Open chat sessions",
		},
	)

	FunnelStages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "funnel_stage_reached_total",
			Help: "Funnel runs reaching a stage",
		},
		[]string{"funnel", "stage"},
	)

	FunnelRunsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "funnel_runs_active",
			Help: "Open funnel runs per funnel",
		},
		[]string{"funnel"},
	)

	LeadCollectorPosts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_collector_posts_total",
			Help: "Lead collector post attempts by outcome",
		},
		[]string{"source", "outcome"},
	)

	LeadCollectorDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "lead_collector_post_duration_seconds",
			Help: "Duration of lead collector posts in seconds",
		},
	)

	Handoffs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "handoffs_total",
			Help: "Handoff links produced by source widget",
		},
		[]string{"source"},
	)
)

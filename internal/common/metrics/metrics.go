// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ChatTurns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_turns_total",
			Help: "Chat turns processed, by outcome",
		},
		[]string{"outcome"},
	)

	ChatTurnDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chat_turn_duration_seconds",
			Help:    "End to end duration of a chat turn in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		},
		[]string{"outcome"},
	)

	ChatTurnsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_turns_active",
			Help: "Chat turns currently in flight",
		},
	)

	CapturesExtracted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_captures_total",
			Help: "Structured markers parsed from generated replies, by kind",
		},
		[]string{"kind"},
	)

	MarkerParseFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_marker_parse_failures_total",
			Help: "Markers dropped because their payload was not a JSON object",
		},
		[]string{"kind"},
	)

	RecordWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_record_writes_total",
			Help: "Best-effort record writes, by record and outcome",
		},
		[]string{"record", "outcome"},
	)

	NotificationsRelayed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_relayed_total",
			Help: "Notification deliveries attempted by the relay, by channel and outcome",
		},
		[]string{"channel", "outcome"},
	)
)

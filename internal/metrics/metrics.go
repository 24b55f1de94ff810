package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Room Metrics
var (
	// RoomsActive tracks rooms currently held by the directory
	RoomsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "poll_rooms_active",
			Help: "Number of rooms held by the directory",
		},
	)

	// RoomsRefusedTotal counts connections refused because the room ceiling was reached
	RoomsRefusedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "poll_rooms_refused_total",
			Help: "Connections refused because the room capacity was exceeded",
		},
	)
)

// Action Metrics
var (
	// ActionsTotal counts applied actions by kind and outcome
	ActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poll_actions_total",
			Help: "Actions processed by kind and outcome (applied/noop/rejected/unauthorized)",
		},
		[]string{"kind", "outcome"},
	)

	// MessagesDroppedTotal counts inbound messages that did not parse into an action
	MessagesDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "poll_messages_dropped_total",
			Help: "Inbound messages dropped as malformed or of unknown type",
		},
	)
)

// WebSocket Metrics
var (
	// SubscribersConnected tracks currently connected subscribers across all rooms
	SubscribersConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "poll_subscribers_connected",
			Help: "Subscribers currently connected across all rooms",
		},
	)

	// FramesSentTotal counts frames written to the wire
	FramesSentTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "poll_frames_sent_total",
			Help: "Outbound frames written to WebSocket connections",
		},
	)

	// WriteErrorsTotal counts failed outbound writes
	WriteErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "poll_write_errors_total",
			Help: "Outbound WebSocket writes that failed",
		},
	)
)

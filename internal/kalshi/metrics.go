package kalshi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActiveConnections reports whether the WebSocket feed is currently up.
	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sportsbook_arb_kalshi_ws_active_connections",
		Help: "1 if the Kalshi WebSocket connection is up, 0 otherwise",
	})

	// MessagesReceivedTotal counts received WebSocket messages by type.
	MessagesReceivedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sportsbook_arb_kalshi_ws_messages_received_total",
		Help: "Total WebSocket messages received, by message type",
	}, []string{"type"})

	// MessagesDroppedTotal counts WebSocket messages dropped, by reason
	// (e.g. a parse error).
	MessagesDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sportsbook_arb_kalshi_ws_messages_dropped_total",
		Help: "Total WebSocket messages dropped, by reason",
	}, []string{"reason"})

	// ReconnectAttemptsTotal counts reconnection attempts.
	ReconnectAttemptsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sportsbook_arb_kalshi_ws_reconnect_attempts_total",
		Help: "Total WebSocket reconnection attempts",
	})

	// ReconnectFailuresTotal counts failed reconnection attempts.
	ReconnectFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sportsbook_arb_kalshi_ws_reconnect_failures_total",
		Help: "Total failed WebSocket reconnection attempts",
	})

	// HTTPRequestsTotal counts signed REST requests by path and outcome.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sportsbook_arb_kalshi_http_requests_total",
		Help: "Total signed Kalshi REST requests",
	}, []string{"path", "outcome"})
)

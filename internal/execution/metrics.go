package execution

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OrdersSubmittedTotal tracks order submissions by time-in-force and mode.
	OrdersSubmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportsbook_arb_execution_orders_submitted_total",
			Help: "Total number of orders submitted, by time-in-force and mode",
		},
		[]string{"tif", "mode"},
	)

	// OrdersCancelledTotal tracks successful cancellations (including 404-as-success).
	OrdersCancelledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sportsbook_arb_execution_orders_cancelled_total",
		Help: "Total number of orders cancelled",
	})

	// OrderSubmitDurationSeconds tracks submission latency.
	OrderSubmitDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sportsbook_arb_execution_order_submit_duration_seconds",
		Help:    "Duration of order submission requests",
		Buckets: prometheus.DefBuckets,
	})

	// ExecutionErrorsByKind tracks execution failures by errkind.Kind.
	ExecutionErrorsByKind = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportsbook_arb_execution_errors_total",
			Help: "Total number of execution errors, by classified kind",
		},
		[]string{"kind"},
	)
)

package orderbook

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UpdatesTotal tracks orderbook updates by event type (snapshot/delta).
	UpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportsbook_arb_orderbook_updates_total",
			Help: "Total number of orderbook updates applied",
		},
		[]string{"event_type"},
	)

	// BooksTracked tracks the number of order books currently held in memory.
	BooksTracked = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sportsbook_arb_orderbook_books_tracked",
		Help: "Number of tickers with an order book tracked in memory",
	})

	// UpdatesDroppedTotal tracks orderbook updates dropped due to a full
	// notification channel.
	UpdatesDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportsbook_arb_orderbook_updates_dropped_total",
			Help: "Total number of orderbook updates dropped due to channel full",
		},
		[]string{"reason"},
	)

	// UpdateProcessingDuration tracks orderbook update processing time.
	UpdateProcessingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sportsbook_arb_orderbook_update_processing_duration_seconds",
		Help:    "Time to process an orderbook update (parse + apply + notify)",
		Buckets: []float64{0.0001, 0.0002, 0.0005, 0.001, 0.002, 0.005, 0.01, 0.025, 0.05, 0.1},
	})
)

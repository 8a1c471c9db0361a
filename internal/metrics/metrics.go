// Package metrics exposes Prometheus metrics for the paper trading engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Order and fill metrics.
var (
	OrdersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "papertrader_orders_total",
		Help: "Equity orders placed, by symbol, side and resulting status.",
	}, []string{"symbol", "side", "status"})

	OptionOrdersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "papertrader_option_orders_total",
		Help: "Option orders placed, by underlying, side and resulting status.",
	}, []string{"symbol", "side", "status"})

	TradesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "papertrader_trades_total",
		Help: "Fills recorded, by symbol and side.",
	}, []string{"symbol", "side"})

	OrderRejectsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "papertrader_order_rejects_total",
		Help: "Orders rejected before or during fill, by reason.",
	}, []string{"reason"})
)

// Sweep metrics.
var (
	SweepsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "papertrader_sweeps_total",
		Help: "Re-evaluation sweeps executed.",
	})

	SweepFillsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "papertrader_sweep_fills_total",
		Help: "Open orders filled by re-evaluation sweeps.",
	})

	SweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "papertrader_sweep_duration_seconds",
		Help:    "Duration of re-evaluation sweeps.",
		Buckets: prometheus.DefBuckets,
	})
)

// Quote metrics.
var (
	QuoteErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "papertrader_quote_errors_total",
		Help: "Quote lookups that failed, by symbol.",
	}, []string{"symbol"})

	QuoteLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "papertrader_quote_latency_seconds",
		Help:    "Latency of quote lookups.",
		Buckets: prometheus.DefBuckets,
	})
)

// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
// Create exactly once per process; promauto registers into the default registry.
type Metrics struct {
	// Intake metrics
	EventsAccepted     prometheus.Counter
	EventsDeduplicated prometheus.Counter
	ParseFailures      prometheus.Counter
	PoolsParsed        prometheus.Counter

	// Scheduler metrics
	PoolsPostponed   prometheus.Counter
	PostponeTooLong  prometheus.Counter
	PendingPostpones prometheus.Gauge

	// Safety metrics
	SafetyStatuses  *prometheus.CounterVec
	BlacklistHits   prometheus.Counter
	BurnWaitResults *prometheus.CounterVec
	ActiveBurnWaits prometheus.Gauge

	// Trend metrics
	DumpsDetected prometheus.Counter
	TrendOutcomes *prometheus.CounterVec
	TrendFailures prometheus.Counter

	// Trading metrics
	TradesApproved prometheus.Counter
	TradesSkipped  *prometheus.CounterVec
	TradeProfit    prometheus.Histogram
	WalletBalance  prometheus.Gauge
	WalletProfit   prometheus.Gauge

	// Solana client metrics
	WSReconnects prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "solana_sniper"
	}

	return &Metrics{
		EventsAccepted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "intake",
			Name:      "events_accepted_total",
			Help:      "Total number of pool events that passed the marker filter and dedup",
		}),
		EventsDeduplicated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "intake",
			Name:      "events_deduplicated_total",
			Help:      "Total number of pool events dropped as duplicate signatures",
		}),
		ParseFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "intake",
			Name:      "parse_failures_total",
			Help:      "Total number of creation events that failed to parse",
		}),
		PoolsParsed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "intake",
			Name:      "pools_parsed_total",
			Help:      "Total number of pools successfully parsed",
		}),

		PoolsPostponed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "pools_postponed_total",
			Help:      "Total number of pools held for a future start time",
		}),
		PostponeTooLong: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "postpone_too_long_total",
			Help:      "Total number of pools rejected for a start time past the ceiling",
		}),
		PendingPostpones: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "pending_postpones",
			Help:      "Current number of pools waiting for their start time",
		}),

		SafetyStatuses: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "safety",
			Name:      "statuses_total",
			Help:      "Total number of completed safety classifications by status",
		}, []string{"status"}),
		BlacklistHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "safety",
			Name:      "blacklist_hits_total",
			Help:      "Total number of pools skipped for a blacklisted creator",
		}),
		BurnWaitResults: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "safety",
			Name:      "burn_wait_results_total",
			Help:      "Burn-wait race outcomes: burned or timeout",
		}, []string{"outcome"}),
		ActiveBurnWaits: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "safety",
			Name:      "active_burn_waits",
			Help:      "Current number of live LP-mint supply subscriptions",
		}),

		DumpsDetected: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trend",
			Name:      "dumps_detected_total",
			Help:      "Total number of pools skipped on dump detection",
		}),
		TrendOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trend",
			Name:      "outcomes_total",
			Help:      "Total number of trend classifications by outcome",
		}, []string{"trend"}),
		TrendFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trend",
			Name:      "failures_total",
			Help:      "Total number of trade-history fetches that failed",
		}),

		TradesApproved: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trading",
			Name:      "trades_approved_total",
			Help:      "Total number of pools approved for a trade cycle",
		}),
		TradesSkipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trading",
			Name:      "trades_skipped_total",
			Help:      "Total number of pools skipped at the decision engine by reason",
		}, []string{"reason"}),
		TradeProfit: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "trading",
			Name:      "trade_profit_ratio",
			Help:      "Per-trade profit as a ratio of the entry size",
			Buckets:   []float64{-1, -0.5, -0.2, 0, 0.1, 0.2, 0.3, 0.5, 0.9, 2},
		}),
		WalletBalance: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "trading",
			Name:      "wallet_balance_sol",
			Help:      "Current trading wallet balance in SOL",
		}),
		WalletProfit: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "trading",
			Name:      "wallet_total_profit_ratio",
			Help:      "Total wallet profit relative to the starting balance",
		}),

		WSReconnects: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "ws_reconnects_total",
			Help:      "Total number of WebSocket reconnect attempts",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

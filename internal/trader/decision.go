// Package trader turns a completed safety assessment and trend reading
// into a trade-or-skip verdict and runs the resulting buy+sell cycle.
package trader

import (
	"fmt"
	"log"
	"strings"

	"solana-sniper-bot/internal/domain"
	"solana-sniper-bot/internal/observability"
)

// DecisionInput is everything the decision engine looks at for one pool.
type DecisionInput struct {
	Pool     *domain.ParsedPool
	Status   domain.SafetyStatus
	Dump     []domain.TradeRecord  // offending pair when a dump was detected
	Analysis *domain.TrendAnalysis // nil when trade history could not be fetched
}

// DecisionEngine is the final gate before trading.
type DecisionEngine struct {
	safeVolatilityRate float64
	safeBuysCount      int
	logger             *log.Logger
	metrics            *observability.Metrics
}

// DecisionEngineOptions contains configuration for creating a DecisionEngine.
type DecisionEngineOptions struct {
	SafeVolatilityRate float64 // Default: 1.0
	SafeBuysCount      int     // Default: 40
	Logger             *log.Logger
	Metrics            *observability.Metrics
}

// NewDecisionEngine creates a DecisionEngine.
func NewDecisionEngine(opts DecisionEngineOptions) *DecisionEngine {
	rate := opts.SafeVolatilityRate
	if rate == 0 {
		rate = 1.0
	}

	buys := opts.SafeBuysCount
	if buys == 0 {
		buys = 40
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &DecisionEngine{
		safeVolatilityRate: rate,
		safeBuysCount:      buys,
		logger:             logger,
		metrics:            opts.Metrics,
	}
}

// Decide evaluates the decision tree. Non-GREEN pools only trade into a
// confirmed pump with calm volatility and real buying interest; GREEN
// pools also trade sideways markets.
func (e *DecisionEngine) Decide(in DecisionInput) domain.TradingVerdict {
	if in.Status == domain.StatusRed {
		// Should have been filtered out before this stage
		e.logger.Printf("[trader] BUG: RED pool %s reached the decision engine", in.Pool.PoolID)
		return e.skip(in, "RED token reached the decision engine")
	}

	if len(in.Dump) == 2 {
		if e.metrics != nil {
			e.metrics.DumpsDetected.Inc()
		}
		reason := fmt.Sprintf("Already dumped. TX1: https://solscan.io/tx/%s TX2: https://solscan.io/tx/%s",
			in.Dump[0].Signature, in.Dump[1].Signature)
		return e.skip(in, reason)
	}

	if in.Analysis == nil {
		return e.skip(in, "Couldn't fetch trades")
	}

	if in.Status == domain.StatusGreen {
		if in.Analysis.Trend == domain.TrendPumping || in.Analysis.Trend == domain.TrendEquilibrium {
			return e.approve(in)
		}
		return e.skip(in, "Trend is DUMPING")
	}

	if in.Analysis.Trend != domain.TrendPumping {
		return e.skip(in, "Trend is DUMPING")
	}

	if in.Analysis.Volatility > e.safeVolatilityRate {
		return e.skip(in, fmt.Sprintf("Not GREEN token and Price volatility is to high %v", in.Analysis.Volatility))
	}

	if in.Analysis.BuysCount < e.safeBuysCount {
		return e.skip(in, fmt.Sprintf("Not GREEN token and Very little BUY txs %d", in.Analysis.BuysCount))
	}

	return e.approve(in)
}

func (e *DecisionEngine) approve(in DecisionInput) domain.TradingVerdict {
	if e.metrics != nil {
		e.metrics.TradesApproved.Inc()
	}
	e.logger.Printf("[trader] pool %s approved for trading, status %s", in.Pool.PoolID, in.Status)
	return domain.TradingVerdict{TradeApproved: true, Status: in.Status, Reason: string(in.Status)}
}

func (e *DecisionEngine) skip(in DecisionInput, reason string) domain.TradingVerdict {
	if e.metrics != nil {
		e.metrics.TradesSkipped.WithLabelValues(skipLabel(reason)).Inc()
	}
	e.logger.Printf("[trader] pool %s skipped: %s", in.Pool.PoolID, reason)
	return domain.TradingVerdict{TradeApproved: false, Status: in.Status, Reason: reason}
}

// skipLabel collapses formatted reasons into a bounded metric label set.
func skipLabel(reason string) string {
	switch {
	case strings.HasPrefix(reason, "Already dumped"):
		return "dump"
	case reason == "Couldn't fetch trades":
		return "no_trades"
	case reason == "Trend is DUMPING":
		return "trend"
	case strings.Contains(reason, "volatility"):
		return "volatility"
	case strings.Contains(reason, "BUY txs"):
		return "low_buys"
	default:
		return "other"
	}
}

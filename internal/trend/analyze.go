// Package trend classifies short-term price movement of a pool from its
// trade history: dump detection first, then growth-rate analysis over the
// opening window.
package trend

import (
	"math"

	"solana-sniper-bot/internal/domain"
)

// AnalyzeOptions are the tunable boundaries of trend analysis.
type AnalyzeOptions struct {
	WindowSeconds    int64   // analyze trades within this many seconds of the first trade
	OnlyBuys         bool    // drop SELL trades before computing growth rates
	LargeBetSOL      float64 // drop trades priced above this, 0 disables the filter
	GrowthEpsilon    float64 // growth-rate magnitude below this is EQUILIBRIUM
	DumpThresholdPct float64 // adjacent price drop percentage that counts as a dump
}

// DefaultAnalyzeOptions returns the production analysis boundaries.
func DefaultAnalyzeOptions() AnalyzeOptions {
	return AnalyzeOptions{
		WindowSeconds:    60,
		OnlyBuys:         true,
		LargeBetSOL:      2,
		GrowthEpsilon:    0.001,
		DumpThresholdPct: 50,
	}
}

// FindDumpingRecord scans the trade history backward for the most recent
// adjacent pair where a SELL is followed by a price drop at or past the
// threshold. Returns the offending pair, or nil when no dump is found.
// Trades must be ordered ascending by time.
func FindDumpingRecord(trades []domain.TradeRecord, thresholdPct float64) []domain.TradeRecord {
	for i := len(trades) - 1; i >= 1; i-- {
		next := trades[i]
		current := trades[i-1]
		if current.Type != domain.TradeSell || current.PriceSOL == 0 {
			continue
		}
		changePct := (next.PriceSOL - current.PriceSOL) / current.PriceSOL * 100
		if changePct <= -thresholdPct {
			return []domain.TradeRecord{current, next}
		}
	}
	return nil
}

// AnalyzeTrend computes growth rate and volatility over the opening window
// of the trade history and classifies the movement. Fewer than two trades
// surviving the filter yields zero rates and EQUILIBRIUM, never NaN.
// Trades must be ordered ascending by time.
func AnalyzeTrend(trades []domain.TradeRecord, opts AnalyzeOptions) domain.TrendAnalysis {
	if len(trades) == 0 {
		return domain.TrendAnalysis{Trend: domain.TrendEquilibrium}
	}

	windowEnd := int64(math.MaxInt64)
	if opts.WindowSeconds > 0 {
		windowEnd = trades[0].EpochTime + opts.WindowSeconds
	}

	filtered := make([]domain.TradeRecord, 0, len(trades))
	for _, tr := range trades {
		if tr.EpochTime > windowEnd {
			continue
		}
		if opts.OnlyBuys && tr.Type != domain.TradeBuy {
			continue
		}
		if opts.LargeBetSOL > 0 && tr.PriceSOL > opts.LargeBetSOL {
			continue
		}
		filtered = append(filtered, tr)
	}

	if len(filtered) < 2 {
		return domain.TrendAnalysis{Trend: domain.TrendEquilibrium, BuysCount: len(filtered)}
	}

	growthRates := make([]float64, 0, len(filtered)-1)
	for i := 1; i < len(filtered); i++ {
		prev := filtered[i-1].PriceSOL
		if prev == 0 {
			continue
		}
		growthRates = append(growthRates, (filtered[i].PriceSOL-prev)/prev)
	}
	if len(growthRates) == 0 {
		return domain.TrendAnalysis{Trend: domain.TrendEquilibrium, BuysCount: len(filtered)}
	}

	var sum float64
	for _, r := range growthRates {
		sum += r
	}
	avg := sum / float64(len(growthRates))

	classified := domain.TrendEquilibrium
	switch {
	case avg >= opts.GrowthEpsilon:
		classified = domain.TrendPumping
	case avg <= -opts.GrowthEpsilon:
		classified = domain.TrendDumping
	}

	return domain.TrendAnalysis{
		Trend:             classified,
		AverageGrowthRate: avg,
		Volatility:        stddev(growthRates, avg),
		BuysCount:         len(filtered),
	}
}

// stddev is the population standard deviation around a known mean.
func stddev(values []float64, mean float64) float64 {
	var sum float64
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

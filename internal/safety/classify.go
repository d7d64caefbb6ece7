package safety

import (
	"fmt"

	"solana-sniper-bot/internal/domain"
)

// Thresholds are the tunable boundaries of the classification table.
// The branch order and the >=/< boundary semantics are fixed.
type Thresholds struct {
	LiquidityLowUSD    float64 // below this liquidity is suspicious
	LiquidityHighUSD   float64 // above this liquidity is suspicious
	MinPoolPercent     float64 // below this share of supply in pool -> RED
	MintableYellowBand float64 // mintable tokens need at least this share for YELLOW
	AllInPoolPercent   float64 // at or above this share the pool holds ~all supply
}

// DefaultThresholds returns the production boundary values.
func DefaultThresholds() Thresholds {
	return Thresholds{
		LiquidityLowUSD:    500,
		LiquidityHighUSD:   100_000_000,
		MinPoolPercent:     0.1,
		MintableYellowBand: 0.95,
		AllInPoolPercent:   0.99,
	}
}

// Classify derives the safety status from a completed measurement and the
// liquidity-lock flag. Pure and deterministic.
func Classify(data *domain.PoolSafetyData, liquidityLocked bool, th Thresholds) (domain.SafetyStatus, string) {
	// Both extremes are suspicious: dust pools and fake whale liquidity
	if data.TotalLiquidity.AmountUSD < th.LiquidityLowUSD || data.TotalLiquidity.AmountUSD > th.LiquidityHighUSD {
		return domain.StatusRed,
			fmt.Sprintf("Liquidity is too low or too high. %v %s", data.TotalLiquidity.Amount, data.TotalLiquidity.Symbol)
	}

	if !liquidityLocked {
		// Unlocked liquidity can be pulled at any time
		return domain.StatusRed, "Liquidity is not locked"
	}

	pct := data.PoolTokenPercent
	switch {
	case pct >= th.AllInPoolPercent:
		if data.Ownership.IsMintable {
			return domain.StatusYellow, "Most of the tokens are in pool, but token is still mintable"
		}
		return domain.StatusGreen, "Liquidity is locked. Token is not mintable. Green light"

	case pct >= th.MinPoolPercent:
		if !data.Ownership.IsMintable {
			return domain.StatusYellow, "At least 80% of the tokens are in pool, and token is not mintable"
		}
		if pct >= th.MintableYellowBand {
			return domain.StatusYellow, ">95% of tokens are in pool, but token is still mintable"
		}
		return domain.StatusRed, "Many tokens are not in pool and token is mintable"

	default:
		return domain.StatusRed,
			fmt.Sprintf("Less then %v%% of tokens are in pool.", th.MinPoolPercent*100)
	}
}

package domain

import "time"

// ExitStrategy controls the sell side of a trade cycle: how long to hold,
// what profit to chase, and how often to re-quote the position.
type ExitStrategy struct {
	ExitTimeout        time.Duration
	TargetProfit       float64 // 0.29 means +29%
	ProfitPollInterval time.Duration
}

// Exit strategies keyed by safety status. YELLOW pools get a shorter window
// since the owner can dump at any moment.
var (
	SafeExitStrategy = ExitStrategy{
		ExitTimeout:        30 * time.Minute,
		TargetProfit:       0.29,
		ProfitPollInterval: 500 * time.Millisecond,
	}
	DangerousExitStrategy = ExitStrategy{
		ExitTimeout:        10 * time.Minute,
		TargetProfit:       0.19,
		ProfitPollInterval: 500 * time.Millisecond,
	}
	TurboExitStrategy = ExitStrategy{
		ExitTimeout:        1 * time.Minute,
		TargetProfit:       0.89,
		ProfitPollInterval: 50 * time.Millisecond,
	}
)

// ExitStrategyFor returns the exit strategy for a tradable status.
// RED has no strategy; the second return is false.
func ExitStrategyFor(status SafetyStatus) (ExitStrategy, bool) {
	switch status {
	case StatusGreen:
		return SafeExitStrategy, true
	case StatusYellow:
		return DangerousExitStrategy, true
	case StatusTurbo:
		return TurboExitStrategy, true
	default:
		return ExitStrategy{}, false
	}
}

// BuyAmountFor returns the SOL entry size for a tradable status.
func BuyAmountFor(status SafetyStatus) (float64, bool) {
	switch status {
	case StatusGreen:
		return 0.3, true
	case StatusYellow:
		return 0.2, true
	case StatusTurbo:
		return 0.1, true
	default:
		return 0, false
	}
}

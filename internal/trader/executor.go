package trader

import (
	"context"
	"log"
	"time"

	"solana-sniper-bot/internal/domain"
	"solana-sniper-bot/internal/observability"
)

// Swapper executes swaps against a pool.
type Swapper interface {
	// Buy spends solAmount and returns the token amount received.
	Buy(ctx context.Context, pool *domain.ParsedPool, solAmount float64) (tokenAmount float64, txID string, err error)

	// Sell swaps tokenAmount back and returns the SOL received.
	Sell(ctx context.Context, pool *domain.ParsedPool, tokenAmount float64) (solAmount float64, txID string, err error)
}

// Quoter computes the expected SOL output of selling tokenAmount into the
// pool right now, without executing anything.
type Quoter interface {
	ComputeAmountOut(ctx context.Context, pool *domain.ParsedPool, tokenAmount float64) (float64, error)
}

// stopLossRate closes the position once the paper loss reaches half the
// entry, regardless of the exit strategy.
const stopLossRate = -0.5

// sellAttempts bounds how many times a live sell is retried. Bailing out
// here means holding a worthless position, so the bound is generous.
const sellAttempts = 20

// Executor runs one buy+sell cycle per approved pool. In simulation mode
// the sell is the last quoted value instead of a real swap.
type Executor struct {
	swapper     Swapper
	quoter      Quoter
	simulate    bool
	fixedBuySOL float64
	logger      *log.Logger
	metrics     *observability.Metrics
}

// ExecutorOptions contains configuration for creating an Executor.
type ExecutorOptions struct {
	Swapper  Swapper
	Quoter   Quoter
	Simulate bool
	// FixedBuySOL overrides the per-status entry size when positive.
	FixedBuySOL float64
	Logger      *log.Logger
	Metrics     *observability.Metrics
}

// NewExecutor creates an Executor.
func NewExecutor(opts ExecutorOptions) *Executor {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Executor{
		swapper:     opts.Swapper,
		quoter:      opts.Quoter,
		simulate:    opts.Simulate,
		fixedBuySOL: opts.FixedBuySOL,
		logger:      logger,
		metrics:     opts.Metrics,
	}
}

// Execute buys into the pool with the status-determined entry size, waits
// for the exit strategy's target profit or timeout, and sells. Every
// outcome is a TradeResult; failures are recorded, not raised.
func (e *Executor) Execute(ctx context.Context, pool *domain.ParsedPool, status domain.SafetyStatus) domain.TradeResult {
	buyAmount, ok := domain.BuyAmountFor(status)
	strategy, ok2 := domain.ExitStrategyFor(status)
	if !ok || !ok2 {
		return failed(0, "RED coin")
	}
	if e.fixedBuySOL > 0 {
		buyAmount = e.fixedBuySOL
	}

	if !pool.HasSOLSide() {
		return failed(0, "No SOL in pair")
	}

	buyTime := time.Now()
	tokens, buyTx, err := e.swapper.Buy(ctx, pool, buyAmount)
	if err != nil {
		e.logger.Printf("[trader] pool %s: buy failed: %v", pool.PoolID, err)
		res := failed(0, "Buy transaction failed")
		res.BuyTime = buyTime.UnixMilli()
		return res
	}
	e.logger.Printf("[trader] pool %s: bought %v tokens for %v SOL (%s)", pool.PoolID, tokens, buyAmount, buyTx)

	soldForSOL, profit := e.waitForProfitOrTimeout(ctx, pool, buyAmount, tokens, strategy)

	sellTx := "Simulation"
	if !e.simulate {
		soldForSOL, sellTx, err = e.sellWithRetry(ctx, pool, tokens)
		if err != nil {
			e.logger.Printf("[trader] pool %s: sell failed: %v", pool.PoolID, err)
			res := failed(buyAmount, "Sell transaction failed")
			res.BuyTime = buyTime.UnixMilli()
			return res
		}
		profit = (soldForSOL - buyAmount) / buyAmount
	}

	if e.metrics != nil {
		e.metrics.TradeProfit.Observe(profit)
	}

	return domain.TradeResult{
		Success:      true,
		TxID:         sellTx,
		BoughtForSOL: buyAmount,
		SoldForSOL:   soldForSOL,
		Profit:       profit,
		BuyTime:      buyTime.UnixMilli(),
		SellTime:     time.Now().UnixMilli(),
	}
}

// waitForProfitOrTimeout polls the quoter until the position reaches the
// target profit, hits the stop loss, or the exit window closes. The last
// observed quote wins on timeout; once decided, no later quote matters.
func (e *Executor) waitForProfitOrTimeout(ctx context.Context, pool *domain.ParsedPool, spent, tokens float64, strategy domain.ExitStrategy) (amountOut, profit float64) {
	timer := time.NewTimer(strategy.ExitTimeout)
	defer timer.Stop()
	ticker := time.NewTicker(strategy.ProfitPollInterval)
	defer ticker.Stop()

	for {
		out, err := e.quoter.ComputeAmountOut(ctx, pool, tokens)
		if err == nil {
			amountOut = out
			profit = (out - spent) / spent
			if profit >= strategy.TargetProfit {
				e.logger.Printf("[trader] pool %s: target profit hit: %v", pool.PoolID, profit)
				return amountOut, profit
			}
			if profit <= stopLossRate {
				e.logger.Printf("[trader] pool %s: stop loss hit: %v", pool.PoolID, profit)
				return amountOut, profit
			}
		}

		select {
		case <-ctx.Done():
			return amountOut, profit
		case <-timer.C:
			e.logger.Printf("[trader] pool %s: exit window closed, profit to take %v", pool.PoolID, profit)
			return amountOut, profit
		case <-ticker.C:
		}
	}
}

func (e *Executor) sellWithRetry(ctx context.Context, pool *domain.ParsedPool, tokens float64) (float64, string, error) {
	var lastErr error
	for attempt := 1; attempt <= sellAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return 0, "", err
		}
		sol, txID, err := e.swapper.Sell(ctx, pool, tokens)
		if err == nil {
			return sol, txID, nil
		}
		lastErr = err
		e.logger.Printf("[trader] pool %s: sell attempt %d failed: %v", pool.PoolID, attempt, err)
	}
	return 0, "", lastErr
}

func failed(boughtForSOL float64, reason string) domain.TradeResult {
	return domain.TradeResult{
		Success:      false,
		BoughtForSOL: boughtForSOL,
		Reason:       reason,
	}
}

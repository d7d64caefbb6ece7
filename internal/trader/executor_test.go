package trader

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"solana-sniper-bot/internal/domain"
)

type fakeQuoter struct {
	quotes []float64 // per-token price sequence, last value repeats
	calls  int32
	err    error
}

func (q *fakeQuoter) ComputeAmountOut(ctx context.Context, pool *domain.ParsedPool, tokenAmount float64) (float64, error) {
	if q.err != nil {
		return 0, q.err
	}
	n := int(atomic.AddInt32(&q.calls, 1)) - 1
	if n >= len(q.quotes) {
		n = len(q.quotes) - 1
	}
	return q.quotes[n] * tokenAmount, nil
}

type fakeSwapper struct {
	tokensBought float64
	buyErr       error
	sellSOL      float64
	sellErrs     int32 // this many sell attempts fail before one succeeds
	sellCalls    int32
	lastBuySOL   float64
}

func (s *fakeSwapper) Buy(ctx context.Context, pool *domain.ParsedPool, solAmount float64) (float64, string, error) {
	if s.buyErr != nil {
		return 0, "", s.buyErr
	}
	s.lastBuySOL = solAmount
	return s.tokensBought, "buyTx", nil
}

func (s *fakeSwapper) Sell(ctx context.Context, pool *domain.ParsedPool, tokenAmount float64) (float64, string, error) {
	n := atomic.AddInt32(&s.sellCalls, 1)
	if n <= s.sellErrs {
		return 0, "", errors.New("blockhash expired")
	}
	return s.sellSOL, "sellTx", nil
}

func solPool() *domain.ParsedPool {
	return &domain.ParsedPool{
		PoolID:     "pool1",
		BaseMint:   domain.WSOLMint,
		QuoteMint:  "TokenMint1111111111111111111111111111111111",
		BaseVault:  "SolVault",
		QuoteVault: "TokenVault",
	}
}

// fastStrategy keeps the exit window short so tests finish quickly.
func withFastExit(t *testing.T) {
	t.Helper()
	orig := domain.TurboExitStrategy
	domain.TurboExitStrategy = domain.ExitStrategy{
		ExitTimeout:        200 * time.Millisecond,
		TargetProfit:       0.89,
		ProfitPollInterval: 10 * time.Millisecond,
	}
	t.Cleanup(func() { domain.TurboExitStrategy = orig })
}

func TestExecuteSimulatedProfitTarget(t *testing.T) {
	withFastExit(t)

	// Turbo entry is 0.1 SOL for 100 tokens; price doubles on the second
	// quote, blowing past the +89% target.
	quoter := &fakeQuoter{quotes: []float64{0.001, 0.002}}
	swapper := &fakeSwapper{tokensBought: 100}
	ex := NewExecutor(ExecutorOptions{Swapper: swapper, Quoter: quoter, Simulate: true})

	res := ex.Execute(context.Background(), solPool(), domain.StatusTurbo)

	if !res.Success {
		t.Fatalf("trade failed: %s", res.Reason)
	}
	if res.TxID != "Simulation" {
		t.Errorf("txID = %q, want Simulation", res.TxID)
	}
	if res.SoldForSOL != 0.2 {
		t.Errorf("soldForSOL = %v, want 0.2", res.SoldForSOL)
	}
	if res.Profit < 0.89 {
		t.Errorf("profit = %v, want >= target", res.Profit)
	}
	if res.BoughtForSOL != 0.1 {
		t.Errorf("boughtForSOL = %v, want the TURBO entry size", res.BoughtForSOL)
	}
}

func TestExecuteFixedBuyAmountOverridesEntrySize(t *testing.T) {
	withFastExit(t)

	quoter := &fakeQuoter{quotes: []float64{0.001, 0.002}}
	swapper := &fakeSwapper{tokensBought: 100}
	ex := NewExecutor(ExecutorOptions{
		Swapper:     swapper,
		Quoter:      quoter,
		Simulate:    true,
		FixedBuySOL: 0.5,
	})

	res := ex.Execute(context.Background(), solPool(), domain.StatusTurbo)

	if !res.Success {
		t.Fatalf("trade failed: %s", res.Reason)
	}
	if swapper.lastBuySOL != 0.5 {
		t.Errorf("buy amount = %v, want the configured 0.5", swapper.lastBuySOL)
	}
	if res.BoughtForSOL != 0.5 {
		t.Errorf("boughtForSOL = %v, want 0.5", res.BoughtForSOL)
	}
}

func TestExecuteTimeoutKeepsLastQuote(t *testing.T) {
	withFastExit(t)

	// Price never moves: the exit window closes and the last observed
	// quote becomes the simulated sell.
	quoter := &fakeQuoter{quotes: []float64{0.001}}
	swapper := &fakeSwapper{tokensBought: 100}
	ex := NewExecutor(ExecutorOptions{Swapper: swapper, Quoter: quoter, Simulate: true})

	start := time.Now()
	res := ex.Execute(context.Background(), solPool(), domain.StatusTurbo)

	if elapsed := time.Since(start); elapsed < 200*time.Millisecond {
		t.Errorf("returned after %v, before the exit window closed", elapsed)
	}
	if !res.Success {
		t.Fatalf("trade failed: %s", res.Reason)
	}
	if res.SoldForSOL != 0.1 {
		t.Errorf("soldForSOL = %v, want the flat 0.1", res.SoldForSOL)
	}
}

func TestExecuteStopLoss(t *testing.T) {
	withFastExit(t)

	// Price collapses 90% on the first quote, tripping the stop loss
	// well before the window closes.
	quoter := &fakeQuoter{quotes: []float64{0.0001}}
	swapper := &fakeSwapper{tokensBought: 100}
	ex := NewExecutor(ExecutorOptions{Swapper: swapper, Quoter: quoter, Simulate: true})

	start := time.Now()
	res := ex.Execute(context.Background(), solPool(), domain.StatusTurbo)

	if elapsed := time.Since(start); elapsed > 150*time.Millisecond {
		t.Errorf("stop loss took %v, want an early exit", elapsed)
	}
	if res.Profit > -0.5 {
		t.Errorf("profit = %v, want <= stop loss", res.Profit)
	}
}

func TestExecuteLiveSellRetries(t *testing.T) {
	withFastExit(t)

	quoter := &fakeQuoter{quotes: []float64{0.002}}
	swapper := &fakeSwapper{tokensBought: 100, sellSOL: 0.2, sellErrs: 2}
	ex := NewExecutor(ExecutorOptions{Swapper: swapper, Quoter: quoter})

	res := ex.Execute(context.Background(), solPool(), domain.StatusTurbo)

	if !res.Success {
		t.Fatalf("trade failed: %s", res.Reason)
	}
	if res.TxID != "sellTx" {
		t.Errorf("txID = %q, want the live sell signature", res.TxID)
	}
	if got := atomic.LoadInt32(&swapper.sellCalls); got != 3 {
		t.Errorf("sell attempts = %d, want 3", got)
	}
	if res.Profit != 1.0 {
		t.Errorf("profit = %v, want 1.0 from the landed sell", res.Profit)
	}
}

func TestExecuteBuyFailure(t *testing.T) {
	quoter := &fakeQuoter{quotes: []float64{0.001}}
	swapper := &fakeSwapper{buyErr: errors.New("no route")}
	ex := NewExecutor(ExecutorOptions{Swapper: swapper, Quoter: quoter, Simulate: true})

	res := ex.Execute(context.Background(), solPool(), domain.StatusGreen)

	if res.Success {
		t.Fatal("trade succeeded despite a failed buy")
	}
	if res.Reason != "Buy transaction failed" {
		t.Errorf("reason = %q", res.Reason)
	}
}

func TestExecuteRejectsRedAndNoSOLPair(t *testing.T) {
	ex := NewExecutor(ExecutorOptions{Swapper: &fakeSwapper{}, Quoter: &fakeQuoter{quotes: []float64{1}}, Simulate: true})

	res := ex.Execute(context.Background(), solPool(), domain.StatusRed)
	if res.Success || res.Reason != "RED coin" {
		t.Errorf("RED result = %+v", res)
	}

	noSOL := solPool()
	noSOL.BaseMint = "OtherMint111111111111111111111111111111111"
	res = ex.Execute(context.Background(), noSOL, domain.StatusGreen)
	if res.Success || res.Reason != "No SOL in pair" {
		t.Errorf("no-SOL result = %+v", res)
	}
}

func TestSimSwapperFillsAtQuote(t *testing.T) {
	quoter := &fakeQuoter{quotes: []float64{0.001}}
	sim := NewSimSwapper(quoter)

	tokens, txID, err := sim.Buy(context.Background(), solPool(), 0.1)
	if err != nil {
		t.Fatalf("Buy: %v", err)
	}
	if tokens != 100 {
		t.Errorf("tokens = %v, want 100 at 0.001 SOL each", tokens)
	}
	if txID != "Simulation" {
		t.Errorf("txID = %q", txID)
	}

	sol, _, err := sim.Sell(context.Background(), solPool(), tokens)
	if err != nil {
		t.Fatalf("Sell: %v", err)
	}
	if sol != 0.1 {
		t.Errorf("sol = %v, want 0.1", sol)
	}
}

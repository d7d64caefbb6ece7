package trader

import (
	"context"
	"errors"
	"log"
	"sync"

	"solana-sniper-bot/internal/domain"
	"solana-sniper-bot/internal/observability"
	"solana-sniper-bot/internal/storage"
)

// WalletTracker owns the trading wallet for the run. It is the single
// writer: exactly one update per completed trade cycle, applied as a
// whole-value replace. Reads come from the control surface.
type WalletTracker struct {
	mu      sync.RWMutex
	wallet  domain.TradingWallet
	store   storage.WalletStore
	logger  *log.Logger
	metrics *observability.Metrics
}

// WalletTrackerOptions contains configuration for creating a WalletTracker.
type WalletTrackerOptions struct {
	WalletID   int64
	StartValue float64 // Default: 1 SOL
	Store      storage.WalletStore
	Logger     *log.Logger
	Metrics    *observability.Metrics
}

// NewWalletTracker creates a WalletTracker, restoring the wallet from the
// store when a record for the ID exists.
func NewWalletTracker(ctx context.Context, opts WalletTrackerOptions) (*WalletTracker, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	startValue := opts.StartValue
	if startValue == 0 {
		startValue = 1
	}

	wallet := domain.TradingWallet{
		ID:         opts.WalletID,
		StartValue: startValue,
		Current:    startValue,
	}

	if opts.Store != nil {
		stored, err := opts.Store.Get(ctx, opts.WalletID)
		switch {
		case err == nil:
			wallet = *stored
			logger.Printf("[wallet] restored wallet %d: current %v SOL", wallet.ID, wallet.Current)
		case errors.Is(err, storage.ErrNotFound):
			if err := opts.Store.Save(ctx, &wallet); err != nil {
				return nil, err
			}
		default:
			return nil, err
		}
	}

	t := &WalletTracker{
		wallet:  wallet,
		store:   opts.Store,
		logger:  logger,
		metrics: opts.Metrics,
	}
	t.publishMetrics()
	return t, nil
}

// Wallet returns a copy of the current wallet.
func (t *WalletTracker) Wallet() domain.TradingWallet {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.wallet
}

// OnTradeResult applies one completed trade cycle. Results that never
// bought anything are ignored; failed sells count the entry as lost.
func (t *WalletTracker) OnTradeResult(ctx context.Context, res domain.TradeResult) {
	if res.BoughtForSOL == 0 {
		return
	}

	sold := 0.0
	if res.Success {
		sold = res.SoldForSOL
	}

	t.mu.Lock()
	t.wallet = t.wallet.ApplyTradeResult(res.BoughtForSOL, sold)
	updated := t.wallet
	t.mu.Unlock()

	t.logger.Printf("[wallet] balance %v SOL, total profit %v", updated.Current, updated.TotalProfit)
	t.publishMetrics()

	if t.store != nil {
		// Fire and forget: a lost write never blocks trading
		if err := t.store.Save(ctx, &updated); err != nil {
			t.logger.Printf("[wallet] save failed: %v", err)
		}
	}
}

func (t *WalletTracker) publishMetrics() {
	if t.metrics == nil {
		return
	}
	w := t.Wallet()
	t.metrics.WalletBalance.Set(w.Current)
	t.metrics.WalletProfit.Set(w.TotalProfit)
}

package safety

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"solana-sniper-bot/internal/domain"
	"solana-sniper-bot/internal/observability"
	"solana-sniper-bot/internal/solana"
)

// SupplyWatcher streams decimal-adjusted supply readings for a mint.
// The returned cancel function must always be called; it tears the
// underlying subscription down.
type SupplyWatcher interface {
	WatchSupply(ctx context.Context, mint string) (<-chan float64, func(), error)
}

// SupplyReader reads the current decimal-adjusted supply of a mint once.
type SupplyReader interface {
	UISupply(ctx context.Context, mint string) (float64, error)
}

// WSSupplyWatcher implements SupplyWatcher over an account subscription.
type WSSupplyWatcher struct {
	ws solana.WSClient
}

// NewWSSupplyWatcher creates a WSSupplyWatcher.
func NewWSSupplyWatcher(ws solana.WSClient) *WSSupplyWatcher {
	return &WSSupplyWatcher{ws: ws}
}

// Compile-time interface check.
var _ SupplyWatcher = (*WSSupplyWatcher)(nil)

// WatchSupply subscribes to the mint account and decodes each change into
// a supply reading. Undecodable notifications are skipped.
func (w *WSSupplyWatcher) WatchSupply(ctx context.Context, mint string) (<-chan float64, func(), error) {
	sub, err := w.ws.SubscribeAccount(ctx, mint)
	if err != nil {
		return nil, nil, fmt.Errorf("subscribe to mint %s: %w", mint, err)
	}

	out := make(chan float64, 16)
	done := make(chan struct{})
	go func() {
		defer close(out)
		for {
			select {
			case <-done:
				return
			case notif, ok := <-sub.C:
				if !ok {
					return
				}
				mi, err := solana.DecodeMintAccount(notif.Data)
				if err != nil {
					continue
				}
				select {
				case out <- mi.UISupply():
				case <-done:
					return
				}
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			sub.Unsubscribe()
		})
	}
	return out, cancel, nil
}

// BurnWaiter races LP-mint supply changes against a timeout. At most one
// winner; the losing side is cancelled and its subscription released.
type BurnWaiter struct {
	watcher   SupplyWatcher
	reader    SupplyReader
	threshold float64
	timeout   time.Duration
	sem       chan struct{}
	logger    *log.Logger
	metrics   *observability.Metrics
}

// BurnWaiterOptions contains configuration for creating a BurnWaiter.
type BurnWaiterOptions struct {
	Watcher     SupplyWatcher
	Reader      SupplyReader
	Threshold   float64       // Default: 100 ui units
	Timeout     time.Duration // Default: 2h
	Concurrency int           // Default: 10
	Logger      *log.Logger
	Metrics     *observability.Metrics
}

// NewBurnWaiter creates a BurnWaiter.
func NewBurnWaiter(opts BurnWaiterOptions) *BurnWaiter {
	threshold := opts.Threshold
	if threshold == 0 {
		threshold = 100
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 2 * time.Hour
	}

	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 10
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &BurnWaiter{
		watcher:   opts.Watcher,
		reader:    opts.Reader,
		threshold: threshold,
		timeout:   timeout,
		sem:       make(chan struct{}, concurrency),
		logger:    logger,
		metrics:   opts.Metrics,
	}
}

// Burned reports whether the supply reading counts as effectively burned.
// The threshold is decimal-adjusted: raw supply divided by 10^decimals.
func (w *BurnWaiter) Burned(uiSupply float64) bool {
	return uiSupply <= w.threshold
}

// CheckBurned reads the supply a few times before committing to the long
// wait. Read failures count as not burned.
func (w *BurnWaiter) CheckBurned(ctx context.Context, lpMint string) bool {
	const attempts = 3
	for attempt := 1; attempt <= attempts; attempt++ {
		supply, err := w.reader.UISupply(ctx, lpMint)
		if err == nil && w.Burned(supply) {
			return true
		}
		if err != nil {
			w.logger.Printf("[safety] read LP supply %s failed: %v", lpMint, err)
		}
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(400 * time.Millisecond):
		}
	}
	return false
}

// Wait blocks until the LP mint supply drops to the burn threshold or the
// timeout elapses, whichever happens first. Returns true when burned.
// Holds one of the bounded listener slots for its whole duration.
func (w *BurnWaiter) Wait(ctx context.Context, pool *domain.ParsedPool) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case w.sem <- struct{}{}:
	}
	defer func() { <-w.sem }()

	supplies, cancel, err := w.watcher.WatchSupply(ctx, pool.LPTokenMint)
	if err != nil {
		return false, err
	}
	defer cancel()

	if w.metrics != nil {
		w.metrics.ActiveBurnWaits.Inc()
		defer w.metrics.ActiveBurnWaits.Dec()
	}

	w.logger.Printf("[safety] pool %s: waiting for LP mint %s to burn", pool.PoolID, pool.LPTokenMint)

	timer := time.NewTimer(w.timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return false, ctx.Err()

		case <-timer.C:
			w.logger.Printf("[safety] pool %s: burn wait timed out", pool.PoolID)
			if w.metrics != nil {
				w.metrics.BurnWaitResults.WithLabelValues("timeout").Inc()
			}
			return false, nil

		case supply, ok := <-supplies:
			if !ok {
				// Subscription died; treat like a timeout
				return false, nil
			}
			if w.Burned(supply) {
				w.logger.Printf("[safety] pool %s: LP mint burned, supply %v", pool.PoolID, supply)
				if w.metrics != nil {
					w.metrics.BurnWaitResults.WithLabelValues("burned").Inc()
				}
				return true, nil
			}
		}
	}
}

// Package safety assesses how likely a fresh pool is to be rugged:
// known-scammer check, liquidity and ownership measurement, an optional
// wait for the LP tokens to burn, and a deterministic classification.
package safety

import (
	"context"
	"log"

	"golang.org/x/sync/singleflight"

	"solana-sniper-bot/internal/domain"
	"solana-sniper-bot/internal/observability"
)

// Assessment is the terminal result of evaluating one pool.
type Assessment struct {
	// Blacklisted short-circuits everything else when true.
	Blacklisted bool

	Data            *domain.PoolSafetyData
	LiquidityLocked bool
	Status          domain.SafetyStatus
	Reason          string
}

// Evaluator runs the safety state machine:
// blacklist -> measurement -> optional burn wait -> classification.
// Evaluations are single-flight per pool ID.
type Evaluator struct {
	blacklist  *Blacklist
	measurer   *Measurer
	burnWaiter *BurnWaiter
	thresholds Thresholds
	burnWaitAt float64 // pool percent at or above which an unburned pool is worth waiting for
	sem        chan struct{}
	flight     singleflight.Group
	logger     *log.Logger
	metrics    *observability.Metrics
}

// EvaluatorOptions contains configuration for creating an Evaluator.
type EvaluatorOptions struct {
	Blacklist       *Blacklist
	Measurer        *Measurer
	BurnWaiter      *BurnWaiter
	Thresholds      Thresholds
	BurnWaitPercent float64 // Default: 0.5
	Concurrency     int     // Default: 3
	Logger          *log.Logger
	Metrics         *observability.Metrics
}

// NewEvaluator creates an Evaluator.
func NewEvaluator(opts EvaluatorOptions) *Evaluator {
	burnWaitAt := opts.BurnWaitPercent
	if burnWaitAt == 0 {
		burnWaitAt = 0.5
	}

	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 3
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	th := opts.Thresholds
	if th == (Thresholds{}) {
		th = DefaultThresholds()
	}

	return &Evaluator{
		blacklist:  opts.Blacklist,
		measurer:   opts.Measurer,
		burnWaiter: opts.BurnWaiter,
		thresholds: th,
		burnWaitAt: burnWaitAt,
		sem:        make(chan struct{}, concurrency),
		logger:     logger,
		metrics:    opts.Metrics,
	}
}

// Evaluate runs the full assessment for a pool. Concurrent calls for the
// same pool ID share one in-flight evaluation and its result, so the
// burn-wait subscription can never be duplicated per pool.
func (e *Evaluator) Evaluate(ctx context.Context, pool *domain.ParsedPool) (*Assessment, error) {
	v, err, _ := e.flight.Do(pool.PoolID, func() (interface{}, error) {
		return e.evaluate(ctx, pool)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Assessment), nil
}

func (e *Evaluator) evaluate(ctx context.Context, pool *domain.ParsedPool) (*Assessment, error) {
	if e.blacklist.Contains(pool.Creator) {
		e.logger.Printf("[safety] pool %s: creator %s is blacklisted", pool.PoolID, pool.Creator)
		if e.metrics != nil {
			e.metrics.BlacklistHits.Inc()
		}
		return &Assessment{Blacklisted: true, Reason: "Creator is in blacklist"}, nil
	}

	// Bounded measurement slots; the long burn wait is bounded separately
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case e.sem <- struct{}{}:
	}
	data, err := e.measurer.Measure(ctx, pool)
	<-e.sem
	if err != nil {
		return nil, err
	}

	locked := e.burnWaiter.CheckBurned(ctx, pool.LPTokenMint)

	// Not burned yet but most of the supply is in the pool: the burn may
	// simply not have happened yet, so wait for it
	if !locked && data.PoolTokenPercent >= e.burnWaitAt {
		locked, err = e.burnWaiter.Wait(ctx, pool)
		if err != nil {
			return nil, err
		}

		// Authorities can change during a multi-hour wait; re-read them
		ownership, err := e.measurer.Ownership(ctx, data.TokenMint)
		if err != nil {
			return nil, err
		}
		data.Ownership = *ownership
	}

	status, reason := Classify(data, locked, e.thresholds)
	if e.metrics != nil {
		e.metrics.SafetyStatuses.WithLabelValues(string(status)).Inc()
	}
	e.logger.Printf("[safety] pool %s: %s (%s)", pool.PoolID, status, reason)

	return &Assessment{
		Data:            data,
		LiquidityLocked: locked,
		Status:          status,
		Reason:          reason,
	}, nil
}

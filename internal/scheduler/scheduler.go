// Package scheduler delays pools whose on-chain start time lies in the
// future. Each pool waits independently; a start time past the ceiling is
// rejected immediately instead of held.
package scheduler

import (
	"context"
	"log"
	"time"

	"solana-sniper-bot/internal/domain"
	"solana-sniper-bot/internal/observability"
)

// Outcome is the scheduler's verdict for one pool.
type Outcome int

const (
	// OK means the pool may proceed (immediately or after its wait).
	OK Outcome = iota
	// TooLong means the start time exceeds the ceiling; the pool is skipped.
	TooLong
)

func (o Outcome) String() string {
	if o == TooLong {
		return "TOO_LONG"
	}
	return "OK"
}

// Clock abstracts time for testing.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Scheduler holds pools until their start time plus a grace period.
type Scheduler struct {
	ceiling time.Duration
	grace   time.Duration
	clock   Clock
	logger  *log.Logger
	metrics *observability.Metrics
}

// Options contains configuration for creating a Scheduler.
type Options struct {
	Ceiling time.Duration // Default: 24h
	Grace   time.Duration // Default: 300ms
	Clock   Clock
	Logger  *log.Logger
	Metrics *observability.Metrics
}

// New creates a Scheduler.
func New(opts Options) *Scheduler {
	ceiling := opts.Ceiling
	if ceiling == 0 {
		ceiling = 24 * time.Hour
	}

	grace := opts.Grace
	if grace == 0 {
		grace = 300 * time.Millisecond
	}

	clock := opts.Clock
	if clock == nil {
		clock = realClock{}
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Scheduler{
		ceiling: ceiling,
		grace:   grace,
		clock:   clock,
		logger:  logger,
		metrics: opts.Metrics,
	}
}

// Hold blocks until the pool's start time plus grace, then returns OK.
// Pools with no start time or one already in the past return OK at once.
// A start time further away than the ceiling returns TooLong without
// waiting. Callers run Hold on their own goroutine; waits never block
// other pools.
func (s *Scheduler) Hold(ctx context.Context, pool *domain.ParsedPool) (Outcome, error) {
	if pool.StartTime == nil {
		return OK, nil
	}

	start := time.Unix(*pool.StartTime, 0)
	delta := start.Sub(s.clock.Now())
	if delta <= 0 {
		return OK, nil
	}

	if delta >= s.ceiling {
		s.logger.Printf("[scheduler] pool %s starts in %s, past the %s ceiling", pool.PoolID, delta.Round(time.Second), s.ceiling)
		if s.metrics != nil {
			s.metrics.PostponeTooLong.Inc()
		}
		return TooLong, nil
	}

	s.logger.Printf("[scheduler] pool %s postponed for %s", pool.PoolID, delta.Round(time.Second))
	if s.metrics != nil {
		s.metrics.PoolsPostponed.Inc()
		s.metrics.PendingPostpones.Inc()
		defer s.metrics.PendingPostpones.Dec()
	}

	select {
	case <-ctx.Done():
		return OK, ctx.Err()
	case <-s.clock.After(delta + s.grace):
		return OK, nil
	}
}

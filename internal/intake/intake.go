// Package intake turns the raw chain log feed into deduplicated ParsedPool
// emissions: signature dedup, pool-initialization marker filter, and a
// bounded parse fan-out.
package intake

import (
	"context"
	"log"
	"strings"
	"sync"

	"solana-sniper-bot/internal/domain"
	"solana-sniper-bot/internal/observability"
)

// Intake consumes PoolEvents and emits at most one ParsedPool per signature.
type Intake struct {
	events  <-chan domain.PoolEvent
	parser  Parser
	seen    *seenSet
	sem     chan struct{}
	out     chan *domain.ParsedPool
	logger  *log.Logger
	metrics *observability.Metrics
}

// Options contains configuration for creating an Intake.
type Options struct {
	Events           <-chan domain.PoolEvent
	Parser           Parser
	ParseConcurrency int // Default: 5
	SeenCap          int // Default: 100000
	Logger           *log.Logger
	Metrics          *observability.Metrics
}

// New creates an Intake stage.
func New(opts Options) *Intake {
	concurrency := opts.ParseConcurrency
	if concurrency < 1 {
		concurrency = 5
	}

	seenCap := opts.SeenCap
	if seenCap < 1 {
		seenCap = 100_000
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Intake{
		events:  opts.Events,
		parser:  opts.Parser,
		seen:    newSeenSet(seenCap),
		sem:     make(chan struct{}, concurrency),
		out:     make(chan *domain.ParsedPool, 64),
		logger:  logger,
		metrics: opts.Metrics,
	}
}

// Pools returns the channel of parsed pools. Closed when Run returns.
func (i *Intake) Pools() <-chan *domain.ParsedPool {
	return i.out
}

// Run consumes the event stream until the context is cancelled or the
// stream is closed. The seen set is touched only by this loop.
func (i *Intake) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	defer func() {
		wg.Wait()
		close(i.out)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-i.events:
			if !ok {
				return nil
			}
			i.handle(ctx, ev, &wg)
		}
	}
}

func (i *Intake) handle(ctx context.Context, ev domain.PoolEvent, wg *sync.WaitGroup) {
	if !hasInitMarker(ev.Logs) {
		return
	}
	if !i.seen.Add(ev.Signature) {
		if i.metrics != nil {
			i.metrics.EventsDeduplicated.Inc()
		}
		return
	}
	if i.metrics != nil {
		i.metrics.EventsAccepted.Inc()
	}

	// Bounded fan-out; blocks intake when all parser slots are busy
	select {
	case <-ctx.Done():
		return
	case i.sem <- struct{}{}:
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() { <-i.sem }()

		pool, err := i.parser.ParseCreationEvent(ctx, ev.Signature)
		if err != nil {
			// Drop the event; the parser already retried
			i.logger.Printf("[intake] parse %s failed: %v", ev.Signature, err)
			if i.metrics != nil {
				i.metrics.ParseFailures.Inc()
			}
			return
		}

		select {
		case i.out <- pool:
			if i.metrics != nil {
				i.metrics.PoolsParsed.Inc()
			}
		case <-ctx.Done():
		}
	}()
}

// hasInitMarker reports whether any log line carries the pool-init marker.
func hasInitMarker(logs []string) bool {
	for _, line := range logs {
		if strings.Contains(line, InitMarker) {
			return true
		}
	}
	return false
}

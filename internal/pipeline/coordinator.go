// Package pipeline wires the stages into the full decision pipeline:
// intake → postponement → safety → trend → decision → trade.
// Each pool moves through its own goroutine; one pool's failure never
// touches another's.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"solana-sniper-bot/internal/domain"
	"solana-sniper-bot/internal/intake"
	"solana-sniper-bot/internal/observability"
	"solana-sniper-bot/internal/safety"
	"solana-sniper-bot/internal/scheduler"
	"solana-sniper-bot/internal/storage"
	"solana-sniper-bot/internal/trader"
	"solana-sniper-bot/internal/trend"
)

// Coordinator owns the pipeline lifecycle. Stages keep their own
// concurrency ceilings; the coordinator only moves pools between them and
// records every terminal outcome with its reason.
type Coordinator struct {
	intake      *intake.Intake
	scheduler   *scheduler.Scheduler
	evaluator   *safety.Evaluator
	fetcher     trend.TradesFetcher
	analyzeOpts trend.AnalyzeOptions
	engine      *trader.DecisionEngine
	executor    *trader.Executor
	wallet      *trader.WalletTracker

	states        storage.StateStore
	archive       storage.TradeArchive
	archiveTrades bool

	enabled atomic.Bool
	logger  *log.Logger
	metrics *observability.Metrics
}

// Options contains configuration for creating a Coordinator.
type Options struct {
	Intake        *intake.Intake
	Scheduler     *scheduler.Scheduler
	Evaluator     *safety.Evaluator
	TradesFetcher trend.TradesFetcher
	AnalyzeOpts   trend.AnalyzeOptions // Default: trend.DefaultAnalyzeOptions()
	Engine        *trader.DecisionEngine
	Executor      *trader.Executor
	Wallet        *trader.WalletTracker

	States        storage.StateStore   // optional display sink
	Archive       storage.TradeArchive // optional analysis sink
	ArchiveTrades bool                 // also archive fetched market trades

	Logger  *log.Logger
	Metrics *observability.Metrics
}

// New creates a Coordinator. Trading starts enabled.
func New(opts Options) *Coordinator {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	analyzeOpts := opts.AnalyzeOpts
	if analyzeOpts == (trend.AnalyzeOptions{}) {
		analyzeOpts = trend.DefaultAnalyzeOptions()
	}

	c := &Coordinator{
		intake:        opts.Intake,
		scheduler:     opts.Scheduler,
		evaluator:     opts.Evaluator,
		fetcher:       opts.TradesFetcher,
		analyzeOpts:   analyzeOpts,
		engine:        opts.Engine,
		executor:      opts.Executor,
		wallet:        opts.Wallet,
		states:        opts.States,
		archive:       opts.Archive,
		archiveTrades: opts.ArchiveTrades,
		logger:        logger,
		metrics:       opts.Metrics,
	}
	c.enabled.Store(true)
	return c
}

// Enable resumes accepting new pools.
func (c *Coordinator) Enable() { c.enabled.Store(true) }

// Disable stops accepting new pools. Pools already in flight finish.
func (c *Coordinator) Disable() { c.enabled.Store(false) }

// Enabled reports whether new pools are being accepted.
func (c *Coordinator) Enabled() bool { return c.enabled.Load() }

// Wallet returns the current trading wallet.
func (c *Coordinator) Wallet() domain.TradingWallet {
	return c.wallet.Wallet()
}

// Run drives the pipeline until ctx is cancelled. Every parsed pool gets
// its own goroutine; Run returns once intake has drained and all in-flight
// pools have finished.
func (c *Coordinator) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return c.intake.Run(ctx)
	})

	g.Go(func() error {
		var wg sync.WaitGroup
		defer wg.Wait()
		for pool := range c.intake.Pools() {
			if !c.enabled.Load() {
				c.logger.Printf("[pipeline] trading disabled, dropping pool %s", pool.PoolID)
				continue
			}
			wg.Add(1)
			go func(p *domain.ParsedPool) {
				defer wg.Done()
				c.process(ctx, p)
			}(pool)
		}
		return nil
	})

	return g.Wait()
}

// process runs one pool's full lifecycle. Terminal outcomes are recorded
// in the state sink; errors abandon only this pool.
func (c *Coordinator) process(ctx context.Context, pool *domain.ParsedPool) {
	tokenMint, _ := pool.TokenMint()
	c.upsertState(ctx, pool, "Parsed, validating", "")

	if pool.StartTime == nil && !pool.SwapEnabled {
		c.terminal(ctx, pool, "Swapping is disabled")
		return
	}

	outcome, err := c.scheduler.Hold(ctx, pool)
	if err != nil {
		return // cancelled
	}
	if outcome == scheduler.TooLong {
		c.terminal(ctx, pool, "Skipped because it's postponed for too long.")
		return
	}

	assessment, err := c.evaluator.Evaluate(ctx, pool)
	if err != nil {
		c.logger.Printf("[pipeline] pool %s: safety evaluation failed: %v", pool.PoolID, err)
		c.terminal(ctx, pool, "Safety evaluation failed")
		return
	}
	if assessment.Blacklisted {
		c.terminal(ctx, pool, fmt.Sprintf("Skipped because creator %s is in blacklist.", pool.Creator))
		return
	}
	if assessment.Status == domain.StatusRed {
		c.terminal(ctx, pool, assessment.Reason)
		return
	}
	c.upsertState(ctx, pool, fmt.Sprintf("%s, checking trades", assessment.Status), assessment.Reason)

	dump, analysis := c.analyzeTrades(ctx, pool)

	verdict := c.engine.Decide(trader.DecisionInput{
		Pool:     pool,
		Status:   assessment.Status,
		Dump:     dump,
		Analysis: analysis,
	})
	if !verdict.TradeApproved {
		c.terminal(ctx, pool, verdict.Reason)
		return
	}

	c.upsertState(ctx, pool, fmt.Sprintf("Trading, status %s", assessment.Status), assessment.Reason)

	res := c.executor.Execute(ctx, pool, assessment.Status)
	c.wallet.OnTradeResult(ctx, res)

	if c.archive != nil {
		if err := c.archive.ArchiveResult(ctx, pool.PoolID, &res); err != nil {
			c.logger.Printf("[pipeline] pool %s: archive result failed: %v", pool.PoolID, err)
		}
	}

	rec := c.stateRecord(pool, tradeStatus(res), assessment.Reason)
	rec.TokenID = tokenMint
	rec.BuyInfo = fmt.Sprintf("%v SOL", res.BoughtForSOL)
	rec.SellInfo = fmt.Sprintf("%v SOL (%s)", res.SoldForSOL, res.TxID)
	rec.Profit = fmt.Sprintf("%.2f%%", res.Profit*100)
	rec.MaxProfit = res.Profit
	c.upsert(ctx, rec)
}

// analyzeTrades fetches the pool's trade history and produces either the
// dump pair or a trend analysis. A fetch failure yields neither; the
// decision engine turns that into its own skip.
func (c *Coordinator) analyzeTrades(ctx context.Context, pool *domain.ParsedPool) ([]domain.TradeRecord, *domain.TrendAnalysis) {
	trades, err := c.fetcher.FetchTrades(ctx, pool)
	if err != nil {
		c.logger.Printf("[pipeline] pool %s: fetch trades failed: %v", pool.PoolID, err)
		if c.metrics != nil {
			c.metrics.TrendFailures.Inc()
		}
		return nil, nil
	}

	if c.archiveTrades && c.archive != nil && len(trades) > 0 {
		archived := make([]*domain.TradeRecord, len(trades))
		for i := range trades {
			archived[i] = &trades[i]
		}
		if err := c.archive.ArchiveMarketTrades(ctx, pool.PoolID, archived); err != nil {
			c.logger.Printf("[pipeline] pool %s: archive trades failed: %v", pool.PoolID, err)
		}
	}

	if dump := trend.FindDumpingRecord(trades, c.analyzeOpts.DumpThresholdPct); dump != nil {
		return dump, nil
	}

	analysis := trend.AnalyzeTrend(trades, c.analyzeOpts)
	if c.metrics != nil {
		c.metrics.TrendOutcomes.WithLabelValues(string(analysis.Trend)).Inc()
	}
	return nil, &analysis
}

func tradeStatus(res domain.TradeResult) string {
	if res.Success {
		return "Trade complete"
	}
	return fmt.Sprintf("Trade failed: %s", res.Reason)
}

// terminal records a pool's final skip-or-done status.
func (c *Coordinator) terminal(ctx context.Context, pool *domain.ParsedPool, reason string) {
	c.logger.Printf("[pipeline] pool %s: %s", pool.PoolID, reason)
	c.upsertState(ctx, pool, reason, "")
}

func (c *Coordinator) upsertState(ctx context.Context, pool *domain.ParsedPool, status, safetyInfo string) {
	rec := c.stateRecord(pool, status, safetyInfo)
	c.upsert(ctx, rec)
}

func (c *Coordinator) stateRecord(pool *domain.ParsedPool, status, safetyInfo string) *domain.StateRecord {
	tokenMint, _ := pool.TokenMint()
	startTime := ""
	if pool.StartTime != nil {
		startTime = time.Unix(*pool.StartTime, 0).UTC().Format(time.RFC3339)
	}
	return &domain.StateRecord{
		PoolID:     pool.PoolID,
		Status:     status,
		StartTime:  startTime,
		TokenID:    tokenMint,
		SafetyInfo: safetyInfo,
	}
}

// upsert is fire and forget: a lost display row never stalls the pipeline.
func (c *Coordinator) upsert(ctx context.Context, rec *domain.StateRecord) {
	if c.states == nil {
		return
	}
	if err := c.states.Upsert(ctx, rec); err != nil {
		c.logger.Printf("[pipeline] upsert state for %s failed: %v", rec.PoolID, err)
	}
}

// Package main runs the new-pool sniper: Raydium pool-initialization
// events flow through intake, postponement, safety evaluation, trend
// analysis and the decision engine into simulated trades, with an HTTP
// control surface for start/stop and wallet inspection.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"solana-sniper-bot/internal/config"
	"solana-sniper-bot/internal/domain"
	"solana-sniper-bot/internal/intake"
	"solana-sniper-bot/internal/observability"
	"solana-sniper-bot/internal/pipeline"
	"solana-sniper-bot/internal/safety"
	"solana-sniper-bot/internal/scheduler"
	"solana-sniper-bot/internal/server"
	"solana-sniper-bot/internal/solana"
	"solana-sniper-bot/internal/storage"
	chstore "solana-sniper-bot/internal/storage/clickhouse"
	"solana-sniper-bot/internal/storage/memory"
	"solana-sniper-bot/internal/storage/migrations"
	pgstore "solana-sniper-bot/internal/storage/postgres"
	"solana-sniper-bot/internal/trader"
	"solana-sniper-bot/internal/trend"
)

// stores groups the three persistence sinks of the pipeline.
type stores struct {
	states  storage.StateStore
	wallets storage.WalletStore
	archive storage.TradeArchive
}

func main() {
	logger := log.New(os.Stdout, "[sniper] ", log.LstdFlags)

	// Flags override the environment for the values worth changing per run.
	rpcEndpoint := flag.String("rpc-endpoint", "", "Solana RPC HTTP endpoint (overrides RPC_URL)")
	wsEndpoint := flag.String("ws-endpoint", "", "Solana WebSocket endpoint (overrides WS_URL)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (overrides POSTGRES_DSN)")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string (overrides CLICKHOUSE_DSN)")
	flag.Parse()
	for env, val := range map[string]string{
		"RPC_URL":        *rpcEndpoint,
		"WS_URL":         *wsEndpoint,
		"POSTGRES_DSN":   *postgresDSN,
		"CLICKHOUSE_DSN": *clickhouseDSN,
	} {
		if val != "" {
			os.Setenv(env, val)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	metrics := observability.NewMetrics("")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
		}
	}()

	st, cleanup, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to open stores: %v", err)
	}
	defer cleanup()

	rpc := solana.NewHTTPClient(cfg.RPCEndpoint)

	wsConfig := solana.DefaultWSConfig()
	wsConfig.OnReconnect = metrics.WSReconnects.Inc
	ws, err := solana.NewWSClient(ctx, cfg.WSEndpoint, &wsConfig)
	if err != nil {
		logger.Fatalf("Failed to connect to WebSocket endpoint: %v", err)
	}
	defer ws.Close()

	events, err := poolEvents(ctx, ws)
	if err != nil {
		logger.Fatalf("Failed to subscribe to pool logs: %v", err)
	}

	in := intake.New(intake.Options{
		Events:           events,
		Parser:           intake.NewRaydiumParser(rpc),
		ParseConcurrency: cfg.ParseConcurrency,
		SeenCap:          cfg.SeenSignatureCap,
		Logger:           logger,
		Metrics:          metrics,
	})

	sched := scheduler.New(scheduler.Options{
		Ceiling: cfg.PostponeCeiling,
		Grace:   cfg.PostponeGrace,
		Logger:  logger,
		Metrics: metrics,
	})

	measurer := safety.NewMeasurer(rpc, cfg.SOLPriceUSD)

	burnWaiter := safety.NewBurnWaiter(safety.BurnWaiterOptions{
		Watcher:     safety.NewWSSupplyWatcher(ws),
		Reader:      measurer,
		Threshold:   cfg.BurnSupplyThreshold,
		Timeout:     cfg.BurnWaitTimeout,
		Concurrency: cfg.BurnWaitConcurrency,
		Logger:      logger,
		Metrics:     metrics,
	})

	evaluator := safety.NewEvaluator(safety.EvaluatorOptions{
		Blacklist:  safety.NewBlacklist(cfg.BlacklistedCreators...),
		Measurer:   measurer,
		BurnWaiter: burnWaiter,
		Thresholds: safety.Thresholds{
			LiquidityLowUSD:    cfg.LiquidityLowUSD,
			LiquidityHighUSD:   cfg.LiquidityHighUSD,
			MinPoolPercent:     cfg.MinPoolPercent,
			MintableYellowBand: cfg.MintableYellowBand,
			AllInPoolPercent:   cfg.AllInPoolPercent,
		},
		BurnWaitPercent: cfg.BurnWaitPercent,
		Concurrency:     cfg.SafetyConcurrency,
		Logger:          logger,
		Metrics:         metrics,
	})

	fetcher := trend.NewRPCTradesFetcher(trend.RPCTradesFetcherOptions{
		RPC:    rpc,
		Logger: logger,
	})

	engine := trader.NewDecisionEngine(trader.DecisionEngineOptions{
		SafeVolatilityRate: cfg.SafeVolatilityRate,
		SafeBuysCount:      cfg.SafeBuysCount,
		Logger:             logger,
		Metrics:            metrics,
	})

	quoter := trader.NewVaultRatioQuoter(rpc)

	// No transaction signer is wired in; every fill is a paper fill
	// against the live pool quote.
	if !cfg.SimulateOnly {
		logger.Println("SIMULATION_ONLY=false but no signer is configured, trades stay simulated")
	}
	executor := trader.NewExecutor(trader.ExecutorOptions{
		Swapper:     trader.NewSimSwapper(quoter),
		Quoter:      quoter,
		Simulate:    true,
		FixedBuySOL: cfg.BuySOLAmount,
		Logger:      logger,
		Metrics:     metrics,
	})

	wallet, err := trader.NewWalletTracker(ctx, trader.WalletTrackerOptions{
		WalletID:   cfg.WalletID,
		StartValue: cfg.WalletStartValueSOL,
		Store:      st.wallets,
		Logger:     logger,
		Metrics:    metrics,
	})
	if err != nil {
		logger.Fatalf("Failed to restore trading wallet: %v", err)
	}

	coord := pipeline.New(pipeline.Options{
		Intake:        in,
		Scheduler:     sched,
		Evaluator:     evaluator,
		TradesFetcher: fetcher,
		AnalyzeOpts: trend.AnalyzeOptions{
			WindowSeconds:    int64(cfg.TrendWindow / time.Second),
			OnlyBuys:         true,
			LargeBetSOL:      cfg.LargeBetSOL,
			GrowthEpsilon:    cfg.GrowthEpsilon,
			DumpThresholdPct: cfg.DumpThresholdPct,
		},
		Engine:        engine,
		Executor:      executor,
		Wallet:        wallet,
		States:        st.states,
		Archive:       st.archive,
		ArchiveTrades: cfg.DumpTradeHistory,
		Logger:        logger,
		Metrics:       metrics,
	})

	ctrl := server.New(server.Options{
		Controller: coord,
		States:     st.states,
		Logger:     logger,
	})

	logger.Printf("Watching %s for new pools (simulation=%v)", solana.RaydiumAMMV4, cfg.SimulateOnly)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return coord.Run(gctx) })
	g.Go(func() error { return ctrl.Run(gctx, fmt.Sprintf(":%d", cfg.AppPort)) })
	g.Go(func() error { return runMetricsServer(gctx, cfg.MetricsAddr, logger) })

	err = g.Wait()
	close(done)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("Sniper error: %v", err)
	}
	logger.Println("Shutdown complete")
}

// poolEvents subscribes to Raydium AMM v4 logs and adapts the notification
// stream into intake events. Failed transactions are dropped at the source.
func poolEvents(ctx context.Context, ws solana.WSClient) (<-chan domain.PoolEvent, error) {
	logsCh, err := ws.SubscribeLogs(ctx, solana.LogsFilter{
		Mentions: []string{solana.RaydiumAMMV4},
	})
	if err != nil {
		return nil, err
	}

	events := make(chan domain.PoolEvent, 256)
	go func() {
		defer close(events)
		for {
			select {
			case <-ctx.Done():
				return
			case notif, ok := <-logsCh:
				if !ok {
					return
				}
				if notif.Err != nil {
					continue
				}
				ev := domain.PoolEvent{
					Signature: notif.Signature,
					Slot:      notif.Slot,
					Logs:      notif.Logs,
				}
				select {
				case events <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return events, nil
}

// openStores connects the persistence sinks: Postgres for display state
// and the wallet, ClickHouse for the trade archive. Both DSNs empty
// falls back to in-memory stores.
func openStores(ctx context.Context, cfg *config.Config, logger *log.Logger) (*stores, func(), error) {
	if cfg.PostgresDSN == "" && cfg.ClickHouseDSN == "" {
		logger.Println("No DSNs configured, using in-memory storage")
		return &stores{
			states:  memory.NewStateStore(),
			wallets: memory.NewWalletStore(),
			archive: memory.NewTradeArchive(),
		}, func() {}, nil
	}
	if cfg.PostgresDSN == "" || cfg.ClickHouseDSN == "" {
		return nil, nil, fmt.Errorf("POSTGRES_DSN and CLICKHOUSE_DSN must both be set, or both empty for in-memory storage")
	}

	pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, nil, err
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres migrations: %w", err)
	}

	conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickHouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
	}

	cleanup := func() {
		pool.Close()
		conn.Close()
	}
	return &stores{
		states:  pgstore.NewStateStore(pool),
		wallets: pgstore.NewWalletStore(pool),
		archive: chstore.NewTradeArchive(conn),
	}, cleanup, nil
}

// runMetricsServer exposes Prometheus metrics until ctx is cancelled.
func runMetricsServer(ctx context.Context, addr string, logger *log.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())

	srv := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("Metrics server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

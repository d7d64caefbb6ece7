package storage

import (
	"context"

	"solana-sniper-bot/internal/domain"
)

// StateStore holds the per-pool display row. Rows are replaced whole on
// every pipeline transition, keyed by pool ID.
type StateStore interface {
	// Upsert inserts the record or replaces the existing one with the same PoolID.
	Upsert(ctx context.Context, rec *domain.StateRecord) error

	// GetByPoolID retrieves a record by pool ID. Returns ErrNotFound if not exists.
	GetByPoolID(ctx context.Context, poolID string) (*domain.StateRecord, error)

	// GetAll retrieves all records, ordered by pool ID ASC.
	GetAll(ctx context.Context) ([]*domain.StateRecord, error)
}

// WalletStore holds the trading wallet. The wallet is replaced whole
// after every completed trade cycle.
type WalletStore interface {
	// Save inserts the wallet or replaces the existing one with the same ID.
	Save(ctx context.Context, w *domain.TradingWallet) error

	// Get retrieves a wallet by ID. Returns ErrNotFound if not exists.
	Get(ctx context.Context, id int64) (*domain.TradingWallet, error)
}

// TradeArchive is the analysis sink: market trades observed per pool and
// the outcome of our own buy+sell cycles. Append-only.
type TradeArchive interface {
	// ArchiveMarketTrades stores the trade history fetched for a pool.
	// Returns ErrDuplicateKey on a (pool_id, signature) collision.
	ArchiveMarketTrades(ctx context.Context, poolID string, trades []*domain.TradeRecord) error

	// ArchiveResult stores the outcome of one of our trade cycles.
	ArchiveResult(ctx context.Context, poolID string, res *domain.TradeResult) error

	// GetMarketTrades retrieves archived trades for a pool, ordered by epoch time ASC.
	GetMarketTrades(ctx context.Context, poolID string) ([]*domain.TradeRecord, error)

	// GetResults retrieves archived trade outcomes for a pool, ordered by buy time ASC.
	GetResults(ctx context.Context, poolID string) ([]*domain.TradeResult, error)
}

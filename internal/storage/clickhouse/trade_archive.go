package clickhouse

import (
	"context"
	"fmt"

	"solana-sniper-bot/internal/domain"
	"solana-sniper-bot/internal/storage"
)

// TradeArchive implements storage.TradeArchive using ClickHouse.
type TradeArchive struct {
	conn *Conn
}

// NewTradeArchive creates a new TradeArchive.
func NewTradeArchive(conn *Conn) *TradeArchive {
	return &TradeArchive{conn: conn}
}

// Compile-time interface check.
var _ storage.TradeArchive = (*TradeArchive)(nil)

// ArchiveMarketTrades stores the trade history fetched for a pool.
// Returns ErrDuplicateKey on a (pool_id, signature) collision; the batch
// is rejected whole.
func (a *TradeArchive) ArchiveMarketTrades(ctx context.Context, poolID string, trades []*domain.TradeRecord) error {
	if poolID == "" {
		return storage.ErrInvalidInput
	}
	if len(trades) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	seen := make(map[string]struct{}, len(trades))
	for _, t := range trades {
		if _, ok := seen[t.Signature]; ok {
			return storage.ErrDuplicateKey
		}
		seen[t.Signature] = struct{}{}
	}

	// Check for duplicates against existing DB rows.
	// MergeTree doesn't enforce uniqueness at insert time.
	for _, t := range trades {
		exists, err := a.tradeExists(ctx, poolID, t.Signature)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := a.conn.PrepareBatch(ctx, `
		INSERT INTO market_trades (
			pool_id, signature, epoch_time, trade_type, token_amount, sol_amount, price_sol
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, t := range trades {
		err = batch.Append(
			poolID, t.Signature, uint64(t.EpochTime), string(t.Type),
			t.TokenAmount, t.SOLAmount, t.PriceSOL,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// ArchiveResult stores the outcome of one of our trade cycles.
func (a *TradeArchive) ArchiveResult(ctx context.Context, poolID string, res *domain.TradeResult) error {
	if poolID == "" || res == nil {
		return storage.ErrInvalidInput
	}

	var success uint8
	if res.Success {
		success = 1
	}

	query := `
		INSERT INTO trade_results (
			pool_id, success, tx_id, bought_for_sol, sold_for_sol, profit, buy_time_ms, sell_time_ms, reason
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	err := a.conn.Exec(ctx, query,
		poolID, success, res.TxID,
		res.BoughtForSOL, res.SoldForSOL, res.Profit,
		uint64(res.BuyTime), uint64(res.SellTime), res.Reason,
	)
	if err != nil {
		return fmt.Errorf("insert trade result: %w", err)
	}

	return nil
}

// GetMarketTrades retrieves archived trades for a pool, ordered by epoch time ASC.
func (a *TradeArchive) GetMarketTrades(ctx context.Context, poolID string) ([]*domain.TradeRecord, error) {
	query := `
		SELECT signature, epoch_time, trade_type, token_amount, sol_amount, price_sol
		FROM market_trades
		WHERE pool_id = ?
		ORDER BY epoch_time ASC, signature ASC
	`

	rows, err := a.conn.Query(ctx, query, poolID)
	if err != nil {
		return nil, fmt.Errorf("query market trades: %w", err)
	}
	defer rows.Close()

	var trades []*domain.TradeRecord
	for rows.Next() {
		var t domain.TradeRecord
		var epochTime uint64
		var tradeType string

		err := rows.Scan(&t.Signature, &epochTime, &tradeType, &t.TokenAmount, &t.SOLAmount, &t.PriceSOL)
		if err != nil {
			return nil, fmt.Errorf("scan market trade row: %w", err)
		}

		t.EpochTime = int64(epochTime)
		t.Type = domain.TradeType(tradeType)
		trades = append(trades, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate market trade rows: %w", err)
	}

	return trades, nil
}

// GetResults retrieves archived trade outcomes for a pool, ordered by buy time ASC.
func (a *TradeArchive) GetResults(ctx context.Context, poolID string) ([]*domain.TradeResult, error) {
	query := `
		SELECT success, tx_id, bought_for_sol, sold_for_sol, profit, buy_time_ms, sell_time_ms, reason
		FROM trade_results
		WHERE pool_id = ?
		ORDER BY buy_time_ms ASC
	`

	rows, err := a.conn.Query(ctx, query, poolID)
	if err != nil {
		return nil, fmt.Errorf("query trade results: %w", err)
	}
	defer rows.Close()

	var results []*domain.TradeResult
	for rows.Next() {
		var r domain.TradeResult
		var success uint8
		var buyTime, sellTime uint64

		err := rows.Scan(&success, &r.TxID, &r.BoughtForSOL, &r.SoldForSOL, &r.Profit, &buyTime, &sellTime, &r.Reason)
		if err != nil {
			return nil, fmt.Errorf("scan trade result row: %w", err)
		}

		r.Success = success == 1
		r.BuyTime = int64(buyTime)
		r.SellTime = int64(sellTime)
		results = append(results, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade result rows: %w", err)
	}

	return results, nil
}

// tradeExists checks if a trade with the given key exists.
func (a *TradeArchive) tradeExists(ctx context.Context, poolID, signature string) (bool, error) {
	query := `
		SELECT count(*) FROM market_trades
		WHERE pool_id = ? AND signature = ?
	`

	var count uint64
	err := a.conn.QueryRow(ctx, query, poolID, signature).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

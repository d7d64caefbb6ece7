package postgres

import (
	"context"
	"fmt"

	"solana-sniper-bot/internal/domain"
	"solana-sniper-bot/internal/storage"
)

// WalletStore implements storage.WalletStore using PostgreSQL.
type WalletStore struct {
	pool *Pool
}

// NewWalletStore creates a new WalletStore.
func NewWalletStore(pool *Pool) *WalletStore {
	return &WalletStore{pool: pool}
}

// Compile-time interface check.
var _ storage.WalletStore = (*WalletStore)(nil)

// Save inserts the wallet or replaces the existing one with the same ID.
func (s *WalletStore) Save(ctx context.Context, w *domain.TradingWallet) error {
	if w == nil {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO trading_wallets (wallet_id, start_value, current_value, total_profit)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (wallet_id) DO UPDATE SET
			start_value = EXCLUDED.start_value,
			current_value = EXCLUDED.current_value,
			total_profit = EXCLUDED.total_profit,
			updated_at = now()
	`

	_, err := s.pool.Exec(ctx, query, w.ID, w.StartValue, w.Current, w.TotalProfit)
	if err != nil {
		return fmt.Errorf("save wallet: %w", err)
	}
	return nil
}

// Get retrieves a wallet by ID. Returns ErrNotFound if not exists.
func (s *WalletStore) Get(ctx context.Context, id int64) (*domain.TradingWallet, error) {
	query := `
		SELECT wallet_id, start_value, current_value, total_profit
		FROM trading_wallets
		WHERE wallet_id = $1
	`

	var w domain.TradingWallet
	err := s.pool.QueryRow(ctx, query, id).Scan(&w.ID, &w.StartValue, &w.Current, &w.TotalProfit)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get wallet: %w", err)
	}
	return &w, nil
}

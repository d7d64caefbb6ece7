package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"solana-sniper-bot/internal/domain"
	"solana-sniper-bot/internal/storage"
)

// StateStore implements storage.StateStore using PostgreSQL.
type StateStore struct {
	pool *Pool
}

// NewStateStore creates a new StateStore.
func NewStateStore(pool *Pool) *StateStore {
	return &StateStore{pool: pool}
}

// Compile-time interface check.
var _ storage.StateStore = (*StateStore)(nil)

// Upsert inserts the record or replaces the existing one with the same PoolID.
func (s *StateStore) Upsert(ctx context.Context, rec *domain.StateRecord) error {
	if rec == nil || rec.PoolID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO pool_states (
			pool_id, status, start_time, token_id, safety_info, buy_info, sell_info, profit, max_profit
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (pool_id) DO UPDATE SET
			status = EXCLUDED.status,
			start_time = EXCLUDED.start_time,
			token_id = EXCLUDED.token_id,
			safety_info = EXCLUDED.safety_info,
			buy_info = EXCLUDED.buy_info,
			sell_info = EXCLUDED.sell_info,
			profit = EXCLUDED.profit,
			max_profit = EXCLUDED.max_profit,
			updated_at = now()
	`

	_, err := s.pool.Exec(ctx, query,
		rec.PoolID,
		rec.Status,
		rec.StartTime,
		rec.TokenID,
		rec.SafetyInfo,
		rec.BuyInfo,
		rec.SellInfo,
		rec.Profit,
		rec.MaxProfit,
	)
	if err != nil {
		return fmt.Errorf("upsert pool state: %w", err)
	}
	return nil
}

// GetByPoolID retrieves a record by pool ID. Returns ErrNotFound if not exists.
func (s *StateStore) GetByPoolID(ctx context.Context, poolID string) (*domain.StateRecord, error) {
	query := `
		SELECT pool_id, status, start_time, token_id, safety_info, buy_info, sell_info, profit, max_profit
		FROM pool_states
		WHERE pool_id = $1
	`

	row := s.pool.QueryRow(ctx, query, poolID)
	rec, err := scanStateRecord(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get pool state by id: %w", err)
	}
	return rec, nil
}

// GetAll retrieves all records, ordered by pool ID ASC.
func (s *StateStore) GetAll(ctx context.Context) ([]*domain.StateRecord, error) {
	query := `
		SELECT pool_id, status, start_time, token_id, safety_info, buy_info, sell_info, profit, max_profit
		FROM pool_states
		ORDER BY pool_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all pool states: %w", err)
	}
	defer rows.Close()

	var records []*domain.StateRecord
	for rows.Next() {
		rec, err := scanStateRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pool state row: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pool state rows: %w", err)
	}

	return records, nil
}

// scanStateRecord scans a single row into a StateRecord.
func scanStateRecord(row pgx.Row) (*domain.StateRecord, error) {
	var rec domain.StateRecord

	err := row.Scan(
		&rec.PoolID,
		&rec.Status,
		&rec.StartTime,
		&rec.TokenID,
		&rec.SafetyInfo,
		&rec.BuyInfo,
		&rec.SellInfo,
		&rec.Profit,
		&rec.MaxProfit,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

package memory

import (
	"context"
	"sort"
	"sync"

	"solana-sniper-bot/internal/domain"
	"solana-sniper-bot/internal/storage"
)

// TradeArchive implements storage.TradeArchive using in-memory maps.
// Safe for concurrent use.
type TradeArchive struct {
	mu      sync.RWMutex
	trades  map[string][]*domain.TradeRecord // pool_id -> trades
	results map[string][]*domain.TradeResult // pool_id -> results
	seen    map[tradeKey]struct{}
}

type tradeKey struct {
	poolID    string
	signature string
}

// NewTradeArchive creates a new in-memory TradeArchive.
func NewTradeArchive() *TradeArchive {
	return &TradeArchive{
		trades:  make(map[string][]*domain.TradeRecord),
		results: make(map[string][]*domain.TradeResult),
		seen:    make(map[tradeKey]struct{}),
	}
}

// Compile-time interface check.
var _ storage.TradeArchive = (*TradeArchive)(nil)

// ArchiveMarketTrades stores the trade history fetched for a pool.
// Returns ErrDuplicateKey on a (pool_id, signature) collision; the batch
// is rejected whole.
func (a *TradeArchive) ArchiveMarketTrades(_ context.Context, poolID string, trades []*domain.TradeRecord) error {
	if poolID == "" {
		return storage.ErrInvalidInput
	}
	if len(trades) == 0 {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	// Validate the whole batch before mutating
	batchSeen := make(map[tradeKey]struct{}, len(trades))
	for _, t := range trades {
		k := tradeKey{poolID, t.Signature}
		if _, ok := a.seen[k]; ok {
			return storage.ErrDuplicateKey
		}
		if _, ok := batchSeen[k]; ok {
			return storage.ErrDuplicateKey
		}
		batchSeen[k] = struct{}{}
	}

	for _, t := range trades {
		cp := *t
		a.trades[poolID] = append(a.trades[poolID], &cp)
		a.seen[tradeKey{poolID, t.Signature}] = struct{}{}
	}
	return nil
}

// ArchiveResult stores the outcome of one of our trade cycles.
func (a *TradeArchive) ArchiveResult(_ context.Context, poolID string, res *domain.TradeResult) error {
	if poolID == "" || res == nil {
		return storage.ErrInvalidInput
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	cp := *res
	a.results[poolID] = append(a.results[poolID], &cp)
	return nil
}

// GetMarketTrades retrieves archived trades for a pool, ordered by epoch time ASC.
func (a *TradeArchive) GetMarketTrades(_ context.Context, poolID string) ([]*domain.TradeRecord, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	src := a.trades[poolID]
	result := make([]*domain.TradeRecord, 0, len(src))
	for _, t := range src {
		cp := *t
		result = append(result, &cp)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].EpochTime < result[j].EpochTime
	})

	return result, nil
}

// GetResults retrieves archived trade outcomes for a pool, ordered by buy time ASC.
func (a *TradeArchive) GetResults(_ context.Context, poolID string) ([]*domain.TradeResult, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	src := a.results[poolID]
	result := make([]*domain.TradeResult, 0, len(src))
	for _, r := range src {
		cp := *r
		result = append(result, &cp)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].BuyTime < result[j].BuyTime
	})

	return result, nil
}

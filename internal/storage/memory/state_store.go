package memory

import (
	"context"
	"sort"
	"sync"

	"solana-sniper-bot/internal/domain"
	"solana-sniper-bot/internal/storage"
)

// StateStore implements storage.StateStore using in-memory maps.
// Safe for concurrent use.
type StateStore struct {
	mu      sync.RWMutex
	records map[string]*domain.StateRecord // pool_id -> record
}

// NewStateStore creates a new in-memory StateStore.
func NewStateStore() *StateStore {
	return &StateStore{
		records: make(map[string]*domain.StateRecord),
	}
}

// Compile-time interface check.
var _ storage.StateStore = (*StateStore)(nil)

// Upsert inserts the record or replaces the existing one with the same PoolID.
func (s *StateStore) Upsert(_ context.Context, rec *domain.StateRecord) error {
	if rec == nil || rec.PoolID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *rec
	s.records[rec.PoolID] = &cp
	return nil
}

// GetByPoolID retrieves a record by pool ID. Returns ErrNotFound if not exists.
func (s *StateStore) GetByPoolID(_ context.Context, poolID string) (*domain.StateRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[poolID]
	if !ok {
		return nil, storage.ErrNotFound
	}

	cp := *rec
	return &cp, nil
}

// GetAll retrieves all records, ordered by pool ID ASC.
func (s *StateStore) GetAll(_ context.Context) ([]*domain.StateRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.StateRecord, 0, len(s.records))
	for _, rec := range s.records {
		cp := *rec
		result = append(result, &cp)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].PoolID < result[j].PoolID
	})

	return result, nil
}

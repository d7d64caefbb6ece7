package memory

import (
	"context"
	"sync"

	"solana-sniper-bot/internal/domain"
	"solana-sniper-bot/internal/storage"
)

// WalletStore implements storage.WalletStore using an in-memory map.
// Safe for concurrent use.
type WalletStore struct {
	mu      sync.RWMutex
	wallets map[int64]domain.TradingWallet
}

// NewWalletStore creates a new in-memory WalletStore.
func NewWalletStore() *WalletStore {
	return &WalletStore{
		wallets: make(map[int64]domain.TradingWallet),
	}
}

// Compile-time interface check.
var _ storage.WalletStore = (*WalletStore)(nil)

// Save inserts the wallet or replaces the existing one with the same ID.
func (s *WalletStore) Save(_ context.Context, w *domain.TradingWallet) error {
	if w == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.wallets[w.ID] = *w
	return nil
}

// Get retrieves a wallet by ID. Returns ErrNotFound if not exists.
func (s *WalletStore) Get(_ context.Context, id int64) (*domain.TradingWallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.wallets[id]
	if !ok {
		return nil, storage.ErrNotFound
	}

	cp := w
	return &cp, nil
}

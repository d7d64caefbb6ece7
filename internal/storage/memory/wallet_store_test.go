package memory

import (
	"context"
	"errors"
	"testing"

	"solana-sniper-bot/internal/domain"
	"solana-sniper-bot/internal/storage"
)

func TestWalletStore_SaveAndGet(t *testing.T) {
	store := NewWalletStore()
	ctx := context.Background()

	w := &domain.TradingWallet{ID: 1, StartValue: 10, Current: 10, TotalProfit: 0}
	if err := store.Save(ctx, w); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Current != 10 {
		t.Errorf("Current mismatch: got %v, want 10", got.Current)
	}
}

func TestWalletStore_SaveReplaces(t *testing.T) {
	store := NewWalletStore()
	ctx := context.Background()

	if err := store.Save(ctx, &domain.TradingWallet{ID: 1, StartValue: 10, Current: 10}); err != nil {
		t.Fatalf("first Save failed: %v", err)
	}

	updated := &domain.TradingWallet{ID: 1, StartValue: 10, Current: 10.058, TotalProfit: 0.0058}
	if err := store.Save(ctx, updated); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	got, err := store.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Current != 10.058 {
		t.Errorf("Current mismatch: got %v, want 10.058", got.Current)
	}
	if got.TotalProfit != 0.0058 {
		t.Errorf("TotalProfit mismatch: got %v, want 0.0058", got.TotalProfit)
	}
}

func TestWalletStore_NotFound(t *testing.T) {
	store := NewWalletStore()

	_, err := store.Get(context.Background(), 99)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestWalletStore_NilInput(t *testing.T) {
	store := NewWalletStore()

	if err := store.Save(context.Background(), nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

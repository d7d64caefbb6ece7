package memory

import (
	"context"
	"errors"
	"testing"

	"solana-sniper-bot/internal/domain"
	"solana-sniper-bot/internal/storage"
)

func TestTradeArchive_ArchiveAndGetMarketTrades(t *testing.T) {
	archive := NewTradeArchive()
	ctx := context.Background()

	trades := []*domain.TradeRecord{
		{Signature: "sig-2", EpochTime: 200, Type: domain.TradeSell, SOLAmount: 1.5},
		{Signature: "sig-1", EpochTime: 100, Type: domain.TradeBuy, SOLAmount: 0.5},
	}

	if err := archive.ArchiveMarketTrades(ctx, "pool-1", trades); err != nil {
		t.Fatalf("ArchiveMarketTrades failed: %v", err)
	}

	got, err := archive.GetMarketTrades(ctx, "pool-1")
	if err != nil {
		t.Fatalf("GetMarketTrades failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 trades, got %d", len(got))
	}
	// Ordered by epoch time ASC regardless of insert order
	if got[0].Signature != "sig-1" || got[1].Signature != "sig-2" {
		t.Errorf("wrong order: got %s, %s", got[0].Signature, got[1].Signature)
	}
}

func TestTradeArchive_DuplicateSignatureRejectsBatch(t *testing.T) {
	archive := NewTradeArchive()
	ctx := context.Background()

	first := []*domain.TradeRecord{{Signature: "sig-1", EpochTime: 100, Type: domain.TradeBuy}}
	if err := archive.ArchiveMarketTrades(ctx, "pool-1", first); err != nil {
		t.Fatalf("first archive failed: %v", err)
	}

	second := []*domain.TradeRecord{
		{Signature: "sig-2", EpochTime: 150, Type: domain.TradeBuy},
		{Signature: "sig-1", EpochTime: 100, Type: domain.TradeBuy},
	}
	err := archive.ArchiveMarketTrades(ctx, "pool-1", second)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Fatalf("Expected ErrDuplicateKey, got %v", err)
	}

	// The failed batch must not have been partially applied
	got, _ := archive.GetMarketTrades(ctx, "pool-1")
	if len(got) != 1 {
		t.Errorf("Expected 1 trade after rejected batch, got %d", len(got))
	}
}

func TestTradeArchive_SameSignatureDifferentPools(t *testing.T) {
	archive := NewTradeArchive()
	ctx := context.Background()

	trade := []*domain.TradeRecord{{Signature: "sig-1", EpochTime: 100, Type: domain.TradeBuy}}
	if err := archive.ArchiveMarketTrades(ctx, "pool-1", trade); err != nil {
		t.Fatalf("pool-1 archive failed: %v", err)
	}
	if err := archive.ArchiveMarketTrades(ctx, "pool-2", trade); err != nil {
		t.Errorf("same signature under a different pool should not collide: %v", err)
	}
}

func TestTradeArchive_Results(t *testing.T) {
	archive := NewTradeArchive()
	ctx := context.Background()

	res := &domain.TradeResult{
		Success:      true,
		TxID:         "Simulation",
		BoughtForSOL: 0.3,
		SoldForSOL:   0.39,
		Profit:       0.3,
		BuyTime:      1000,
		SellTime:     2000,
	}
	if err := archive.ArchiveResult(ctx, "pool-1", res); err != nil {
		t.Fatalf("ArchiveResult failed: %v", err)
	}

	got, err := archive.GetResults(ctx, "pool-1")
	if err != nil {
		t.Fatalf("GetResults failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(got))
	}
	if got[0].Profit != 0.3 {
		t.Errorf("Profit mismatch: got %v, want 0.3", got[0].Profit)
	}
}

func TestTradeArchive_EmptyPool(t *testing.T) {
	archive := NewTradeArchive()

	got, err := archive.GetMarketTrades(context.Background(), "unknown")
	if err != nil {
		t.Fatalf("GetMarketTrades failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected no trades, got %d", len(got))
	}
}

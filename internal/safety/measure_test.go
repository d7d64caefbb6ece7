package safety

import (
	"context"
	"sync/atomic"
	"testing"

	"solana-sniper-bot/internal/solana"
)

func TestMeasurePoolTokenPercent(t *testing.T) {
	pool := testPool()
	tokenMint, _ := pool.TokenMint()

	ata, err := solana.FindAssociatedTokenAddress(solana.RaydiumAuthority, tokenMint)
	if err != nil {
		t.Fatalf("derive pool account: %v", err)
	}

	t.Run("derived vault account skips the owner lookup", func(t *testing.T) {
		rpc := greenPoolRPC(pool)
		rpc.largest = []solana.TokenAccountBalance{{Address: ata, UIAmount: 995}}
		rpc.raydiumAccounts = nil

		data, err := NewMeasurer(rpc, 150).Measure(context.Background(), pool)
		if err != nil {
			t.Fatalf("measure: %v", err)
		}
		if data.PoolTokenPercent != 0.995 {
			t.Errorf("pool percent = %v, want 0.995", data.PoolTokenPercent)
		}
		if calls := atomic.LoadInt32(&rpc.ownerCalls); calls != 0 {
			t.Errorf("owner lookups = %d, want 0", calls)
		}
	})

	t.Run("non-associated vault falls back to the owner lookup", func(t *testing.T) {
		rpc := greenPoolRPC(pool)

		data, err := NewMeasurer(rpc, 150).Measure(context.Background(), pool)
		if err != nil {
			t.Fatalf("measure: %v", err)
		}
		if data.PoolTokenPercent != 0.995 {
			t.Errorf("pool percent = %v, want 0.995", data.PoolTokenPercent)
		}
		if calls := atomic.LoadInt32(&rpc.ownerCalls); calls != 1 {
			t.Errorf("owner lookups = %d, want 1", calls)
		}
	})

	t.Run("vault absent from largest holders", func(t *testing.T) {
		rpc := greenPoolRPC(pool)
		rpc.raydiumAccounts = []string{"SomeOtherVault"}

		data, err := NewMeasurer(rpc, 150).Measure(context.Background(), pool)
		if err != nil {
			t.Fatalf("measure: %v", err)
		}
		if data.PoolTokenPercent != 0 {
			t.Errorf("pool percent = %v, want 0", data.PoolTokenPercent)
		}
	})

	t.Run("liquidity converts at the configured rate", func(t *testing.T) {
		rpc := greenPoolRPC(pool)

		data, err := NewMeasurer(rpc, 150).Measure(context.Background(), pool)
		if err != nil {
			t.Fatalf("measure: %v", err)
		}
		if data.TotalLiquidity.Symbol != "SOL" || data.TotalLiquidity.AmountUSD != 80*150 {
			t.Errorf("liquidity = %+v", data.TotalLiquidity)
		}
	})
}

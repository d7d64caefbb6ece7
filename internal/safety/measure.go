package safety

import (
	"context"
	"fmt"

	"solana-sniper-bot/internal/domain"
	"solana-sniper-bot/internal/solana"
)

// Measurer gathers the raw safety inputs of a pool over RPC: token
// ownership, the share of supply held inside the pool, and the
// real-currency liquidity value.
type Measurer struct {
	rpc         solana.RPCClient
	solPriceUSD float64
}

// NewMeasurer creates a Measurer converting SOL liquidity at the given rate.
func NewMeasurer(rpc solana.RPCClient, solPriceUSD float64) *Measurer {
	return &Measurer{rpc: rpc, solPriceUSD: solPriceUSD}
}

// Measure collects a full PoolSafetyData. Measurement always completes;
// out-of-bounds liquidity is judged later by the classifier, not here.
func (m *Measurer) Measure(ctx context.Context, pool *domain.ParsedPool) (*domain.PoolSafetyData, error) {
	tokenMint, _ := pool.TokenMint()

	ownership, err := m.Ownership(ctx, tokenMint)
	if err != nil {
		return nil, fmt.Errorf("ownership info: %w", err)
	}

	poolPercent, err := m.poolTokenPercent(ctx, tokenMint, ownership.TotalSupply)
	if err != nil {
		return nil, fmt.Errorf("pool token percent: %w", err)
	}

	liquidity, err := m.liquidityValue(ctx, pool)
	if err != nil {
		return nil, fmt.Errorf("liquidity value: %w", err)
	}

	return &domain.PoolSafetyData{
		Creator:          pool.Creator,
		TotalLiquidity:   liquidity,
		PoolTokenPercent: poolPercent,
		Ownership:        *ownership,
		Pool:             *pool,
		TokenMint:        tokenMint,
	}, nil
}

// Ownership reads the token mint account and decodes its authorities.
func (m *Measurer) Ownership(ctx context.Context, tokenMint string) (*domain.OwnershipInfo, error) {
	info, err := m.rpc.GetAccountInfo(ctx, tokenMint)
	if err != nil {
		return nil, fmt.Errorf("get mint account %s: %w", tokenMint, err)
	}
	if info == nil {
		return nil, fmt.Errorf("mint account %s not found", tokenMint)
	}

	mint, err := solana.DecodeMintAccount(info.Data)
	if err != nil {
		return nil, fmt.Errorf("decode mint %s: %w", tokenMint, err)
	}

	return &domain.OwnershipInfo{
		MintAuthority:   mint.MintAuthority,
		FreezeAuthority: mint.FreezeAuthority,
		IsMintable:      mint.IsMintable(),
		TotalSupply:     mint.UISupply(),
	}, nil
}

// poolTokenPercent computes the fraction of the new token's supply sitting
// in the Raydium pool account. A missing pool account among the largest
// holders yields 0, not an error.
func (m *Measurer) poolTokenPercent(ctx context.Context, tokenMint string, totalSupply float64) (float64, error) {
	if totalSupply <= 0 {
		return 0, nil
	}

	largest, err := m.rpc.GetTokenLargestAccounts(ctx, tokenMint)
	if err != nil {
		return 0, fmt.Errorf("largest accounts: %w", err)
	}
	if len(largest) == 0 {
		return 0, nil
	}

	// The pool vault is normally the Raydium authority's associated
	// token account; derive it locally before asking the node.
	if ata, err := solana.FindAssociatedTokenAddress(solana.RaydiumAuthority, tokenMint); err == nil {
		for _, holder := range largest {
			if holder.Address == ata {
				return holder.UIAmount / totalSupply, nil
			}
		}
	}

	raydiumAccounts, err := m.rpc.GetTokenAccountsByOwner(ctx, solana.RaydiumAuthority, tokenMint)
	if err != nil {
		return 0, fmt.Errorf("raydium token accounts: %w", err)
	}
	if len(raydiumAccounts) == 0 {
		return 0, nil
	}

	poolAccount := raydiumAccounts[0]
	for _, holder := range largest {
		if holder.Address == poolAccount {
			return holder.UIAmount / totalSupply, nil
		}
	}
	return 0, nil
}

// liquidityValue reads the SOL-side vault balance and converts to USD at
// the fixed configured rate. A non-SOL vault is treated as USD-denominated.
func (m *Measurer) liquidityValue(ctx context.Context, pool *domain.ParsedPool) (domain.LiquidityValue, error) {
	balance, err := m.rpc.GetTokenAccountBalance(ctx, pool.QuoteVaultForSOL())
	if err != nil {
		return domain.LiquidityValue{}, fmt.Errorf("vault balance: %w", err)
	}

	amount := balance.UIAmount
	if balance.Decimals == domain.WSOLDecimals {
		return domain.LiquidityValue{
			Amount:    amount,
			AmountUSD: amount * m.solPriceUSD,
			Symbol:    "SOL",
		}, nil
	}
	return domain.LiquidityValue{
		Amount:    amount,
		AmountUSD: amount,
		Symbol:    "USD",
	}, nil
}

// UISupply reads the current decimal-adjusted supply of a mint.
func (m *Measurer) UISupply(ctx context.Context, mint string) (float64, error) {
	info, err := m.rpc.GetAccountInfo(ctx, mint)
	if err != nil {
		return 0, fmt.Errorf("get mint account %s: %w", mint, err)
	}
	if info == nil {
		return 0, fmt.Errorf("mint account %s not found", mint)
	}
	mi, err := solana.DecodeMintAccount(info.Data)
	if err != nil {
		return 0, fmt.Errorf("decode mint %s: %w", mint, err)
	}
	return mi.UISupply(), nil
}

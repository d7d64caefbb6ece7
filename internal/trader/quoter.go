package trader

import (
	"context"
	"fmt"

	"solana-sniper-bot/internal/domain"
	"solana-sniper-bot/internal/solana"
)

// VaultRatioQuoter quotes at the pool's spot price from its vault
// balances. It ignores price impact and fees, which is fine for the small
// entry sizes this bot trades; a real execution path should plug in an
// exchange-accurate quoter instead.
type VaultRatioQuoter struct {
	rpc solana.RPCClient
}

// NewVaultRatioQuoter creates a VaultRatioQuoter.
func NewVaultRatioQuoter(rpc solana.RPCClient) *VaultRatioQuoter {
	return &VaultRatioQuoter{rpc: rpc}
}

// Compile-time interface check.
var _ Quoter = (*VaultRatioQuoter)(nil)

// ComputeAmountOut quotes selling tokenAmount at the current vault ratio.
func (q *VaultRatioQuoter) ComputeAmountOut(ctx context.Context, pool *domain.ParsedPool, tokenAmount float64) (float64, error) {
	solVault := pool.QuoteVaultForSOL()
	tokenVault := pool.BaseVault
	if tokenVault == solVault {
		tokenVault = pool.QuoteVault
	}

	solBalance, err := q.rpc.GetTokenAccountBalance(ctx, solVault)
	if err != nil {
		return 0, fmt.Errorf("sol vault balance: %w", err)
	}
	tokenBalance, err := q.rpc.GetTokenAccountBalance(ctx, tokenVault)
	if err != nil {
		return 0, fmt.Errorf("token vault balance: %w", err)
	}
	if tokenBalance.UIAmount <= 0 {
		return 0, fmt.Errorf("pool %s token vault is empty", pool.PoolID)
	}

	return tokenAmount * solBalance.UIAmount / tokenBalance.UIAmount, nil
}

package trader

import (
	"context"
	"fmt"

	"solana-sniper-bot/internal/domain"
)

// SimSwapper paper-fills swaps off the quoter instead of sending
// transactions. Used in simulation mode and in tests.
type SimSwapper struct {
	quoter Quoter
}

// NewSimSwapper creates a SimSwapper.
func NewSimSwapper(quoter Quoter) *SimSwapper {
	return &SimSwapper{quoter: quoter}
}

// Compile-time interface check.
var _ Swapper = (*SimSwapper)(nil)

// Buy fills at the current per-token quote.
func (s *SimSwapper) Buy(ctx context.Context, pool *domain.ParsedPool, solAmount float64) (float64, string, error) {
	pricePerToken, err := s.quoter.ComputeAmountOut(ctx, pool, 1)
	if err != nil {
		return 0, "", fmt.Errorf("quote buy fill: %w", err)
	}
	if pricePerToken <= 0 {
		return 0, "", fmt.Errorf("pool %s quoted a non-positive price", pool.PoolID)
	}
	return solAmount / pricePerToken, "Simulation", nil
}

// Sell fills at the current quote for the whole position.
func (s *SimSwapper) Sell(ctx context.Context, pool *domain.ParsedPool, tokenAmount float64) (float64, string, error) {
	out, err := s.quoter.ComputeAmountOut(ctx, pool, tokenAmount)
	if err != nil {
		return 0, "", fmt.Errorf("quote sell fill: %w", err)
	}
	return out, "Simulation", nil
}

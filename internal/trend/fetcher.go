package trend

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"strconv"

	"solana-sniper-bot/internal/domain"
	"solana-sniper-bot/internal/solana"
)

// TradesFetcher retrieves the trade history of a pool, ordered ascending
// by time.
type TradesFetcher interface {
	FetchTrades(ctx context.Context, pool *domain.ParsedPool) ([]domain.TradeRecord, error)
}

// RPCTradesFetcher reconstructs trades from the transaction history of the
// pool account: each swap shows up as a pair of SPL token transfers in the
// inner instructions, one leg into a pool vault and one out.
type RPCTradesFetcher struct {
	rpc       solana.RPCClient
	maxTrades int
	pageSize  int
	logger    *log.Logger
}

// RPCTradesFetcherOptions contains configuration for creating an RPCTradesFetcher.
type RPCTradesFetcherOptions struct {
	RPC       solana.RPCClient
	MaxTrades int // Default: 0 (unbounded)
	PageSize  int // Default: 1000
	Logger    *log.Logger
}

// NewRPCTradesFetcher creates an RPCTradesFetcher.
func NewRPCTradesFetcher(opts RPCTradesFetcherOptions) *RPCTradesFetcher {
	pageSize := opts.PageSize
	if pageSize < 1 {
		pageSize = 1000
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &RPCTradesFetcher{
		rpc:       opts.RPC,
		maxTrades: opts.MaxTrades,
		pageSize:  pageSize,
		logger:    logger,
	}
}

// Compile-time interface check.
var _ TradesFetcher = (*RPCTradesFetcher)(nil)

// FetchTrades pages backward through the pool's transaction history and
// decodes each swap into a TradeRecord. The result is sorted ascending by
// epoch time.
func (f *RPCTradesFetcher) FetchTrades(ctx context.Context, pool *domain.ParsedPool) ([]domain.TradeRecord, error) {
	_, tokenDecimals := pool.TokenMint()
	tokenVault := pool.BaseVault
	if pool.BaseMint == domain.WSOLMint {
		tokenVault = pool.QuoteVault
	}

	var trades []domain.TradeRecord
	before := ""
	for {
		sigs, err := f.rpc.GetSignaturesForAddress(ctx, pool.PoolID, &solana.SignaturesOpts{
			Before: before,
			Limit:  f.pageSize,
		})
		if err != nil {
			return nil, fmt.Errorf("signatures for pool %s: %w", pool.PoolID, err)
		}
		if len(sigs) == 0 {
			break
		}

		for _, sig := range sigs {
			if sig.Err != nil {
				continue
			}
			tx, err := f.rpc.GetTransaction(ctx, sig.Signature)
			if err != nil {
				f.logger.Printf("[trend] fetch tx %s failed: %v", sig.Signature, err)
				continue
			}
			if tx == nil {
				continue
			}
			if rec, ok := decodeTrade(tx, tokenVault, tokenDecimals); ok {
				trades = append(trades, rec)
			}
		}

		if len(sigs) < f.pageSize {
			break
		}
		if f.maxTrades > 0 && len(trades) >= f.maxTrades {
			break
		}
		before = sigs[len(sigs)-1].Signature
	}

	sort.Slice(trades, func(i, j int) bool { return trades[i].EpochTime < trades[j].EpochTime })
	return trades, nil
}

// decodeTrade extracts one swap from a transaction. A swap is the inner
// instruction group holding exactly two SPL token transfers: the user leg
// in and the pool leg out. Direction follows the first leg's destination:
// into the token vault means the user sold the token.
func decodeTrade(tx *solana.Transaction, tokenVault string, tokenDecimals int) (domain.TradeRecord, bool) {
	var pair []solana.ParsedInstruction
	for _, set := range tx.InnerInstructions {
		var transfers []solana.ParsedInstruction
		for _, inst := range set.Instructions {
			if inst.Program == "spl-token" {
				transfers = append(transfers, inst)
			}
		}
		if len(transfers) == 2 {
			pair = transfers
			break
		}
	}
	if pair == nil {
		return domain.TradeRecord{}, false
	}

	in, out := pair[0].Info, pair[1].Info
	selling := in.Destination == tokenVault

	tokenRaw, solRaw := in.Amount, out.Amount
	if !selling {
		tokenRaw, solRaw = out.Amount, in.Amount
	}

	tokenAmount := uiAmount(tokenRaw, tokenDecimals)
	solAmount := uiAmount(solRaw, domain.WSOLDecimals)
	if tokenAmount == 0 {
		return domain.TradeRecord{}, false
	}

	tradeType := domain.TradeBuy
	if selling {
		tradeType = domain.TradeSell
	}

	return domain.TradeRecord{
		Signature:   tx.Signature,
		EpochTime:   tx.BlockTime,
		Type:        tradeType,
		TokenAmount: tokenAmount,
		SOLAmount:   solAmount,
		PriceSOL:    solAmount / tokenAmount,
	}, true
}

// uiAmount converts a raw integer amount string to decimal-adjusted units.
func uiAmount(raw string, decimals int) float64 {
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0
	}
	return float64(n) / math.Pow10(decimals)
}

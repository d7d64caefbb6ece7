package intake

import (
	"context"
	"fmt"

	"solana-sniper-bot/internal/domain"
	"solana-sniper-bot/internal/solana"
)

// InitMarker is the log line fragment that marks a pool-initialization
// transaction on Raydium AMM v4.
const InitMarker = "init_pc_amount"

// Raydium initialize2 instruction account positions.
const (
	accAMM       = 4
	accLPMint    = 7
	accCoinMint  = 8
	accPCMint    = 9
	accCoinVault = 10
	accPCVault   = 11
	accCreator   = 17
)

// Parser resolves a creation-event signature into a ParsedPool.
// Implementations own their retry policy; a returned error means the
// event is dropped.
type Parser interface {
	ParseCreationEvent(ctx context.Context, signature string) (*domain.ParsedPool, error)
}

// RaydiumParser parses Raydium AMM v4 initialize2 transactions over RPC.
type RaydiumParser struct {
	rpc solana.RPCClient
}

// NewRaydiumParser creates a RaydiumParser.
func NewRaydiumParser(rpc solana.RPCClient) *RaydiumParser {
	return &RaydiumParser{rpc: rpc}
}

// Compile-time interface check.
var _ Parser = (*RaydiumParser)(nil)

// ParseCreationEvent fetches the transaction and extracts the pool layout
// from the initialize2 instruction accounts, then reads the AMM account for
// swap status and pool open time.
func (p *RaydiumParser) ParseCreationEvent(ctx context.Context, signature string) (*domain.ParsedPool, error) {
	tx, err := p.rpc.GetTransaction(ctx, signature)
	if err != nil {
		return nil, fmt.Errorf("get transaction %s: %w", signature, err)
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction %s not found", signature)
	}
	if tx.Err != nil {
		return nil, fmt.Errorf("transaction %s failed on chain", signature)
	}

	init, err := findInitInstruction(tx)
	if err != nil {
		return nil, fmt.Errorf("transaction %s: %w", signature, err)
	}

	pool := &domain.ParsedPool{
		PoolID:      init.Accounts[accAMM],
		BaseMint:    init.Accounts[accCoinMint],
		QuoteMint:   init.Accounts[accPCMint],
		BaseVault:   init.Accounts[accCoinVault],
		QuoteVault:  init.Accounts[accPCVault],
		Creator:     init.Accounts[accCreator],
		LPTokenMint: init.Accounts[accLPMint],
		TxSignature: signature,
	}

	pool.BaseDecimals, err = p.mintDecimals(ctx, tx, pool.BaseMint)
	if err != nil {
		return nil, fmt.Errorf("base mint decimals: %w", err)
	}
	pool.QuoteDecimals, err = p.mintDecimals(ctx, tx, pool.QuoteMint)
	if err != nil {
		return nil, fmt.Errorf("quote mint decimals: %w", err)
	}

	amm, err := p.readAMM(ctx, pool.PoolID)
	if err != nil {
		return nil, err
	}
	pool.SwapEnabled = amm.SwapEnabled()
	// Live pools carry a nonzero poolOpenTime too; only a pool still
	// waiting for its start is postponed.
	if amm.Status == solana.AMMStatusWaitingForStart && amm.PoolOpenTime > 0 {
		openTime := int64(amm.PoolOpenTime)
		pool.StartTime = &openTime
	}

	return pool, nil
}

// findInitInstruction locates the Raydium initialize2 instruction.
func findInitInstruction(tx *solana.Transaction) (*solana.OuterInstruction, error) {
	for i := range tx.Instructions {
		ins := &tx.Instructions[i]
		if ins.ProgramID == solana.RaydiumAMMV4 && len(ins.Accounts) > accCreator {
			return ins, nil
		}
	}
	return nil, fmt.Errorf("no raydium initialize instruction")
}

// mintDecimals resolves a mint's decimals, preferring the transaction's own
// token-balance metadata over an extra account fetch.
func (p *RaydiumParser) mintDecimals(ctx context.Context, tx *solana.Transaction, mint string) (int, error) {
	if mint == domain.WSOLMint {
		return domain.WSOLDecimals, nil
	}
	for _, b := range tx.PostTokenBalances {
		if b.Mint == mint {
			return b.Decimals, nil
		}
	}

	info, err := p.rpc.GetAccountInfo(ctx, mint)
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
	return mi.Decimals, nil
}

func (p *RaydiumParser) readAMM(ctx context.Context, poolID string) (*solana.AMMInfo, error) {
	info, err := p.rpc.GetAccountInfo(ctx, poolID)
	if err != nil {
		return nil, fmt.Errorf("get amm account %s: %w", poolID, err)
	}
	if info == nil {
		return nil, fmt.Errorf("amm account %s not found", poolID)
	}
	amm, err := solana.DecodeAMMAccount(info.Data)
	if err != nil {
		return nil, fmt.Errorf("decode amm %s: %w", poolID, err)
	}
	return amm, nil
}

package intake

import (
	"context"
	"encoding/binary"
	"testing"

	"solana-sniper-bot/internal/domain"
	"solana-sniper-bot/internal/solana"
)

const (
	parserPoolID    = "AmmPool111111111111111111111111111111111111"
	parserTokenMint = "TokenMint11111111111111111111111111111111"
	parserCreator   = "Creator111111111111111111111111111111111111"
)

// parserRPC serves one initialize2 transaction and the pool's AMM account.
type parserRPC struct {
	ammStatus   uint64
	ammOpenTime uint64
}

func (r *parserRPC) GetTransaction(ctx context.Context, signature string) (*solana.Transaction, error) {
	accounts := make([]string, 18)
	accounts[4] = parserPoolID
	accounts[7] = "LPMint1111111111111111111111111111111111111"
	accounts[8] = domain.WSOLMint
	accounts[9] = parserTokenMint
	accounts[10] = "CoinVault11111111111111111111111111111111"
	accounts[11] = "PCVault111111111111111111111111111111111111"
	accounts[17] = parserCreator

	return &solana.Transaction{
		Signature: signature,
		Instructions: []solana.OuterInstruction{
			{ProgramID: solana.RaydiumAMMV4, Accounts: accounts},
		},
		PostTokenBalances: []solana.TokenBalance{
			{Mint: parserTokenMint, Decimals: 6},
		},
	}, nil
}

func (r *parserRPC) GetAccountInfo(ctx context.Context, pubkey string) (*solana.AccountInfo, error) {
	data := make([]byte, 232)
	binary.LittleEndian.PutUint64(data[0:8], r.ammStatus)
	binary.LittleEndian.PutUint64(data[224:232], r.ammOpenTime)
	return &solana.AccountInfo{Data: data}, nil
}

func (r *parserRPC) GetSignaturesForAddress(ctx context.Context, address string, opts *solana.SignaturesOpts) ([]solana.SignatureInfo, error) {
	return nil, nil
}

func (r *parserRPC) GetTokenAccountBalance(ctx context.Context, account string) (*solana.TokenAmount, error) {
	return nil, nil
}

func (r *parserRPC) GetTokenLargestAccounts(ctx context.Context, mint string) ([]solana.TokenAccountBalance, error) {
	return nil, nil
}

func (r *parserRPC) GetTokenAccountsByOwner(ctx context.Context, owner, mint string) ([]string, error) {
	return nil, nil
}

func TestParseCreationEventStartTime(t *testing.T) {
	tests := []struct {
		name          string
		status        uint64
		openTime      uint64
		wantStart     bool
		wantSwappable bool
	}{
		{"live pool keeps nil start time", solana.AMMStatusSwap, 1_700_000_000, false, true},
		{"waiting pool gets its open time", solana.AMMStatusWaitingForStart, 1_900_000_000, true, true},
		{"disabled pool stays gated", 1, 1_700_000_000, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewRaydiumParser(&parserRPC{ammStatus: tt.status, ammOpenTime: tt.openTime})
			pool, err := parser.ParseCreationEvent(context.Background(), "sig-1")
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if pool.SwapEnabled != tt.wantSwappable {
				t.Errorf("SwapEnabled = %v, want %v", pool.SwapEnabled, tt.wantSwappable)
			}
			if tt.wantStart {
				if pool.StartTime == nil {
					t.Fatal("StartTime should be set for a waiting pool")
				}
				if *pool.StartTime != int64(tt.openTime) {
					t.Errorf("StartTime = %d, want %d", *pool.StartTime, tt.openTime)
				}
			} else if pool.StartTime != nil {
				t.Errorf("StartTime = %d, want nil", *pool.StartTime)
			}
		})
	}
}

func TestParseCreationEventLayout(t *testing.T) {
	parser := NewRaydiumParser(&parserRPC{ammStatus: solana.AMMStatusSwap})
	pool, err := parser.ParseCreationEvent(context.Background(), "sig-2")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if pool.PoolID != parserPoolID {
		t.Errorf("PoolID = %s", pool.PoolID)
	}
	if pool.Creator != parserCreator {
		t.Errorf("Creator = %s", pool.Creator)
	}
	if pool.BaseMint != domain.WSOLMint || pool.QuoteMint != parserTokenMint {
		t.Errorf("mints = %s / %s", pool.BaseMint, pool.QuoteMint)
	}
	if pool.BaseDecimals != domain.WSOLDecimals || pool.QuoteDecimals != 6 {
		t.Errorf("decimals = %d / %d", pool.BaseDecimals, pool.QuoteDecimals)
	}
}

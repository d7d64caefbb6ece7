package domain

// PoolEvent is one raw observation from the chain log feed.
// Identity key is the transaction signature; delivery is at-least-once,
// dedup is the intake stage's responsibility.
type PoolEvent struct {
	Signature string   // transaction signature
	Slot      int64    // Solana slot number
	Logs      []string // raw log lines from the transaction
}

// ParsedPool describes a newly initialized liquidity pool, produced by the
// creation-transaction parser. Immutable once emitted into the pipeline.
type ParsedPool struct {
	PoolID        string // AMM account address
	BaseMint      string
	QuoteMint     string
	BaseVault     string
	QuoteVault    string
	BaseDecimals  int
	QuoteDecimals int
	Creator       string // wallet that funded the pool
	LPTokenMint   string // receipt-token mint for the provided liquidity
	SwapEnabled   bool
	StartTime     *int64 // pool open time, epoch seconds; nil when live immediately
	TxSignature   string // creation transaction signature
}

// TokenMint returns the non-SOL side of the pair, with its decimals.
func (p *ParsedPool) TokenMint() (string, int) {
	if p.BaseMint == WSOLMint {
		return p.QuoteMint, p.QuoteDecimals
	}
	return p.BaseMint, p.BaseDecimals
}

// QuoteVaultForSOL returns the vault holding the SOL side of the pair.
func (p *ParsedPool) QuoteVaultForSOL() string {
	if p.BaseMint == WSOLMint {
		return p.BaseVault
	}
	return p.QuoteVault
}

// HasSOLSide reports whether one side of the pair is wrapped SOL.
func (p *ParsedPool) HasSOLSide() bool {
	return p.BaseMint == WSOLMint || p.QuoteMint == WSOLMint
}

// WSOLMint is the wrapped-SOL mint address.
const WSOLMint = "So11111111111111111111111111111111111111112"

// WSOLDecimals is the decimal precision of wrapped SOL.
const WSOLDecimals = 9

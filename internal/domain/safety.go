package domain

// SafetyStatus classifies how risky a pool is to trade.
type SafetyStatus string

const (
	// StatusRed marks a pool that will almost certainly be rugged. Never traded.
	StatusRed SafetyStatus = "RED"
	// StatusYellow marks a likely scam that still leaves a short profit window.
	StatusYellow SafetyStatus = "YELLOW"
	// StatusGreen marks a pool with locked liquidity and no mint authority.
	StatusGreen SafetyStatus = "GREEN"
	// StatusTurbo marks the aggressive quick-flip mode that bypasses trend checks.
	StatusTurbo SafetyStatus = "TURBO"
)

// OwnershipInfo describes mint/freeze authorities of a token.
type OwnershipInfo struct {
	MintAuthority   string // empty when authority is revoked
	FreezeAuthority string // empty when authority is revoked
	IsMintable      bool
	TotalSupply     float64 // ui units (decimal-adjusted)
}

// LiquidityValue is the measured real-currency liquidity of a pool.
type LiquidityValue struct {
	Amount    float64 // in Symbol units
	AmountUSD float64 // converted at the configured SOL rate
	Symbol    string  // "SOL" or "USD"
}

// PoolSafetyData is the full measurement produced by the safety evaluator
// before classification.
type PoolSafetyData struct {
	Creator          string
	TotalLiquidity   LiquidityValue
	PoolTokenPercent float64 // fraction of new-token supply held inside the pool
	Ownership        OwnershipInfo
	Pool             ParsedPool
	TokenMint        string
}

package domain

// TradeType is the direction of a pool trade.
type TradeType string

const (
	TradeBuy  TradeType = "BUY"
	TradeSell TradeType = "SELL"
)

// TradeRecord is one historical trade against a pool, ordered by EpochTime.
// Immutable once fetched.
type TradeRecord struct {
	Signature   string
	EpochTime   int64 // Unix timestamp in seconds
	Type        TradeType
	TokenAmount float64
	SOLAmount   float64
	PriceSOL    float64 // SOLAmount / TokenAmount
}

// Trend classifies short-term price movement of a pool.
type Trend string

const (
	TrendPumping     Trend = "PUMPING"
	TrendDumping     Trend = "DUMPING"
	TrendEquilibrium Trend = "EQUILIBRIUM"
)

// TrendAnalysis is the result of analyzing a time-bounded trade window.
type TrendAnalysis struct {
	Trend             Trend
	AverageGrowthRate float64 // mean of per-step growth rates
	Volatility        float64 // population stddev of growth rates
	BuysCount         int     // trades surviving the analysis filter
}

// TradingVerdict is the terminal decision for a pool.
type TradingVerdict struct {
	TradeApproved bool
	Status        SafetyStatus
	Reason        string
}

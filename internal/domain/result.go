package domain

// TradeResult is the outcome of one buy+sell cycle.
type TradeResult struct {
	Success      bool
	TxID         string // sell transaction signature, or "Simulation"
	BoughtForSOL float64
	SoldForSOL   float64
	Profit       float64 // (sold - bought) / bought
	BuyTime      int64   // Unix ms
	SellTime     int64   // Unix ms
	Reason       string  // failure reason when Success is false
}

// StateRecord is the per-pool row pushed to the state sink for display.
// Upserted by pool ID as the pool moves through the pipeline.
type StateRecord struct {
	PoolID     string
	Status     string // pipeline phase or terminal outcome
	StartTime  string
	TokenID    string
	SafetyInfo string
	BuyInfo    string
	SellInfo   string
	Profit     string
	MaxProfit  float64
}

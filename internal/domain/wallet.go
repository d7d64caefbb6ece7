package domain

// TradingWallet tracks the SOL balance used for trading across a run.
// Updated exactly once per completed trade cycle, as a whole-value replace.
type TradingWallet struct {
	ID          int64
	StartValue  float64
	Current     float64
	TotalProfit float64 // (Current - StartValue) / StartValue
}

// ApplyTradeResult returns a new wallet with the trade's PnL applied.
// Failed sells count the full entry as lost.
func (w TradingWallet) ApplyTradeResult(boughtForSOL, soldForSOL float64) TradingWallet {
	current := w.Current + (soldForSOL - boughtForSOL)
	total := 0.0
	if w.StartValue != 0 {
		total = (current - w.StartValue) / w.StartValue
	}
	return TradingWallet{ID: w.ID, StartValue: w.StartValue, Current: current, TotalProfit: total}
}

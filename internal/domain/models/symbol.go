package models

// SymbolRecord is one row of the reference table.
type SymbolRecord struct {
	DisplayName     string `json:"display_name"`
	CanonicalSymbol string `json:"symbol"`
	Market          string `json:"market"`
}

// WatchlistRow is a watchlist entry as shown to a consumer.
// LastRSI is 0 until a cycle has computed a value for the symbol.
type WatchlistRow struct {
	Symbol      string  `json:"symbol"`
	DisplayName string  `json:"display_name"`
	LastRSI     float64 `json:"last_rsi"`
}

// RsiReading is what a quote source returns for one symbol.
type RsiReading struct {
	Symbol string  `json:"symbol"`
	RSI    float64 `json:"rsi"`
	Period int     `json:"period"`
}

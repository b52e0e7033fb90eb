package models

import "time"

// Asset — tradable instrument with its latest market snapshot.
// Mutated only by market-data refresh.
type Asset struct {
	Symbol            string    `json:"symbol"`
	Name              string    `json:"name"`
	CurrentPrice      float64   `json:"current_price"`
	Change24h         float64   `json:"change_24h"`
	MarketCap         float64   `json:"market_cap"`
	Volume24h         float64   `json:"volume_24h"`
	CirculatingSupply float64   `json:"circulating_supply"`
	TotalSupply       float64   `json:"total_supply"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// PricePoint — one OHLCV candle. Immutable; series are ordered
// ascending by timestamp.
type PricePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

package models

import "time"

type SignalType string

const (
	SignalStrongBuy  SignalType = "strong_buy"
	SignalBuy        SignalType = "buy"
	SignalHold       SignalType = "hold"
	SignalSell       SignalType = "sell"
	SignalStrongSell SignalType = "strong_sell"
)

// IsBuySide reports whether the signal recommends entering a position.
func (s SignalType) IsBuySide() bool {
	return s == SignalBuy || s == SignalStrongBuy
}

// IsSellSide reports whether the signal recommends exiting a position.
func (s SignalType) IsSellSide() bool {
	return s == SignalSell || s == SignalStrongSell
}

// TechnicalSignals — per-asset indicator snapshot. Derived view,
// recomputed on every request and never persisted as authoritative
// state.
type TechnicalSignals struct {
	Symbol        string     `json:"symbol"`
	SMA50         float64    `json:"sma_50"`
	SMA200        float64    `json:"sma_200"`
	EMA20         float64    `json:"ema_20"`
	GoldenCross   bool       `json:"golden_cross"`
	DeathCross    bool       `json:"death_cross"`
	RSI14         float64    `json:"rsi_14"`
	MACD          float64    `json:"macd"`
	MACDSignal    float64    `json:"macd_signal"`
	MACDHistogram float64    `json:"macd_histogram"`
	Support       float64    `json:"support"`
	Resistance    float64    `json:"resistance"`
	Overall       SignalType `json:"overall"`
	Description   string     `json:"description"`
	CalculatedAt  time.Time  `json:"calculated_at"`
}

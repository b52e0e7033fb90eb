package models

import "time"

// AssetRecommendation — ephemeral advice for one asset, regenerated on
// every query.
type AssetRecommendation struct {
	Asset             Asset      `json:"asset"`
	Type              SignalType `json:"type"`
	Reasoning         string     `json:"reasoning"`
	Confidence        float64    `json:"confidence"`        // [0,1]
	PotentialReturn   float64    `json:"potential_return"`  // percent
	RiskLevel         float64    `json:"risk_level"`        // [0,1]
	HoldingPeriodDays int        `json:"holding_period_days"`
	EntryPrice        float64    `json:"entry_price"`
	ExitPrice         *float64   `json:"exit_price,omitempty"`
	GeneratedAt       time.Time  `json:"generated_at"`
}

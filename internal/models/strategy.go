package models

import (
	"time"
)

type StrategyType string

const (
	StrategyDCA                StrategyType = "dca"
	StrategyTakeProfitStopLoss StrategyType = "tp_sl"
	StrategyMarketSignal       StrategyType = "market_signal"
	StrategyCustom             StrategyType = "custom"
)

type StrategyStatus string

const (
	StrategyDraft     StrategyStatus = "draft"
	StrategyActive    StrategyStatus = "active"
	StrategyPaused    StrategyStatus = "paused"
	StrategyCompleted StrategyStatus = "completed"
	StrategyFailed    StrategyStatus = "failed"
)

// Strategy — a user-owned trading strategy. The execution engine
// mutates only Status and LastExecutedAt; everything else belongs to
// the owner.
type Strategy struct {
	ID             string         `json:"id"`
	UserID         int64          `json:"user_id"`
	Type           StrategyType   `json:"type"`
	Status         StrategyStatus `json:"status"`
	Symbols        []string       `json:"symbols"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	LastExecutedAt *time.Time     `json:"last_executed_at,omitempty"`

	// Свободный блоб параметров; типизированные поля ниже — то, что
	// реально читает движок.
	Params map[string]any `json:"params,omitempty"`

	MaxInvestment    float64 `json:"max_investment"`
	TakeProfitPct    float64 `json:"take_profit_pct"`
	StopLossPct      float64 `json:"stop_loss_pct"`
	FrequencyMinutes int     `json:"frequency_minutes"`
}

// Frequency returns the configured execution interval. Zero means the
// strategy has no recurring schedule.
func (s *Strategy) Frequency() time.Duration {
	return time.Duration(s.FrequencyMinutes) * time.Minute
}

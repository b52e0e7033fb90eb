package models

import "time"

type IntentTrigger string

const (
	TriggerDCA        IntentTrigger = "dca"
	TriggerTakeProfit IntentTrigger = "take_profit"
	TriggerStopLoss   IntentTrigger = "stop_loss"
)

// TradeIntent — one order the executor decided to place. TransactionID
// links the intent to the transaction that was actually recorded.
type TradeIntent struct {
	Symbol        string          `json:"symbol"`
	Side          TransactionType `json:"side"`
	Quantity      float64         `json:"quantity"`
	Price         float64         `json:"price"`
	Trigger       IntentTrigger   `json:"trigger"`
	TransactionID string          `json:"transaction_id"`
}

// ExecutionResult — outcome of a single strategy evaluation. Always
// produced, even on total failure, so callers can render something.
type ExecutionResult struct {
	StrategyID string        `json:"strategy_id"`
	Success    bool          `json:"success"`
	Message    string        `json:"message"`
	Intents    []TradeIntent `json:"intents"`
	ExecutedAt time.Time     `json:"executed_at"`
}

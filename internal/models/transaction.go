package models

import "time"

type TransactionType string

const (
	TransactionBuy  TransactionType = "buy"
	TransactionSell TransactionType = "sell"
)

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionFailed    TransactionStatus = "failed"
	TransactionCancelled TransactionStatus = "cancelled"
)

// Transaction — a single ledger entry. Immutable once completed except
// for status/notes corrections. Only completed transactions count
// toward derived balances.
type Transaction struct {
	ID         string            `json:"id"`
	UserID     int64             `json:"user_id"`
	Symbol     string            `json:"symbol"`
	Type       TransactionType   `json:"type"`
	Quantity   float64           `json:"quantity"`
	Price      float64           `json:"price"`
	Total      float64           `json:"total"`
	Fee        float64           `json:"fee"`
	Timestamp  time.Time         `json:"timestamp"`
	ExchangeID string            `json:"exchange_id"`
	Status     TransactionStatus `json:"status"`
	StrategyID string            `json:"strategy_id,omitempty"`
	Notes      string            `json:"notes,omitempty"`
}

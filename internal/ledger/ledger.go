package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/mansourplus/crypto-trader/internal/models"
)

// ErrInconsistent signals a derived negative balance. That can only
// happen when the transaction store accepted a sell that was never
// covered by buys; it must never be papered over.
var ErrInconsistent = errors.New("ledger: derived balance is negative")

// TransactionSource is the slice of the transaction store the ledger
// needs.
type TransactionSource interface {
	CompletedByUserAndSymbol(ctx context.Context, userID int64, symbol string) ([]models.Transaction, error)
	CompletedBuysByUserAndSymbol(ctx context.Context, userID int64, symbol string) ([]models.Transaction, error)
}

// Ledger derives holdings by replaying completed transactions. It holds
// no cached aggregate: every call recomputes from the authoritative
// store, so callers needing repeated reads within one execution should
// snapshot the result themselves.
type Ledger struct {
	txs TransactionSource
}

func New(txs TransactionSource) *Ledger {
	return &Ledger{txs: txs}
}

// Balance returns the user's derived holding for one symbol:
// Σ completed buy quantities − Σ completed sell quantities. A symbol
// with no transactions yields 0. A negative total returns
// ErrInconsistent.
func (l *Ledger) Balance(ctx context.Context, userID int64, symbol string) (float64, error) {
	txs, err := l.txs.CompletedByUserAndSymbol(ctx, userID, symbol)
	if err != nil {
		return 0, fmt.Errorf("ledger.Balance: %w", err)
	}

	balance := 0.0
	for _, t := range txs {
		if t.Status != models.TransactionCompleted {
			continue
		}
		switch t.Type {
		case models.TransactionBuy:
			balance += t.Quantity
		case models.TransactionSell:
			balance -= t.Quantity
		}
	}
	if balance < 0 {
		return 0, fmt.Errorf("ledger.Balance: user %d symbol %s: %w", userID, symbol, ErrInconsistent)
	}
	return balance, nil
}

// AverageBuyPrice is the quantity-weighted mean price over the user's
// all-time completed buys for the symbol; 0 when there are none.
// Deliberately ignores subsequent sells, matching how cost basis has
// always been reported here.
func (l *Ledger) AverageBuyPrice(ctx context.Context, userID int64, symbol string) (float64, error) {
	buys, err := l.txs.CompletedBuysByUserAndSymbol(ctx, userID, symbol)
	if err != nil {
		return 0, fmt.Errorf("ledger.AverageBuyPrice: %w", err)
	}

	totalQty, totalCost := 0.0, 0.0
	for _, t := range buys {
		if t.Status != models.TransactionCompleted || t.Type != models.TransactionBuy {
			continue
		}
		totalQty += t.Quantity
		totalCost += t.Quantity * t.Price
	}
	if totalQty == 0 {
		return 0, nil
	}
	return totalCost / totalQty, nil
}

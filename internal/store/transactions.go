package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mansourplus/crypto-trader/internal/models"
	"github.com/mansourplus/crypto-trader/pkg/db"
)

// TransactionStore persists the transaction ledger.
type TransactionStore struct {
	db db.TxManager
}

func NewTransactionStore(m db.TxManager) *TransactionStore {
	return &TransactionStore{db: m}
}

const insertTransactionSQL = `
INSERT INTO transactions
	(id, user_id, symbol, type, quantity, price, total, fee, executed_at, exchange_id, status, strategy_id, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NULLIF($12, ''), $13)`

func (s *TransactionStore) Insert(ctx context.Context, t models.Transaction) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("TransactionStore.Insert: %w", err)
		}
	}()

	return s.db.RunMaster(ctx, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, insertTransactionSQL,
			t.ID, t.UserID, t.Symbol, t.Type, t.Quantity, t.Price, t.Total, t.Fee,
			t.Timestamp, t.ExchangeID, t.Status, t.StrategyID, t.Notes)
		return err
	})
}

const selectCompletedSQL = `
SELECT id, user_id, symbol, type, quantity, price, total, fee, executed_at, exchange_id, status, COALESCE(strategy_id, ''), notes
FROM transactions
WHERE user_id = $1 AND symbol = $2 AND status = 'completed'
ORDER BY executed_at`

// CompletedByUserAndSymbol returns the user's completed transactions
// for one symbol, oldest first. Pending, failed and cancelled rows are
// filtered at the query level so derived balances never see them.
func (s *TransactionStore) CompletedByUserAndSymbol(ctx context.Context, userID int64, symbol string) (txs []models.Transaction, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("TransactionStore.CompletedByUserAndSymbol: %w", err)
		}
	}()

	rows, err := s.db.Conn().Query(ctx, selectCompletedSQL, userID, symbol)
	if err != nil {
		return nil, err
	}
	return scanTransactions(rows)
}

const selectCompletedBuysSQL = `
SELECT id, user_id, symbol, type, quantity, price, total, fee, executed_at, exchange_id, status, COALESCE(strategy_id, ''), notes
FROM transactions
WHERE user_id = $1 AND symbol = $2 AND status = 'completed' AND type = 'buy'
ORDER BY executed_at`

func (s *TransactionStore) CompletedBuysByUserAndSymbol(ctx context.Context, userID int64, symbol string) (txs []models.Transaction, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("TransactionStore.CompletedBuysByUserAndSymbol: %w", err)
		}
	}()

	rows, err := s.db.Conn().Query(ctx, selectCompletedBuysSQL, userID, symbol)
	if err != nil {
		return nil, err
	}
	return scanTransactions(rows)
}

const updateTransactionStatusSQL = `
UPDATE transactions SET status = $2, notes = $3 WHERE id = $1`

// UpdateStatus applies a status/notes correction, the only mutation a
// recorded transaction allows.
func (s *TransactionStore) UpdateStatus(ctx context.Context, id string, status models.TransactionStatus, notes string) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("TransactionStore.UpdateStatus: %w", err)
		}
	}()

	return s.db.RunMaster(ctx, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, updateTransactionStatusSQL, id, status, notes)
		return err
	})
}

func scanTransactions(rows pgx.Rows) ([]models.Transaction, error) {
	defer rows.Close()

	txs := make([]models.Transaction, 0)
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(
			&t.ID, &t.UserID, &t.Symbol, &t.Type, &t.Quantity, &t.Price, &t.Total, &t.Fee,
			&t.Timestamp, &t.ExchangeID, &t.Status, &t.StrategyID, &t.Notes,
		); err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

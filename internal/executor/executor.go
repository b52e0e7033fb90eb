package executor

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mansourplus/crypto-trader/internal/models"
)

// TradeSource places orders on the external exchange. Both calls may
// fail with transient I/O errors; the executor treats those as
// per-asset skips.
type TradeSource interface {
	PlaceBuy(ctx context.Context, userID int64, symbol string, quantity float64) (models.Transaction, error)
	PlaceSell(ctx context.Context, userID int64, symbol string, quantity float64) (models.Transaction, error)
}

// BalanceSource is the ledger view the executor needs.
type BalanceSource interface {
	Balance(ctx context.Context, userID int64, symbol string) (float64, error)
	AverageBuyPrice(ctx context.Context, userID int64, symbol string) (float64, error)
}

// TransactionRecorder appends executed transactions to the store.
type TransactionRecorder interface {
	Insert(ctx context.Context, tx models.Transaction) error
}

// Executor runs one strategy against current prices and the ledger.
// It never mutates the strategy itself; advancing LastExecutedAt is the
// caller's job.
type Executor struct {
	trades TradeSource
	ledger BalanceSource
	txs    TransactionRecorder
	log    *zap.Logger
}

func New(trades TradeSource, ledger BalanceSource, txs TransactionRecorder, log *zap.Logger) *Executor {
	return &Executor{trades: trades, ledger: ledger, txs: txs, log: log}
}

// Execute evaluates a single strategy against the given target assets.
// The returned result is always usable; the error is non-nil only for
// fatal internal failures (ledger inconsistency), which must not be
// treated as a routine skip.
func (e *Executor) Execute(ctx context.Context, st models.Strategy, assets []models.Asset) (models.ExecutionResult, error) {
	now := time.Now().UTC()

	switch st.Type {
	case models.StrategyDCA:
		return e.executeDCA(ctx, st, assets, now), nil
	case models.StrategyTakeProfitStopLoss:
		return e.executeTakeProfitStopLoss(ctx, st, assets, now)
	case models.StrategyMarketSignal:
		// Kept as an explicit variant so a real implementation is a
		// pure addition.
		return result(st, now, true, "market-signal strategies are not implemented yet"), nil
	case models.StrategyCustom:
		return result(st, now, true, "custom strategies are not implemented yet"), nil
	default:
		return result(st, now, false, fmt.Sprintf("unsupported strategy type %q", st.Type)), nil
	}
}

// record persists the exchange transaction and returns the intent that
// references it. An intent only exists once its transaction is stored.
func (e *Executor) record(ctx context.Context, st models.Strategy, tx models.Transaction, trigger models.IntentTrigger) (models.TradeIntent, error) {
	tx.StrategyID = st.ID
	if err := e.txs.Insert(ctx, tx); err != nil {
		return models.TradeIntent{}, fmt.Errorf("record transaction: %w", err)
	}
	return models.TradeIntent{
		Symbol:        tx.Symbol,
		Side:          tx.Type,
		Quantity:      tx.Quantity,
		Price:         tx.Price,
		Trigger:       trigger,
		TransactionID: tx.ID,
	}, nil
}

func result(st models.Strategy, now time.Time, success bool, message string, intents ...models.TradeIntent) models.ExecutionResult {
	return models.ExecutionResult{
		StrategyID: st.ID,
		Success:    success,
		Message:    message,
		Intents:    intents,
		ExecutedAt: now,
	}
}

package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mansourplus/crypto-trader/internal/ledger"
	"github.com/mansourplus/crypto-trader/internal/models"
)

// executeTakeProfitStopLoss sells the full derived balance of any
// target asset whose current price has crossed the take-profit or
// stop-loss threshold relative to the average buy price. The absence of
// triggers is not an error. A ledger inconsistency aborts the whole
// evaluation.
func (e *Executor) executeTakeProfitStopLoss(ctx context.Context, st models.Strategy, assets []models.Asset, now time.Time) (models.ExecutionResult, error) {
	if st.TakeProfitPct <= 0 || st.StopLossPct <= 0 {
		return result(st, now, false, "tp/sl: both take-profit and stop-loss percentages must be configured"), nil
	}

	intents := make([]models.TradeIntent, 0, len(assets))
	for _, asset := range assets {
		balance, err := e.ledger.Balance(ctx, st.UserID, asset.Symbol)
		if err != nil {
			if errors.Is(err, ledger.ErrInconsistent) {
				e.log.Error("tp/sl: ledger inconsistency, aborting strategy",
					zap.String("strategy_id", st.ID),
					zap.String("symbol", asset.Symbol),
					zap.Error(err))
				return result(st, now, false, fmt.Sprintf("tp/sl: ledger inconsistency for %s", asset.Symbol)), err
			}
			e.log.Warn("tp/sl: balance lookup failed, skipping asset",
				zap.String("strategy_id", st.ID),
				zap.String("symbol", asset.Symbol),
				zap.Error(err))
			continue
		}
		if balance <= 0 {
			continue
		}

		avgBuy, err := e.ledger.AverageBuyPrice(ctx, st.UserID, asset.Symbol)
		if err != nil {
			e.log.Warn("tp/sl: average buy price lookup failed, skipping asset",
				zap.String("strategy_id", st.ID),
				zap.String("symbol", asset.Symbol),
				zap.Error(err))
			continue
		}
		if avgBuy <= 0 {
			// Holdings without recorded buys (transfers etc.) have no
			// cost basis to trigger against.
			continue
		}

		takeProfitPrice := avgBuy * (1 + st.TakeProfitPct/100)
		stopLossPrice := avgBuy * (1 - st.StopLossPct/100)

		var trigger models.IntentTrigger
		switch {
		case asset.CurrentPrice >= takeProfitPrice:
			trigger = models.TriggerTakeProfit
		case asset.CurrentPrice <= stopLossPrice:
			trigger = models.TriggerStopLoss
		default:
			continue
		}

		tx, err := e.trades.PlaceSell(ctx, st.UserID, asset.Symbol, balance)
		if err != nil {
			e.log.Warn("tp/sl: sell order failed, skipping asset",
				zap.String("strategy_id", st.ID),
				zap.String("symbol", asset.Symbol),
				zap.String("trigger", string(trigger)),
				zap.Error(err))
			continue
		}

		intent, err := e.record(ctx, st, tx, trigger)
		if err != nil {
			e.log.Error("tp/sl: order placed but not recorded",
				zap.String("strategy_id", st.ID),
				zap.String("symbol", asset.Symbol),
				zap.Error(err))
			continue
		}
		intents = append(intents, intent)
	}

	if len(intents) == 0 {
		return result(st, now, true, "tp/sl: no take-profit or stop-loss threshold reached"), nil
	}
	return result(st, now, true, fmt.Sprintf("tp/sl: %d sell(s) triggered", len(intents)), intents...), nil
}

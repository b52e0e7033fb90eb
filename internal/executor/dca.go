package executor

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mansourplus/crypto-trader/internal/models"
)

// executeDCA splits the configured budget evenly across the target
// assets and buys each allocation at the current price. One asset's
// order failure is swallowed: the asset is skipped and the rest of the
// batch continues.
func (e *Executor) executeDCA(ctx context.Context, st models.Strategy, assets []models.Asset, now time.Time) models.ExecutionResult {
	if len(assets) == 0 {
		return result(st, now, false, "dca: no target assets configured")
	}
	if st.MaxInvestment <= 0 {
		return result(st, now, false, "dca: max investment amount must be positive")
	}

	allocation := st.MaxInvestment / float64(len(assets))

	intents := make([]models.TradeIntent, 0, len(assets))
	skipped := 0
	for _, asset := range assets {
		if asset.CurrentPrice <= 0 {
			e.log.Warn("dca: no usable price, skipping asset",
				zap.String("strategy_id", st.ID),
				zap.String("symbol", asset.Symbol))
			skipped++
			continue
		}

		quantity := allocation / asset.CurrentPrice
		tx, err := e.trades.PlaceBuy(ctx, st.UserID, asset.Symbol, quantity)
		if err != nil {
			e.log.Warn("dca: buy order failed, skipping asset",
				zap.String("strategy_id", st.ID),
				zap.String("symbol", asset.Symbol),
				zap.Error(err))
			skipped++
			continue
		}

		intent, err := e.record(ctx, st, tx, models.TriggerDCA)
		if err != nil {
			e.log.Error("dca: order placed but not recorded",
				zap.String("strategy_id", st.ID),
				zap.String("symbol", asset.Symbol),
				zap.Error(err))
			skipped++
			continue
		}
		intents = append(intents, intent)
	}

	if len(intents) == 0 {
		return result(st, now, false, fmt.Sprintf("dca: all %d order placements failed", len(assets)))
	}

	msg := fmt.Sprintf("dca: placed %d of %d buy orders, %.2f per asset", len(intents), len(assets), allocation)
	if skipped > 0 {
		msg += fmt.Sprintf(" (%d skipped)", skipped)
	}
	return result(st, now, true, msg, intents...)
}

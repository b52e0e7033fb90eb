package recommend

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mansourplus/crypto-trader/internal/indicator"
	"github.com/mansourplus/crypto-trader/internal/models"
	"github.com/mansourplus/crypto-trader/internal/signal"
)

// RankedAsset pairs an asset with its price history. The ranking
// (market cap, 24h performance, volume) is the caller's choice; the
// aggregator preserves the order it is given.
type RankedAsset struct {
	Asset   models.Asset
	History []models.PricePoint
}

// Aggregator composes the indicator calculator and the signal
// synthesizer across a ranked set of assets.
type Aggregator struct {
	log *zap.Logger
}

func NewAggregator(log *zap.Logger) *Aggregator {
	return &Aggregator{log: log}
}

// EvaluateAsset computes the full technical snapshot for one asset,
// including the overall signal and its description.
func (a *Aggregator) EvaluateAsset(symbol string, history []models.PricePoint) (models.TechnicalSignals, error) {
	ts, err := indicator.Evaluate(symbol, history)
	if err != nil {
		return models.TechnicalSignals{}, fmt.Errorf("evaluate %s: %w", symbol, err)
	}
	ts.Overall = signal.Classify(ts)
	ts.Description = signal.Describe(ts.Overall, ts)
	return ts, nil
}

// Recommend produces one recommendation per ranked asset, preserving
// the input order. An asset whose indicators cannot be computed is
// skipped, never retried; one bad asset must not abort the batch.
func (a *Aggregator) Recommend(ranked []RankedAsset) []models.AssetRecommendation {
	recs := make([]models.AssetRecommendation, 0, len(ranked))
	for _, ra := range ranked {
		ts, err := a.EvaluateAsset(ra.Asset.Symbol, ra.History)
		if err != nil {
			a.log.Warn("recommend: skipping asset",
				zap.String("symbol", ra.Asset.Symbol),
				zap.Error(err))
			continue
		}
		recs = append(recs, signal.Synthesize(ra.Asset, ts))
	}
	return recs
}

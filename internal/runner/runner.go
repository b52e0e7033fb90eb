package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"

	"github.com/mansourplus/crypto-trader/internal/models"
	"github.com/mansourplus/crypto-trader/internal/recommend"
	"github.com/mansourplus/crypto-trader/internal/schedule"
)

// StrategySource loads strategies and records execution progress.
type StrategySource interface {
	Active(ctx context.Context) ([]models.Strategy, error)
	UpdateLastExecuted(ctx context.Context, id string, executedAt time.Time) error
	UpdateStatus(ctx context.Context, id string, status models.StrategyStatus) error
}

// MarketSource resolves current quotes and candle history.
type MarketSource interface {
	CurrentPrice(ctx context.Context, symbol string) (models.Asset, error)
	PriceHistory(ctx context.Context, symbol, timeframe string, limit int) ([]models.PricePoint, error)
	TopAssets(ctx context.Context, limit int) ([]models.Asset, error)
}

// StrategyExecutor runs a single strategy against resolved assets.
type StrategyExecutor interface {
	Execute(ctx context.Context, st models.Strategy, assets []models.Asset) (models.ExecutionResult, error)
}

type Config struct {
	Workers       int
	Timeframe     string
	HistoryLimit  int
	RecommendTopN int
}

// Runner drives scheduled strategy batches and recommendation sweeps.
type Runner struct {
	cfg        Config
	strategies StrategySource
	market     MarketSource
	exec       StrategyExecutor
	agg        *recommend.Aggregator
	log        *zap.Logger
}

func New(cfg Config, strategies StrategySource, market MarketSource, exec StrategyExecutor, agg *recommend.Aggregator, log *zap.Logger) *Runner {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.Timeframe == "" {
		cfg.Timeframe = "1h"
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 250
	}
	if cfg.RecommendTopN <= 0 {
		cfg.RecommendTopN = 10
	}
	return &Runner{
		cfg:        cfg,
		strategies: strategies,
		market:     market,
		exec:       exec,
		agg:        agg,
		log:        log,
	}
}

// RunBatch loads active strategies, filters the ones whose interval has
// elapsed and executes them on a bounded worker pool.
func (r *Runner) RunBatch(ctx context.Context) ([]models.ExecutionResult, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "runner.RunBatch")
	defer span.Finish()

	active, err := r.strategies.Active(ctx)
	if err != nil {
		return nil, fmt.Errorf("Runner.RunBatch: %w", err)
	}

	due := schedule.Due(active, time.Now().UTC())
	span.SetTag("strategies.active", len(active))
	span.SetTag("strategies.due", len(due))
	if len(due) == 0 {
		return nil, nil
	}

	jobs := make(chan models.Strategy)
	results := make(chan models.ExecutionResult, len(due))

	var wg sync.WaitGroup
	for i := 0; i < r.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for st := range jobs {
				results <- r.runOne(ctx, st)
			}
		}()
	}
	for _, st := range due {
		jobs <- st
	}
	close(jobs)
	wg.Wait()
	close(results)

	out := make([]models.ExecutionResult, 0, len(due))
	succeeded := 0
	for res := range results {
		if res.Success {
			succeeded++
		}
		out = append(out, res)
	}
	r.log.Info("strategy batch finished",
		zap.Int("due", len(due)),
		zap.Int("succeeded", succeeded),
	)
	return out, nil
}

func (r *Runner) runOne(ctx context.Context, st models.Strategy) models.ExecutionResult {
	startedAt := time.Now().UTC()

	assets := r.resolveAssets(ctx, st.Symbols)
	res, err := r.exec.Execute(ctx, st, assets)
	if err != nil {
		// Ledger inconsistency: freeze the strategy so it never trades
		// on a corrupted balance again.
		r.log.Error("strategy execution aborted",
			zap.String("strategy_id", st.ID),
			zap.Error(err),
		)
		if uerr := r.strategies.UpdateStatus(ctx, st.ID, models.StrategyFailed); uerr != nil {
			r.log.Error("failed to freeze strategy",
				zap.String("strategy_id", st.ID),
				zap.Error(uerr),
			)
		}
	}

	// The attempt counts even when nothing was placed, otherwise a
	// permanently failing strategy would retry on every tick.
	if uerr := r.strategies.UpdateLastExecuted(ctx, st.ID, startedAt); uerr != nil {
		r.log.Error("failed to advance last_executed_at",
			zap.String("strategy_id", st.ID),
			zap.Error(uerr),
		)
	}
	return res
}

func (r *Runner) resolveAssets(ctx context.Context, symbols []string) []models.Asset {
	assets := make([]models.Asset, 0, len(symbols))
	for _, sym := range symbols {
		asset, err := r.market.CurrentPrice(ctx, sym)
		if err != nil {
			r.log.Warn("skipping symbol without a quote",
				zap.String("symbol", sym),
				zap.Error(err),
			)
			continue
		}
		assets = append(assets, asset)
	}
	return assets
}

// RecommendTop evaluates the largest assets by market cap and returns
// their recommendations, best candidates first per the market ordering.
func (r *Runner) RecommendTop(ctx context.Context) ([]models.AssetRecommendation, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "runner.RecommendTop")
	defer span.Finish()

	assets, err := r.market.TopAssets(ctx, r.cfg.RecommendTopN)
	if err != nil {
		return nil, fmt.Errorf("Runner.RecommendTop: %w", err)
	}

	ranked := make([]recommend.RankedAsset, 0, len(assets))
	for _, asset := range assets {
		history, err := r.market.PriceHistory(ctx, asset.Symbol, r.cfg.Timeframe, r.cfg.HistoryLimit)
		if err != nil {
			r.log.Warn("skipping asset without history",
				zap.String("symbol", asset.Symbol),
				zap.Error(err),
			)
			continue
		}
		ranked = append(ranked, recommend.RankedAsset{Asset: asset, History: history})
	}

	recs := r.agg.Recommend(ranked)
	for _, rec := range recs {
		r.log.Info("recommendation",
			zap.String("symbol", rec.Asset.Symbol),
			zap.String("signal", string(rec.Type)),
			zap.Float64("confidence", rec.Confidence),
		)
	}
	return recs, nil
}

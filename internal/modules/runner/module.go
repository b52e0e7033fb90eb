package runner

import (
	"context"

	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/mansourplus/crypto-trader/internal/executor"
	"github.com/mansourplus/crypto-trader/internal/market"
	"github.com/mansourplus/crypto-trader/internal/modules/config"
	healthstate "github.com/mansourplus/crypto-trader/internal/modules/health/service"
	"github.com/mansourplus/crypto-trader/internal/recommend"
	"github.com/mansourplus/crypto-trader/internal/runner"
	"github.com/mansourplus/crypto-trader/internal/store"
)

func Module() fx.Option {
	return fx.Module("runner",
		fx.Provide(
			func(st *store.StrategyStore) runner.StrategySource { return st },
			func(c *market.Client) runner.MarketSource { return c },
			func(e *executor.Executor) runner.StrategyExecutor { return e },
			func(cfg *config.Config, strategies runner.StrategySource, m runner.MarketSource, exec runner.StrategyExecutor, agg *recommend.Aggregator, log *zap.Logger) *runner.Runner {
				return runner.New(runner.Config{
					Workers:       cfg.Workers,
					Timeframe:     cfg.Timeframe,
					HistoryLimit:  cfg.HistoryLimit,
					RecommendTopN: cfg.RecommendTopN,
				}, strategies, m, exec, agg, log)
			},
		),
		fx.Invoke(func(lc fx.Lifecycle, ctx context.Context, cfg *config.Config, r *runner.Runner, state *healthstate.State, log *zap.Logger) error {
			c := cron.New()
			if _, err := c.AddFunc(cfg.ExecuteCron, func() {
				if _, err := r.RunBatch(ctx); err != nil {
					log.Error("strategy batch failed", zap.Error(err))
					return
				}
				state.TouchBatch(time.Now())
			}); err != nil {
				return err
			}
			if _, err := c.AddFunc(cfg.RecommendCron, func() {
				if _, err := r.RecommendTop(ctx); err != nil {
					log.Error("recommendation sweep failed", zap.Error(err))
				}
			}); err != nil {
				return err
			}

			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					c.Start()
					log.Info("scheduler started",
						zap.String("execute_cron", cfg.ExecuteCron),
						zap.String("recommend_cron", cfg.RecommendCron),
					)
					return nil
				},
				OnStop: func(ctx context.Context) error {
					select {
					case <-c.Stop().Done():
					case <-ctx.Done():
					}
					return nil
				},
			})
			return nil
		}),
	)
}

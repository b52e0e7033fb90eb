package engine

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/mansourplus/crypto-trader/internal/exchange"
	"github.com/mansourplus/crypto-trader/internal/executor"
	"github.com/mansourplus/crypto-trader/internal/ledger"
	"github.com/mansourplus/crypto-trader/internal/modules/config"
	"github.com/mansourplus/crypto-trader/internal/recommend"
	"github.com/mansourplus/crypto-trader/internal/store"
	"github.com/mansourplus/crypto-trader/pkg/logger"
	"github.com/mansourplus/crypto-trader/pkg/tracing"
)

func Module() fx.Option {
	return fx.Module("engine",
		fx.Provide(
			logger.Init,
			store.NewTransactionStore,
			store.NewStrategyStore,
			func(cfg *config.Config) *exchange.Client {
				return exchange.NewClient(exchange.Config{
					BaseURL:   cfg.Exchange.BaseURL,
					APIKey:    cfg.Exchange.APIKey,
					APISecret: cfg.Exchange.APISecret,
					Timeout:   cfg.Exchange.Timeout,
				})
			},
			func(txs *store.TransactionStore) ledger.TransactionSource { return txs },
			ledger.New,
			func(c *exchange.Client) executor.TradeSource { return c },
			func(l *ledger.Ledger) executor.BalanceSource { return l },
			func(txs *store.TransactionStore) executor.TransactionRecorder { return txs },
			executor.New,
			recommend.NewAggregator,
		),
		fx.Invoke(func(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) {
			if !cfg.Jaeger.Enabled {
				return
			}
			var closeTracer func()
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					_, closer, err := tracing.InitTracer(tracing.Config{
						Host: cfg.Jaeger.Host,
						Port: cfg.Jaeger.Port,
					})
					if err != nil {
						return err
					}
					closeTracer = closer
					return nil
				},
				OnStop: func(context.Context) error {
					if closeTracer != nil {
						closeTracer()
					}
					return nil
				},
			})
		}),
	)
}

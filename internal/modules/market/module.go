package market

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/mansourplus/crypto-trader/internal/market"
	"github.com/mansourplus/crypto-trader/internal/modules/config"
	healthstate "github.com/mansourplus/crypto-trader/internal/modules/health/service"
)

func Module() fx.Option {
	return fx.Module("market",
		fx.Provide(
			func(cfg *config.Config, cache *market.Cache) *market.Client {
				return market.NewClient(market.Config{
					BaseURL: cfg.Market.BaseURL,
					WSURL:   cfg.Market.WSURL,
					Timeout: cfg.Market.Timeout,
				}, cache)
			},
		),
		fx.Invoke(func(lc fx.Lifecycle, ctx context.Context, cfg *config.Config, client *market.Client, state *healthstate.State, log *zap.Logger) {
			lc.Append(fx.Hook{
				// ctx приложения, а не стартовый: стримы живут до остановки.
				OnStart: func(context.Context) error {
					// Стримим котировки, чтобы LastPrice всегда был тёплым.
					for _, sym := range cfg.WatchSymbols {
						ch := client.StreamPrices(ctx, sym)
						go func(sym string, ch <-chan float64) {
							for range ch {
								state.TouchQuote(time.Now())
							}
							log.Info("price stream closed", zap.String("symbol", sym))
						}(sym, ch)
					}
					state.SetReady(true)
					return nil
				},
			})
		}),
	)
}

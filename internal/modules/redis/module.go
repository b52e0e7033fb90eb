package redis

import (
	"context"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/mansourplus/crypto-trader/internal/market"
	"github.com/mansourplus/crypto-trader/internal/modules/config"
)

func Module() fx.Option {
	return fx.Module("redis",
		fx.Provide(
			// Без адреса кэш выключен, клиент остаётся nil.
			func(ctx context.Context, cfg *config.Config, log *zap.Logger) (*goredis.Client, error) {
				if cfg.Redis.Addr == "" {
					log.Info("redis disabled, quotes are not cached")
					return nil, nil
				}
				rdb := goredis.NewClient(&goredis.Options{Addr: cfg.Redis.Addr})
				if err := rdb.Ping(ctx).Err(); err != nil {
					return nil, err
				}
				return rdb, nil
			},
			func(rdb *goredis.Client, cfg *config.Config) *market.Cache {
				return market.NewCache(rdb, cfg.Redis.CacheTTL)
			},
		),
	)
}

package main

import (
	"context"
	"log"

	"go.uber.org/fx"

	"github.com/mansourplus/crypto-trader/internal/modules/config"
	"github.com/mansourplus/crypto-trader/internal/modules/engine"
	"github.com/mansourplus/crypto-trader/internal/modules/health"
	marketmodule "github.com/mansourplus/crypto-trader/internal/modules/market"
	"github.com/mansourplus/crypto-trader/internal/modules/postgres"
	redismodule "github.com/mansourplus/crypto-trader/internal/modules/redis"
	runnermodule "github.com/mansourplus/crypto-trader/internal/modules/runner"
)

func main() {
	app := fx.New(
		fx.Provide(
			func() context.Context {
				return context.Background()
			},
		),
		config.Module(),
		health.Module(),
		postgres.Module(),
		redismodule.Module(),
		marketmodule.Module(),
		engine.Module(),
		runnermodule.Module(),
	)
	if err := app.Start(context.Background()); err != nil {
		log.Fatal(err)
	}
	<-app.Done()
	if err := app.Stop(context.Background()); err != nil {
		log.Fatal(err)
	}
}

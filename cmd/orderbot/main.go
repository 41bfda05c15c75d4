package main

import (
	"context"
	"log"

	"github.com/rootzsu/orderbot/core/bootstrap"
	corecmd "github.com/rootzsu/orderbot/core/cmd"
	"github.com/rootzsu/orderbot/internal/bot"
	"github.com/rootzsu/orderbot/internal/config"
	"github.com/rootzsu/orderbot/internal/roster"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return config.Load(path)
		},
		Bootstrap: func(carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			cfg := carrier.(*config.Config)
			res, err := bootstrap.Run(bootstrap.Options{
				Config:   cfg.CoreConfig(),
				Database: cfg.Database,
			})
			if err != nil {
				return nil, err
			}
			err = bootstrap.RunSeeders(context.Background(), res.DB,
				roster.OperatorSeeder(cfg.InitialOperatorID),
			)
			if err != nil {
				return nil, err
			}
			return bot.NewApp(cfg, res.DB), nil
		},
	})
	if err != nil {
		log.Fatalf("orderbot: %v", err)
	}
}

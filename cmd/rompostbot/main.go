// Command rompostbot runs the ROM release announcement bot.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/m3rciful/rompostbot/bot/app"
	"github.com/m3rciful/rompostbot/bot/config"
	"github.com/m3rciful/rompostbot/core/bootstrap"
	corecmd "github.com/m3rciful/rompostbot/core/cmd"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return config.Load(path)
		},
		Bootstrap: func(ctx context.Context, carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			cfg, ok := carrier.(*config.Config)
			if !ok {
				return nil, fmt.Errorf("unexpected config type %T", carrier)
			}
			res, err := bootstrap.Run(ctx, bootstrap.Options{
				Config:   cfg.CoreConfig(),
				Database: cfg.Database,
			})
			if err != nil {
				return nil, err
			}
			return app.New(cfg, app.Options{DB: res.DB}), nil
		},
	})
	if err != nil {
		log.Fatal(err)
	}
}

package main

import (
	"os"

	"github.com/PepegaBoss/foodgram-project-react/pkg/config"
	"github.com/PepegaBoss/foodgram-project-react/pkg/logger"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Env, cfg.LogLevel)
	defer func() { _ = logger.L.Sync() }()

	cliApp := &cli.App{
		Name:  "foodgram",
		Usage: "recipe sharing API",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "start the HTTP API and metrics servers",
				Action: func(ctx *cli.Context) error {
					return serve(ctx, cfg)
				},
			},
			{
				Name:  "migrate",
				Usage: "create or update the database schema and exit",
				Action: func(ctx *cli.Context) error {
					return migrate(cfg)
				},
			},
		},
		DefaultCommand: "serve",
	}
	if err := cliApp.Run(os.Args); err != nil {
		logger.L.Fatal("server exited with error", zap.Error(err))
	}
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbeisheim/kingchess-backend/internal/config"
	"github.com/benbeisheim/kingchess-backend/internal/console"
	"github.com/benbeisheim/kingchess-backend/internal/model"
	"github.com/benbeisheim/kingchess-backend/internal/server"
	"github.com/benbeisheim/kingchess-backend/internal/service"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "kingchess",
		Usage: "chess backend where capturing the king ends the game",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "dotenv file to load before reading the environment",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "trace, debug, info, warn or error (overrides LOG_LEVEL)",
			},
		},
		DefaultCommand: "serve",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run the HTTP and websocket server",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "port",
						Aliases: []string{"p"},
						Usage:   "port number (overrides PORT)",
					},
				},
				Action: serve,
			},
			{
				Name:   "play",
				Usage:  "play a local game in the terminal",
				Action: play,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("exiting")
	}
}

func loadConfig(cCtx *cli.Context) (config.Config, error) {
	cfg, err := config.Load(cCtx.String("env-file"))
	if err != nil {
		return cfg, err
	}
	if lvl := cCtx.String("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	if port := cCtx.Int("port"); port != 0 {
		cfg.Port = port
	}
	return cfg, config.ConfigureLogger(cfg)
}

func serve(cCtx *cli.Context) error {
	cfg, err := loadConfig(cCtx)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cCtx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	gameManager := service.NewGameManager(cfg.ClockTime)
	go gameManager.RunMatchmaking(ctx, cfg.MatchmakingInterval)
	gameService := service.NewGameService(gameManager)

	app := server.New(cfg, gameService)
	go func() {
		<-ctx.Done()
		if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()

	log.Info().Str("addr", cfg.Addr()).Msg("listening")
	return app.Listen(cfg.Addr())
}

func play(cCtx *cli.Context) error {
	if _, err := loadConfig(cCtx); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return console.Play(ctx, model.NewGame(), os.Stdin, os.Stdout)
}

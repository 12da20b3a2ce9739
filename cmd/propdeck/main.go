package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/andrebq/propdeck/cmd/propdeck/db"
	"github.com/andrebq/propdeck/cmd/propdeck/passwd"
	"github.com/andrebq/propdeck/cmd/propdeck/serve"
	"github.com/andrebq/propdeck/internal/logutil"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func main() {
	logLevel := "info"
	var logPretty bool
	app := &cli.App{
		Name:  "propdeck",
		Usage: "Property catalog with accounts, sessions and favorites",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "Minimum level of log messages (trace, debug, info, warn, error)",
				EnvVars:     []string{"PROPDECK_LOG_LEVEL"},
				Value:       logLevel,
				Destination: &logLevel,
			},
			&cli.BoolFlag{
				Name:        "log-pretty",
				Usage:       "Human friendly logs instead of JSON",
				Destination: &logPretty,
			},
		},
		Before: func(ctx *cli.Context) error {
			logger := logutil.New(os.Stderr, logLevel, logPretty)
			log.Logger = logger
			ctx.Context = logutil.WithLogger(ctx.Context, logger)
			return nil
		},
		Commands: []*cli.Command{
			serve.Cmd(),
			db.Cmd(),
			passwd.Cmd(),
		},
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	err := app.RunContext(ctx, os.Args)
	if err != nil {
		log.Error().Err(err).Msg("Application failed")
		os.Exit(1)
	}
}

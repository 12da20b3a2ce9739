package db

import (
	"encoding/json"
	"errors"

	"github.com/andrebq/propdeck/catalog"
	"github.com/andrebq/propdeck/internal/cmdflags"
	"github.com/andrebq/propdeck/password"
	"github.com/andrebq/propdeck/seed"
	"github.com/urfave/cli/v2"
)

func Cmd() *cli.Command {
	var store *catalog.Store
	var dbURL string
	return &cli.Command{
		Name:  "db",
		Usage: "Database maintenance",
		Flags: []cli.Flag{
			cmdflags.DatabaseURL(&dbURL),
		},
		Before: func(ctx *cli.Context) error {
			var err error
			store, err = catalog.Open(ctx.Context, dbURL)
			return err
		},
		After: func(ctx *cli.Context) error {
			if store == nil {
				return nil
			}
			return store.Close()
		},
		Subcommands: []*cli.Command{
			initCmd(&store),
			pingCmd(&store),
			seedCmd(&store),
		},
	}
}

func initCmd(store **catalog.Store) *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Create the tables if they do not exist",
		Action: func(ctx *cli.Context) error {
			err := (*store).Init(ctx.Context)
			if err != nil {
				return err
			}
			_, err = ctx.App.Writer.Write([]byte("schema ready (" + (*store).Dialect() + ")\n"))
			return err
		},
	}
}

func pingCmd(store **catalog.Store) *cli.Command {
	return &cli.Command{
		Name:  "ping",
		Usage: "Check if the database answers queries",
		Action: func(ctx *cli.Context) error {
			ok, err := (*store).Ping(ctx.Context)
			if err != nil {
				return err
			} else if !ok {
				return errors.New("database did not answer as expected")
			}
			_, err = ctx.App.Writer.Write([]byte("ok\n"))
			return err
		},
	}
}

func seedCmd(store **catalog.Store) *cli.Command {
	rows := seed.DefaultRows
	var reset bool
	seedPassword := seed.DefaultPassword
	var script string
	cost := password.DefaultCost
	return &cli.Command{
		Name:  "seed",
		Usage: "Insert demo users and the property catalog",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "rows",
				Aliases:     []string{"n"},
				Usage:       "Number of users to generate",
				Value:       rows,
				Destination: &rows,
			},
			&cli.BoolFlag{
				Name:        "reset",
				Usage:       "Delete every user (and their favorites) before seeding",
				Destination: &reset,
			},
			cmdflags.SeedPassword(&seedPassword),
			cmdflags.SeedScript(&script),
			cmdflags.BcryptCost(&cost),
		},
		Action: func(ctx *cli.Context) error {
			fx, err := seed.FixturesFrom(script)
			if err != nil {
				return err
			}
			report, err := seed.Run(ctx.Context, *store, fx, seed.Options{
				Rows:     rows,
				Reset:    reset,
				Password: seedPassword,
				Cost:     cost,
			})
			if err != nil {
				return err
			}
			enc := json.NewEncoder(ctx.App.Writer)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}
}

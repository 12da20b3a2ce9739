package serve

import (
	"os"

	"github.com/andrebq/propdeck/catalog"
	"github.com/andrebq/propdeck/catalog/api"
	"github.com/andrebq/propdeck/internal/cmdflags"
	"github.com/andrebq/propdeck/internal/httpserver"
	"github.com/andrebq/propdeck/internal/logutil"
	"github.com/andrebq/propdeck/password"
	"github.com/andrebq/propdeck/seed"
	"github.com/andrebq/propdeck/session"
	sessionapi "github.com/andrebq/propdeck/session/api"
	"github.com/urfave/cli/v2"
)

func Cmd() *cli.Command {
	bindAddr := "localhost:7020"
	env := "development"
	var dbURL string
	var secretEnvVar string
	var seedEnvVar string
	seedPassword := seed.DefaultPassword
	var seedScript string
	cost := password.DefaultCost
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the propdeck web server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "bind",
				Usage:       "Address to bind for incoming requests",
				EnvVars:     []string{"PROPDECK_BIND"},
				Value:       bindAddr,
				Destination: &bindAddr,
			},
			&cli.StringFlag{
				Name:        "env",
				Usage:       "Deployment environment, production enables Secure cookies",
				EnvVars:     []string{"APP_ENV"},
				Value:       env,
				Destination: &env,
			},
			cmdflags.DatabaseURL(&dbURL),
			cmdflags.SecretEnvVar(&secretEnvVar),
			cmdflags.SeedSecretEnvVar(&seedEnvVar),
			cmdflags.SeedPassword(&seedPassword),
			cmdflags.SeedScript(&seedScript),
			cmdflags.BcryptCost(&cost),
		},
		Action: func(ctx *cli.Context) error {
			log := logutil.GetOrDefault(ctx.Context)
			secret, err := session.SecretFromEnv(secretEnvVar, os.Getenv, os.Setenv)
			if err != nil {
				return err
			}
			codec, err := session.NewCodec(secret)
			if err != nil {
				return err
			}
			seedSecret := os.Getenv(seedEnvVar)
			if len(seedSecret) > 0 {
				os.Unsetenv(seedEnvVar)
			} else {
				log.Info().Str("envvar", seedEnvVar).Msg("Seed endpoint disabled")
			}
			fixtures, err := seed.FixturesFrom(seedScript)
			if err != nil {
				return err
			}

			store, err := catalog.Open(ctx.Context, dbURL)
			if err != nil {
				return err
			}
			defer store.Close()

			secure := env == "production"
			if !secure {
				log.Warn().Str("env", env).Msg("Session cookies will not be marked as Secure")
			}
			handler, err := api.AsHandler(ctx.Context, store, sessionapi.NewRealm(codec, secure), password.Hasher{Cost: cost}, api.Options{
				SeedSecret:   seedSecret,
				SeedPassword: seedPassword,
				Fixtures:     fixtures,
			})
			if err != nil {
				return err
			}
			log.Info().Str("dialect", store.Dialect()).Msg("Database ready")
			return httpserver.Serve(ctx.Context, bindAddr, handler)
		},
	}
}

// Package cmdflags holds the flags shared by more than one propdeck command
package cmdflags

import (
	"github.com/andrebq/propdeck/session"
	"github.com/urfave/cli/v2"
)

const (
	DefaultDatabaseURL = "file:propdeck.db"
	DefaultSeedEnvVar  = "SEED_SECRET"
)

func DatabaseURL(out *string) cli.Flag {
	if len(*out) == 0 {
		*out = DefaultDatabaseURL
	}
	return &cli.StringFlag{
		Name:        "database-url",
		Aliases:     []string{"db"},
		Usage:       "Database to use, postgres:// and postgresql:// urls use postgres, anything else is a sqlite file",
		EnvVars:     []string{"DATABASE_URL"},
		Value:       *out,
		Destination: out,
	}
}

func SecretEnvVar(out *string) cli.Flag {
	if len(*out) == 0 {
		*out = session.SecretEnvVar
	}
	return &cli.StringFlag{
		Name:        "secret-envvar-name",
		Usage:       "Name of the environment variable that holds the session secret. The secret itself should not be passed as an argument",
		Value:       *out,
		Destination: out,
	}
}

func SeedSecretEnvVar(out *string) cli.Flag {
	if len(*out) == 0 {
		*out = DefaultSeedEnvVar
	}
	return &cli.StringFlag{
		Name:        "seed-secret-envvar-name",
		Usage:       "Name of the environment variable that guards /api/db/seed (unset disables the endpoint)",
		Value:       *out,
		Destination: out,
	}
}

func SeedPassword(out *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "seed-password",
		Usage:       "Plaintext password given to every seeded user",
		EnvVars:     []string{"SEED_USER_PASSWORD"},
		Value:       *out,
		Destination: out,
	}
}

func SeedScript(out *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "seed-script",
		Usage:       "Lua script returning the seed fixtures (the embedded default is used when empty)",
		TakesFile:   true,
		Value:       *out,
		Destination: out,
	}
}

func BcryptCost(out *int) cli.Flag {
	return &cli.IntFlag{
		Name:        "bcrypt-cost",
		Usage:       "Cost used when hashing new passwords",
		EnvVars:     []string{"PROPDECK_BCRYPT_COST"},
		Value:       *out,
		Destination: out,
	}
}

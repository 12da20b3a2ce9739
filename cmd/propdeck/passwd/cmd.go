package passwd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/andrebq/propdeck/catalog"
	"github.com/andrebq/propdeck/internal/cmdflags"
	"github.com/andrebq/propdeck/internal/logutil"
	"github.com/andrebq/propdeck/password"
	"github.com/urfave/cli/v2"
)

func Cmd() *cli.Command {
	cost := password.DefaultCost
	return &cli.Command{
		Name:  "passwd",
		Usage: "Password utilities (passwords are always read from stdin)",
		Flags: []cli.Flag{
			cmdflags.BcryptCost(&cost),
		},
		Subcommands: []*cli.Command{
			hashCmd(&cost),
			setCmd(&cost),
		},
	}
}

func hashCmd(cost *int) *cli.Command {
	return &cli.Command{
		Name:  "hash",
		Usage: "Print the hash of the password read from stdin",
		Action: func(ctx *cli.Context) error {
			plain, err := readPassword()
			if err != nil {
				return err
			}
			hash, err := password.Hash(plain, *cost)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(ctx.App.Writer, hash)
			return err
		},
	}
}

func setCmd(cost *int) *cli.Command {
	var email string
	var dbURL string
	return &cli.Command{
		Name:  "set",
		Usage: "Replace the password of an existing user",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "email",
				Aliases:     []string{"e"},
				Usage:       "Email of the user",
				Required:    true,
				Destination: &email,
			},
			cmdflags.DatabaseURL(&dbURL),
		},
		Action: func(ctx *cli.Context) error {
			plain, err := readPassword()
			if err != nil {
				return err
			}
			hash, err := password.Hash(plain, *cost)
			if err != nil {
				return err
			}
			store, err := catalog.Open(ctx.Context, dbURL)
			if err != nil {
				return err
			}
			defer store.Close()
			email = strings.ToLower(strings.TrimSpace(email))
			err = store.ReplacePasswordHash(ctx.Context, email, hash)
			if err != nil {
				return err
			}
			log := logutil.GetOrDefault(ctx.Context)
			log.Info().Str("email", email).Msg("Password updated")
			return nil
		},
	}
}

func readPassword() (string, error) {
	sc := bufio.NewScanner(os.Stdin)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", err
		}
		return "", errors.New("missing password from stdin")
	}
	plain := strings.TrimSpace(sc.Text())
	if len(plain) == 0 {
		return "", errors.New("missing password from stdin")
	}
	return plain, nil
}

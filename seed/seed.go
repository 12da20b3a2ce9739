package seed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/andrebq/propdeck/catalog"
	"github.com/andrebq/propdeck/internal/logutil"
	"github.com/andrebq/propdeck/password"
)

const (
	DefaultRows     = 20
	DefaultPassword = "Password123!"

	maxSampleEmails = 5
)

type (
	Store interface {
		Init(ctx context.Context) error
		DeleteUsers(ctx context.Context) (int64, error)
		InsertUserIfAbsent(ctx context.Context, name, email, passwordHash string) (bool, error)
		CountUsers(ctx context.Context) (int64, error)
		UpsertProperty(ctx context.Context, p catalog.PropertyInput) (bool, error)
	}

	Options struct {
		// Rows is the number of users to generate, <= 0 means DefaultRows
		Rows int
		// Reset deletes every user before seeding
		Reset bool
		// Password is shared by all generated users, empty means DefaultPassword
		Password string
		// Cost is the bcrypt cost, <= 0 means password.DefaultCost
		Cost int
		Now  func() time.Time
	}

	Report struct {
		Inserted   int      `json:"inserted"`
		Total      int64    `json:"total"`
		Properties int      `json:"properties"`
		Emails     []string `json:"emails"`
		Password   string   `json:"password"`
	}
)

// Run creates the schema (if needed), the catalog and opts.Rows users.
// Emails that already exist are skipped and do not count as inserted.
func Run(ctx context.Context, store Store, fx *Fixtures, opts Options) (Report, error) {
	opts = opts.withDefaults()
	log := logutil.GetOrDefault(ctx).With().Str("component", "seed").Logger()
	var report Report
	report.Password = opts.Password

	if err := store.Init(ctx); err != nil {
		return report, err
	}
	if opts.Reset {
		n, err := store.DeleteUsers(ctx)
		if err != nil {
			return report, err
		}
		log.Info().Int64("deleted", n).Msg("Users removed")
	}

	for _, p := range fx.Properties {
		inserted, err := store.UpsertProperty(ctx, p)
		if err != nil {
			return report, err
		}
		if inserted {
			report.Properties++
		}
	}

	first, last := fx.Users.FirstNames, fx.Users.LastNames
	for i := 0; i < opts.Rows; i++ {
		fn := first[i%len(first)]
		ln := last[(i+3)%len(last)]
		email := fmt.Sprintf("%v.%v.%v_%v@example.com", strings.ToLower(fn), strings.ToLower(ln), opts.Now().UnixMilli(), i)
		hash, err := password.Hash(opts.Password, opts.Cost)
		if err != nil {
			return report, fmt.Errorf("unable to hash seed password, cause %w", err)
		}
		inserted, err := store.InsertUserIfAbsent(ctx, fn+" "+ln, email, hash)
		if err != nil {
			return report, err
		}
		if inserted {
			report.Inserted++
			if len(report.Emails) < maxSampleEmails {
				report.Emails = append(report.Emails, email)
			}
		}
	}

	total, err := store.CountUsers(ctx)
	if err != nil {
		return report, err
	}
	report.Total = total
	log.Info().Int("users", report.Inserted).Int("properties", report.Properties).Int64("total", total).Msg("Seed completed")
	return report, nil
}

func (o Options) withDefaults() Options {
	if o.Rows <= 0 {
		o.Rows = DefaultRows
	}
	if o.Password == "" {
		o.Password = DefaultPassword
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

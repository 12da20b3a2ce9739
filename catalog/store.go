// Package catalog is the relational store behind propdeck: user
// credentials, the property catalog and per-user favorites.
//
// SQLite (github.com/mattn/go-sqlite3) is used unless the database url
// is a postgres:// or postgresql:// url, in which case pgx is used.
// Queries are written with '?' placeholders and rebound for postgres.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DefaultPropertyType  = "retail"
	DefaultPropertyImage = "/cpn-45-logo.svg"

	catalogTTL = 10 * time.Minute
)

type (
	Store struct {
		db      *sql.DB
		dialect dialect
		listing *listingCache
	}

	// Credential is what the store knows about a user login.
	// PasswordHash is empty for users created without a password.
	Credential struct {
		ID           int64
		Name         string
		Email        string
		PasswordHash string
	}

	Property struct {
		ID         int64  `json:"id"`
		Slug       string `json:"slug"`
		Title      string `json:"title"`
		Location   string `json:"location"`
		Type       string `json:"type"`
		ImageURL   string `json:"imageUrl"`
		PriceTHB   *int64 `json:"priceThb"`
		IsFavorite bool   `json:"isFavorite"`
	}
)

// Open connects to dsn, checks the connection and creates the schema
// if needed. The returned store should be shared by the whole process.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if len(dsn) == 0 {
		return nil, ErrMissingDatabaseURL
	}
	d := dialectFor(dsn)
	conn, err := sql.Open(d.driver, d.connString(dsn))
	if err != nil {
		return nil, fmt.Errorf("unable to open %v database, cause %w", d.name, err)
	}
	err = conn.PingContext(ctx)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to ping %v database, cause %w", d.name, err)
	}
	listing, err := newListingCache(catalogTTL)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to create catalog cache, cause %w", err)
	}
	s := &Store{db: conn, dialect: d, listing: listing}
	err = s.Init(ctx)
	if err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Init creates any missing table, it is safe to call multiple times
func (s *Store) Init(ctx context.Context) error {
	for _, cmd := range s.dialect.schema {
		_, err := s.db.ExecContext(ctx, cmd)
		if err != nil {
			return fmt.Errorf("unable to init %v schema, cause %w", s.dialect.name, err)
		}
	}
	return nil
}

// Dialect returns either sqlite or postgres
func (s *Store) Dialect() string {
	return s.dialect.name
}

// Ping runs a trivial query to check the database is answering
func (s *Store) Ping(ctx context.Context) (bool, error) {
	var ok int
	err := s.db.QueryRowContext(ctx, `select 1 as ok`).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("unable to ping database, cause %w", err)
	}
	return ok == 1, nil
}

func (s *Store) Close() error {
	s.listing.Close()
	return s.db.Close()
}

func (s *Store) exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.dialect.rebind(query), args...)
}

func (s *Store) queryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return s.db.QueryRowContext(ctx, s.dialect.rebind(query), args...)
}

func (s *Store) query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, s.dialect.rebind(query), args...)
}

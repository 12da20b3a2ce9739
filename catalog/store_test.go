package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s, cleanup := tempStore(ctx, t)
	defer cleanup()

	id, err := s.CreateUser(ctx, "bob", "bob@example.com", "hash-1")
	require.NoError(t, err)
	require.True(t, id > 0)

	_, err = s.CreateUser(ctx, "bobby", "bob@example.com", "hash-2")
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("Duplicated email should be a conflict, got %#v", err)
	}

	c, err := s.FindUserByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	require.Equal(t, Credential{ID: id, Name: "bob", Email: "bob@example.com", PasswordHash: "hash-1"}, c)

	_, err = s.FindUserByEmail(ctx, "alice@example.com")
	require.True(t, errors.Is(err, UserNotFound{}))

	require.NoError(t, s.ReplacePasswordHash(ctx, "bob@example.com", "hash-3"))
	c, err = s.FindUserByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	require.Equal(t, "hash-3", c.PasswordHash)
	require.True(t, errors.Is(s.ReplacePasswordHash(ctx, "nobody@example.com", "x"), UserNotFound{}))

	inserted, err := s.InsertUserIfAbsent(ctx, "bob again", "bob@example.com", "hash-4")
	require.NoError(t, err)
	require.False(t, inserted)
	inserted, err = s.InsertUserIfAbsent(ctx, "alice", "alice@example.com", "")
	require.NoError(t, err)
	require.True(t, inserted)

	c, err = s.FindUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Empty(t, c.PasswordHash)

	total, err := s.CountUsers(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), total)

	deleted, err := s.DeleteUsers(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), deleted)
}

func TestPropertiesAndFavorites(t *testing.T) {
	ctx := context.Background()
	s, cleanup := tempStore(ctx, t)
	defer cleanup()

	empty, err := s.ListProperties(ctx, 1)
	require.NoError(t, err)
	require.Empty(t, empty)

	price := int64(1000)
	for _, p := range []PropertyInput{
		{Slug: "a", Title: "A", Location: "Bangkok", Type: "office", ImageURL: "/a.png", PriceTHB: &price},
		{Slug: "b", Title: "B", Location: "Phuket"},
	} {
		inserted, err := s.UpsertProperty(ctx, p)
		require.NoError(t, err)
		require.True(t, inserted)
	}
	inserted, err := s.UpsertProperty(ctx, PropertyInput{Slug: "a", Title: "Other", Location: "Nowhere"})
	require.NoError(t, err)
	require.False(t, inserted, "slug conflicts should be ignored")

	userID, err := s.CreateUser(ctx, "bob", "bob@example.com", "hash")
	require.NoError(t, err)

	props, err := s.ListProperties(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, []Property{
		{ID: 1, Slug: "a", Title: "A", Location: "Bangkok", Type: "office", ImageURL: "/a.png", PriceTHB: &price},
		{ID: 2, Slug: "b", Title: "B", Location: "Phuket", Type: DefaultPropertyType, ImageURL: DefaultPropertyImage},
	}, props)

	require.NoError(t, s.SetFavorite(ctx, userID, 2, true))
	require.NoError(t, s.SetFavorite(ctx, userID, 2, true), "adding twice is a no-op")
	props, err = s.ListProperties(ctx, userID)
	require.NoError(t, err)
	require.False(t, props[0].IsFavorite)
	require.True(t, props[1].IsFavorite)

	others, err := s.ListProperties(ctx, userID+1)
	require.NoError(t, err)
	require.False(t, others[1].IsFavorite, "favorites are per user, even when the catalog comes from cache")

	err = s.SetFavorite(ctx, userID, 99, true)
	require.True(t, errors.Is(err, PropertyNotFound{}))

	require.NoError(t, s.SetFavorite(ctx, userID, 2, false))
	require.NoError(t, s.SetFavorite(ctx, userID, 2, false), "removing twice is a no-op")
	props, err = s.ListProperties(ctx, userID)
	require.NoError(t, err)
	require.False(t, props[1].IsFavorite)

	err = s.SetFavorite(ctx, userID+100, 1, true)
	require.True(t, errors.Is(err, UserNotFound{}), "favorites of unknown users should fail, got %v", err)

	require.NoError(t, s.SetFavorite(ctx, userID, 1, true))
	_, err = s.DeleteUsers(ctx)
	require.NoError(t, err, "deleting users should cascade to favorites")
}

func TestCatalogCacheInvalidation(t *testing.T) {
	ctx := context.Background()
	s, cleanup := tempStore(ctx, t)
	defer cleanup()

	_, err := s.UpsertProperty(ctx, PropertyInput{Slug: "a", Title: "A", Location: "Bangkok"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			props, err := s.ListProperties(ctx, 1)
			if err != nil || len(props) != 1 {
				t.Errorf("concurrent listing should see one property, got %v (%v)", props, err)
			}
		}()
	}
	wg.Wait()

	_, err = s.UpsertProperty(ctx, PropertyInput{Slug: "b", Title: "B", Location: "Phuket"})
	require.NoError(t, err)
	props, err := s.ListProperties(ctx, 1)
	require.NoError(t, err)
	require.Len(t, props, 2, "inserting a property should invalidate the cached catalog")
}

func TestCatalogFillIgnoresCallerCancellation(t *testing.T) {
	ctx := context.Background()
	s, cleanup := tempStore(ctx, t)
	defer cleanup()

	_, err := s.UpsertProperty(ctx, PropertyInput{Slug: "a", Title: "A", Location: "Bangkok"})
	require.NoError(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	var seen error
	props, err := s.listing.get(cancelled, func(ctx context.Context) ([]Property, error) {
		seen = ctx.Err()
		return s.loadCatalog(ctx)
	})
	require.NoError(t, err)
	require.NoError(t, seen, "the shared fill should not inherit the caller cancellation")
	require.Len(t, props, 1)

	props, err = s.ListProperties(ctx, 1)
	require.NoError(t, err)
	require.Len(t, props, 1)
}

func TestPing(t *testing.T) {
	ctx := context.Background()
	s, cleanup := tempStore(ctx, t)
	defer cleanup()
	ok, err := s.Ping(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "sqlite", s.Dialect())
	require.NoError(t, s.Init(ctx), "init should be idempotent")
}

func TestOpenWithoutURL(t *testing.T) {
	_, err := Open(context.Background(), "")
	require.True(t, errors.Is(err, ErrMissingDatabaseURL))
}

func TestDialect(t *testing.T) {
	require.Equal(t, "postgres", dialectFor("postgres://user@localhost/db").name)
	require.Equal(t, "postgres", dialectFor("postgresql://user@localhost/db").name)
	require.Equal(t, "sqlite", dialectFor("propdeck.db").name)

	require.Equal(t, `select * from t where a = $1 and b = $2`, postgresDialect.rebind(`select * from t where a = ? and b = ?`))
	require.Equal(t, `select * from t where a = ?`, sqliteDialect.rebind(`select * from t where a = ?`))

	require.Equal(t, "file:data.db?_foreign_keys=on&_journal=wal&_busy_timeout=5000", sqliteDialect.connString("data.db"))
	require.Equal(t, "file:data.db?mode=rwc&_journal=delete&_foreign_keys=on&_busy_timeout=5000",
		sqliteDialect.connString("file:data.db?mode=rwc&_journal=delete"))
	require.Equal(t, "postgres://localhost/db", postgresDialect.connString("postgres://localhost/db"))
}

func tempStore(ctx context.Context, t interface {
	Fatal(...interface{})
	Log(...interface{})
}) (*Store, func()) {
	dir, err := os.MkdirTemp("", "propdeck-tests")
	if err != nil {
		t.Fatal(err)
	}
	s, err := Open(ctx, filepath.Join(dir, "catalog.db"))
	if err != nil {
		t.Fatal(err)
	}
	return s, func() {
		err := s.Close()
		if err != nil {
			t.Log("unable to close store", err)
		}
		err = os.RemoveAll(dir)
		if err != nil {
			t.Log("unable to cleanup temp dir", dir)
		}
	}
}

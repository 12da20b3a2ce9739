package testutil

import (
	"context"
	"os"
	"path/filepath"

	"github.com/andrebq/propdeck/catalog"
)

type (
	TestLog interface {
		Fatal(...interface{})
		Log(...interface{})
	}
)

// AcquireStore opens a sqlite backed store inside a temporary directory,
// loader (if not nil) can be used to populate it.
func AcquireStore(ctx context.Context, t TestLog, loader func(context.Context, *catalog.Store) error) (*catalog.Store, func()) {
	dir, err := os.MkdirTemp("", "propdeck-tests")
	if err != nil {
		t.Fatal(err)
	}
	store, err := catalog.Open(ctx, filepath.Join(dir, "propdeck.db"))
	if err != nil {
		os.RemoveAll(dir)
		t.Fatal(err)
	}
	if loader != nil {
		err = loader(ctx, store)
		if err != nil {
			store.Close()
			os.RemoveAll(dir)
			t.Fatal(err)
		}
	}
	return store, func() {
		err := store.Close()
		if err != nil {
			t.Log("unable to close store", err)
		}
		err = os.RemoveAll(dir)
		if err != nil {
			t.Log("unable to cleanup temp dir", dir)
		}
	}
}

// Properties is a small fixed catalog used across tests
func Properties() []catalog.PropertyInput {
	price := int64(12_500_000)
	return []catalog.PropertyInput{
		{Slug: "central-world", Title: "Central World", Location: "Bangkok", Type: "retail", ImageURL: "/img/central-world.jpg", PriceTHB: &price},
		{Slug: "central-pattaya", Title: "Central Pattaya", Location: "Chonburi"},
		{Slug: "centara-grand", Title: "Centara Grand", Location: "Bangkok", Type: "hotel"},
	}
}

// LoadProperties inserts Properties into store
func LoadProperties(ctx context.Context, store *catalog.Store) error {
	for _, p := range Properties() {
		if _, err := store.UpsertProperty(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

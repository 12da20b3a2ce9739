// Package api exposes the catalog over HTTP: account signup and login,
// the property listing with favorites, database maintenance endpoints and
// the static page shells.
package api

import (
	"context"
	"net/http"

	"github.com/andrebq/propdeck/catalog"
	"github.com/andrebq/propdeck/internal/logutil"
	"github.com/andrebq/propdeck/password"
	"github.com/andrebq/propdeck/seed"
	sessionapi "github.com/andrebq/propdeck/session/api"
	"github.com/julienschmidt/httprouter"
)

type (
	// Options configures the optional parts of the handler
	Options struct {
		// SeedSecret guards /api/db/seed, an empty value disables seeding
		SeedSecret string
		// SeedPassword is shared by all seeded users
		SeedPassword string
		// Fixtures used by /api/db/seed, nil means seed.DefaultFixtures
		Fixtures *seed.Fixtures
		// ProtectedPrefixes are checked by the session gate,
		// nil means sessionapi.DefaultProtectedPrefixes
		ProtectedPrefixes []string
	}

	handler struct {
		store  *catalog.Store
		realm  *sessionapi.Realm
		hasher password.Hasher
		opts   Options
	}
)

// AsHandler returns the full propdeck HTTP surface, wrapped by the session gate
func AsHandler(ctx context.Context, store *catalog.Store, realm *sessionapi.Realm, hasher password.Hasher, opts Options) (http.Handler, error) {
	if opts.Fixtures == nil {
		fx, err := seed.DefaultFixtures()
		if err != nil {
			return nil, err
		}
		opts.Fixtures = fx
	}
	if opts.ProtectedPrefixes == nil {
		opts.ProtectedPrefixes = sessionapi.DefaultProtectedPrefixes
	}
	h := &handler{store: store, realm: realm, hasher: hasher, opts: opts}

	router := httprouter.New()
	router.HandlerFunc("POST", "/api/signup", h.signup)
	router.HandlerFunc("POST", "/api/login", h.login)
	router.HandlerFunc("GET", "/api/logout", h.logout)
	router.HandlerFunc("POST", "/api/logout", h.logout)
	router.HandlerFunc("GET", "/api/properties", h.listProperties)
	router.HandlerFunc("POST", "/api/favorites", h.setFavorite)
	router.HandlerFunc("GET", "/api/db/ping", h.ping)
	router.HandlerFunc("GET", "/api/db/seed", h.seed)

	for path, page := range pages {
		router.HandlerFunc("GET", path, serveShell(page))
	}
	log := logutil.GetOrDefault(ctx)
	log.Debug().Strs("protected", opts.ProtectedPrefixes).Bool("seed", len(opts.SeedSecret) > 0).Msg("Routes registered")
	return realm.Gate(opts.ProtectedPrefixes, router), nil
}

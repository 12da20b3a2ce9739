// Package seed fills a store with demo users and the property catalog.
//
// The data comes from a Lua script (see fixtures/default.lua) which returns
// a plain table, mapped into Fixtures with gluamapper.
package seed

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/andrebq/propdeck/catalog"
	"github.com/andrebq/propdeck/internal/lua/luadefaults"
	"github.com/yuin/gluamapper"
	lua "github.com/yuin/gopher-lua"
)

type (
	Fixtures struct {
		Users      NameLists
		Properties []catalog.PropertyInput
	}

	// NameLists are combined to generate user names and emails
	NameLists struct {
		FirstNames []string
		LastNames  []string
	}

	InvalidFixtures struct {
		Source string
		cause  error
	}
)

var (
	//go:embed fixtures/default.lua
	defaultScript string
)

func (i InvalidFixtures) Error() string {
	return fmt.Sprintf("invalid seed fixtures in %v, cause %v", i.Source, i.cause)
}

func (i InvalidFixtures) Unwrap() error {
	return i.cause
}

// DefaultFixtures returns the fixtures shipped with propdeck
func DefaultFixtures() (*Fixtures, error) {
	return LoadFixtures("default.lua", defaultScript)
}

// FixturesFrom loads the script at path, or the default fixtures
// when path is empty
func FixturesFrom(path string) (*Fixtures, error) {
	if len(path) == 0 {
		return DefaultFixtures()
	}
	return LoadFixturesFile(path)
}

// LoadFixturesFile reads and evaluates the Lua script at path
func LoadFixturesFile(path string) (*Fixtures, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read seed script %v, cause %w", path, err)
	}
	return LoadFixtures(path, string(buf))
}

// LoadFixtures evaluates script (source is only used in errors) in a sandboxed
// Lua state, the script must return a table.
func LoadFixtures(source, script string) (*Fixtures, error) {
	L := luadefaults.NewFixtureState()
	defer L.Close()
	if err := L.DoString(script); err != nil {
		return nil, InvalidFixtures{Source: source, cause: err}
	}
	tbl, ok := L.Get(-1).(*lua.LTable)
	if !ok {
		return nil, InvalidFixtures{Source: source, cause: errors.New("script must return a table")}
	}
	var fx Fixtures
	if err := gluamapper.Map(tbl, &fx); err != nil {
		return nil, InvalidFixtures{Source: source, cause: err}
	}
	if err := fx.validate(); err != nil {
		return nil, InvalidFixtures{Source: source, cause: err}
	}
	return &fx, nil
}

func (f *Fixtures) validate() error {
	if len(f.Users.FirstNames) == 0 || len(f.Users.LastNames) == 0 {
		return errors.New("users.first_names and users.last_names cannot be empty")
	}
	for i, p := range f.Properties {
		if p.Slug == "" || p.Title == "" || p.Location == "" {
			return fmt.Errorf("property #%v must have slug, title and location", i+1)
		}
	}
	return nil
}

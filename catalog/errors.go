package catalog

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

type (
	// Conflict is returned when a write hits a unique constraint
	Conflict struct {
		Field string
		Value string
	}

	// UserNotFound identifies the user either by Email or by ID
	UserNotFound struct {
		Email string
		ID    int64
	}

	PropertyNotFound struct {
		ID int64
	}
)

var (
	ErrMissingDatabaseURL = errors.New("catalog: missing database url")
	ErrEmailTaken         = Conflict{Field: "email"}
)

func (c Conflict) Error() string {
	return fmt.Sprintf("%v %v is already in use", c.Field, c.Value)
}

// Is matches any Conflict on the same field, regardless of the value
func (c Conflict) Is(target error) bool {
	other, ok := target.(Conflict)
	return ok && other.Field == c.Field
}

func (u UserNotFound) Error() string {
	if len(u.Email) == 0 {
		return fmt.Sprintf("user #%v not found", u.ID)
	}
	return fmt.Sprintf("user %v not found", u.Email)
}

func (u UserNotFound) Is(target error) bool {
	_, ok := target.(UserNotFound)
	return ok
}

func (p PropertyNotFound) Error() string {
	return fmt.Sprintf("property %v not found", p.ID)
}

func (p PropertyNotFound) Is(target error) bool {
	_, ok := target.(PropertyNotFound)
	return ok
}

// isUniqueViolation understands both sqlite3 and postgres errors
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgForeignKeyViolation
	}
	return false
}

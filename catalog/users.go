package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// CreateUser stores a new credential and returns its id.
// A duplicated email results in an error matching ErrEmailTaken.
func (s *Store) CreateUser(ctx context.Context, name, email, passwordHash string) (int64, error) {
	var id int64
	err := s.queryRow(ctx, `insert into users (name, email, password_hash) values (?, ?, ?) returning id`,
		name, email, passwordHash).Scan(&id)
	if isUniqueViolation(err) {
		return 0, Conflict{Field: "email", Value: email}
	} else if err != nil {
		return 0, fmt.Errorf("unable to create user %v, cause %w", email, err)
	}
	return id, nil
}

// InsertUserIfAbsent behaves like CreateUser but silently skips
// emails that are already registered.
func (s *Store) InsertUserIfAbsent(ctx context.Context, name, email, passwordHash string) (bool, error) {
	var id int64
	err := s.queryRow(ctx, `insert into users (name, email, password_hash) values (?, ?, ?)
		on conflict (email) do nothing
		returning id`, name, email, passwordHash).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("unable to insert user %v, cause %w", email, err)
	}
	return true, nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (Credential, error) {
	var c Credential
	var hash sql.NullString
	err := s.queryRow(ctx, `select id, name, email, password_hash from users where email = ? limit 1`, email).
		Scan(&c.ID, &c.Name, &c.Email, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return Credential{}, UserNotFound{Email: email}
	} else if err != nil {
		return Credential{}, fmt.Errorf("unable to lookup user %v, cause %w", email, err)
	}
	c.PasswordHash = hash.String
	return c, nil
}

// ReplacePasswordHash swaps the stored hash of a user as a whole
func (s *Store) ReplacePasswordHash(ctx context.Context, email, passwordHash string) error {
	res, err := s.exec(ctx, `update users set password_hash = ? where email = ?`, passwordHash, email)
	if err != nil {
		return fmt.Errorf("unable to update password of %v, cause %w", email, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("unable to update password of %v, cause %w", email, err)
	} else if n == 0 {
		return UserNotFound{Email: email}
	}
	return nil
}

// DeleteUsers removes every user (and by cascade their favorites)
func (s *Store) DeleteUsers(ctx context.Context) (int64, error) {
	res, err := s.exec(ctx, `delete from users`)
	if err != nil {
		return 0, fmt.Errorf("unable to delete users, cause %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := s.queryRow(ctx, `select count(*) from users`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("unable to count users, cause %w", err)
	}
	return n, nil
}

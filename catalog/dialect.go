package catalog

import (
	"strconv"
	"strings"
)

type (
	dialect struct {
		name     string
		driver   string
		numbered bool
		schema   []string
	}
)

var (
	sqliteDialect = dialect{
		name:   "sqlite",
		driver: "sqlite3",
		schema: []string{
			`create table if not exists users(
				id integer not null primary key autoincrement,
				name text not null,
				email text not null unique,
				password_hash text,
				created_at text not null default current_timestamp
			)`,
			`create table if not exists properties(
				id integer not null primary key autoincrement,
				slug text not null unique,
				title text not null,
				location text not null,
				type text,
				image_url text,
				price_thb integer
			)`,
			`create table if not exists user_favorites(
				user_id integer not null references users(id) on delete cascade,
				property_id integer not null references properties(id) on delete cascade,
				created_at text not null default current_timestamp,
				primary key (user_id, property_id)
			)`,
		},
	}

	postgresDialect = dialect{
		name:     "postgres",
		driver:   "pgx",
		numbered: true,
		schema: []string{
			`create table if not exists users(
				id bigserial primary key,
				name text not null,
				email text not null unique,
				password_hash text,
				created_at timestamptz not null default now()
			)`,
			`alter table users add column if not exists password_hash text`,
			`create table if not exists properties(
				id bigserial primary key,
				slug text not null unique,
				title text not null,
				location text not null,
				type text,
				image_url text,
				price_thb bigint
			)`,
			`create table if not exists user_favorites(
				user_id bigint not null references users(id) on delete cascade,
				property_id bigint not null references properties(id) on delete cascade,
				created_at timestamptz not null default now(),
				primary key (user_id, property_id)
			)`,
		},
	}
)

func dialectFor(dsn string) dialect {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return postgresDialect
	}
	return sqliteDialect
}

// connString adapts the user provided dsn to what the driver expects
func (d dialect) connString(dsn string) string {
	if d.numbered {
		return dsn
	}
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}
	for _, opt := range []string{"_foreign_keys=on", "_journal=wal", "_busy_timeout=5000"} {
		name := opt[:strings.Index(opt, "=")+1]
		if strings.Contains(dsn, name) {
			continue
		}
		if strings.Contains(dsn, "?") {
			dsn = dsn + "&" + opt
		} else {
			dsn = dsn + "?" + opt
		}
	}
	return dsn
}

// rebind rewrites '?' placeholders into $1..$N for drivers that need it
func (d dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var sb strings.Builder
	sb.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

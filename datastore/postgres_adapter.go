package datastore

import (
	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// PostgresAdapter provides support for PostgreSQL databases.
type PostgresAdapter struct{}

func (a PostgresAdapter) PostCreate(db *sqlx.DB) (err error) {
	return nil
}

func (a PostgresAdapter) Placeholder() sq.PlaceholderFormat {
	return sq.Dollar
}

func (a PostgresAdapter) VersionTableQuery() string {
	return `CREATE TABLE IF NOT EXISTS schema_migrations (version integer PRIMARY KEY NOT NULL)`
}

func (a PostgresAdapter) Up() []string {
	return []string{
		// 1
		`
CREATE TABLE document (
    id SERIAL PRIMARY KEY,
    name varchar NOT NULL UNIQUE,
    content TEXT NOT NULL,
    units integer NOT NULL DEFAULT 0,
    updated_at timestamptz NOT NULL
);`,
		// 2
		`CREATE INDEX updated_at_idx ON document (updated_at);`,
	}
}

func (a PostgresAdapter) Down() []string {
	return []string{
		// 1
		`DROP TABLE IF EXISTS document;`,
		// 2
		`DROP INDEX IF EXISTS updated_at_idx;`,
	}
}

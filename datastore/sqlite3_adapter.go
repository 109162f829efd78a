package datastore

import (
	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// Sqlite3Adapter provides support for SQLite3 databases.
type Sqlite3Adapter struct{}

func (s Sqlite3Adapter) PostCreate(db *sqlx.DB) (err error) {
	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return err
	}
	// Faster than using default journal file
	_, err = db.Exec("PRAGMA journal_mode = WAL")
	if err != nil {
		return err
	}
	// Default (full) is slower
	_, err = db.Exec("PRAGMA synchronous = NORMAL")
	if err != nil {
		return err
	}

	return nil
}

func (s Sqlite3Adapter) Placeholder() sq.PlaceholderFormat {
	return sq.Question
}

func (s Sqlite3Adapter) VersionTableQuery() string {
	return `CREATE TABLE IF NOT EXISTS "schema_migrations" ("version" INTEGER PRIMARY KEY NOT NULL)`
}

func (s Sqlite3Adapter) Up() []string {
	return []string{
		// 1
		`
CREATE TABLE "document" (
    "id" INTEGER PRIMARY KEY AUTOINCREMENT,
    "name" TEXT NOT NULL UNIQUE,
    "content" TEXT NOT NULL,
    "units" INTEGER NOT NULL DEFAULT 0,
    "updated_at" TIMESTAMP NOT NULL
);
`,
		// 2
		`CREATE INDEX "updated_at" ON "document" ("updated_at")`,
	}
}

func (s Sqlite3Adapter) Down() []string {
	return []string{
		// 1
		`DROP TABLE document`,
		// 2
		`DROP INDEX "updated_at"`,
	}
}

package datastore

import (
	"database/sql"
	"errors"
)

func (ds *DataStore) ensureVersionTableExists() (err error) {
	_, err = ds.db.Exec(ds.adapter.VersionTableQuery())
	if err != nil {
		return err
	}

	var count int
	err = ds.db.Get(&count, `SELECT COUNT(*) FROM schema_migrations`)
	if err != nil {
		return err
	}
	switch {
	case count == 0:
		_, err = ds.db.Exec(`INSERT INTO schema_migrations (version) VALUES (0)`)
	case count > 1:
		err = errors.New("too many rows in schema_migrations table")
	}

	return err
}

// Version returns the schema version the database is at.
func (ds *DataStore) Version() (version int64, err error) {
	if err = ds.ensureVersionTableExists(); err != nil {
		return 0, err
	}

	err = ds.db.Get(&version, `SELECT version FROM schema_migrations`)
	switch {
	case err == sql.ErrNoRows:
		return 0, nil
	case err != nil:
		return 0, err
	default:
		return version, nil
	}
}

func (ds *DataStore) updateVersion(version int64) (err error) {
	query, args, err := ds.sb.Update("schema_migrations").Set("version", version).ToSql()
	if err != nil {
		return err
	}
	_, err = ds.db.Exec(query, args...)

	return err
}

// MigrateUp applies every migration newer than the current schema version and returns the
// version reached.
func (ds *DataStore) MigrateUp() (version int64, err error) {
	startVer, err := ds.Version()
	if err != nil {
		return version, err
	}

	for i, query := range ds.adapter.Up() {
		migTo := int64(i + 1)
		if migTo <= startVer {
			version = migTo
			continue
		}

		_, err = ds.db.Exec(query)
		if err != nil {
			return version, err
		}

		err = ds.updateVersion(migTo)
		if err != nil {
			return version, err
		}

		version = migTo
	}

	return version, err
}

// MigrateDown reverts every applied migration and returns the version reached.
func (ds *DataStore) MigrateDown() (version int64, err error) {
	startVer, err := ds.Version()
	if err != nil {
		return version, err
	}

	version = startVer
	down := ds.adapter.Down()
	for i := len(down) - 1; i >= 0; i-- {
		migVer := int64(i + 1) // The version of the Down migration we will apply
		migTo := int64(i)      // The version we will end up at

		// Skip migrations for newer versions
		if migVer > startVer {
			continue
		}

		_, err = ds.db.Exec(down[i])
		if err != nil {
			return version, err
		}

		err = ds.updateVersion(migTo)
		if err != nil {
			return version, err
		}

		version = migTo
	}

	return version, err
}

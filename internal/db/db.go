package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

var pragmas = []string{
	`PRAGMA foreign_keys = ON;`,
	`PRAGMA busy_timeout = 5000;`,
}

// Open opens the SQLite database at path on a single connection so that
// pragmas hold for every statement.
func Open(path string) (*sql.DB, error) {
	sqldb, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open patient database: %w", err)
	}
	sqldb.SetMaxOpenConns(1)
	if err := sqldb.Ping(); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("ping patient database %s: %w", path, err)
	}
	for _, pragma := range pragmas {
		if _, err := sqldb.Exec(pragma); err != nil {
			sqldb.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}
	return sqldb, nil
}

// OpenMigrated opens path and brings the schema to LatestVersion. It returns
// the number of migrations applied.
func OpenMigrated(path string) (*sql.DB, int, error) {
	sqldb, err := Open(path)
	if err != nil {
		return nil, 0, err
	}
	applied, err := ApplyMigrations(sqldb)
	if err != nil {
		sqldb.Close()
		return nil, 0, err
	}
	return sqldb, applied, nil
}

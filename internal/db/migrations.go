package db

import (
	"database/sql"
	"fmt"
)

type migration struct {
	version int
	name    string
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		name:    "initial_schema",
		sql: `
CREATE TABLE IF NOT EXISTS patients (
  id TEXT PRIMARY KEY,
  gender TEXT NOT NULL CHECK(gender IN ('male', 'female')),
  height_cm REAL NOT NULL CHECK(height_cm > 0),
  weight_kg REAL NOT NULL CHECK(weight_kg > 0),
  age_years INTEGER NOT NULL CHECK(age_years > 0),
  has_diabetes INTEGER NOT NULL DEFAULT 0,
  has_kidney_failure INTEGER NOT NULL DEFAULT 0,
  has_refeeding_risk INTEGER NOT NULL DEFAULT 0,
  bmi REAL NOT NULL DEFAULT 0,
  ideal_weight REAL NOT NULL DEFAULT 0,
  adjusted_weight REAL NOT NULL DEFAULT 0,
  calculation_weight REAL NOT NULL DEFAULT 0,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_patients_created_at ON patients(created_at);

CREATE TABLE IF NOT EXISTS mixtures (
  id INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  name_norm TEXT NOT NULL UNIQUE,
  calories_per_1000ml REAL NOT NULL CHECK(calories_per_1000ml > 0),
  protein_per_1000ml REAL NOT NULL CHECK(protein_per_1000ml > 0),
  is_diabetic INTEGER NOT NULL DEFAULT 0,
  is_semi_elemental INTEGER NOT NULL DEFAULT 0,
  is_default INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`,
	},
	{
		version: 2,
		name:    "mixture_seeds",
		sql: `
CREATE TABLE IF NOT EXISTS mixture_seeds (
  mixture_id INTEGER PRIMARY KEY,
  seeded_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`,
	},
	{
		version: 3,
		name:    "app_config",
		sql: `
CREATE TABLE IF NOT EXISTS app_config (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`,
	},
}

// LatestVersion is the schema version after ApplyMigrations succeeds.
func LatestVersion() int {
	return migrations[len(migrations)-1].version
}

// ApplyMigrations returns the number of migrations applied by this call.
func ApplyMigrations(db *sql.DB) (int, error) {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`); err != nil {
		return 0, fmt.Errorf("ensure schema_migrations table: %w", err)
	}

	applied := 0
	for _, m := range migrations {
		var exists int
		err := db.QueryRow(`SELECT 1 FROM schema_migrations WHERE version = ?`, m.version).Scan(&exists)
		if err == nil {
			continue
		}
		if err != sql.ErrNoRows {
			return applied, fmt.Errorf("check migration version %d: %w", m.version, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return applied, fmt.Errorf("begin migration tx: %w", err)
		}

		if _, err := tx.Exec(m.sql); err != nil {
			_ = tx.Rollback()
			return applied, fmt.Errorf("apply migration version %d (%s): %w", m.version, m.name, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations(version, name) VALUES(?, ?)`, m.version, m.name); err != nil {
			_ = tx.Rollback()
			return applied, fmt.Errorf("record migration version %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return applied, fmt.Errorf("commit migration version %d: %w", m.version, err)
		}
		applied++
	}

	return applied, nil
}

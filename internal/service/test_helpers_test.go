package service_test

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/saadjs/nutricu/internal/db"
	"github.com/saadjs/nutricu/internal/model"
	"github.com/saadjs/nutricu/internal/service"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nutricu.db")
	return openTestDB(t, path)
}

func openTestDB(t *testing.T, path string) *sql.DB {
	t.Helper()
	sqldb, _, err := db.OpenMigrated(path)
	if err != nil {
		t.Fatalf("open migrated db: %v", err)
	}
	t.Cleanup(func() { _ = sqldb.Close() })
	if _, err := service.SeedDefaultMixtures(sqldb); err != nil {
		t.Fatalf("seed default mixtures: %v", err)
	}
	return sqldb
}

func adultMale(id string) service.PatientInput {
	return service.PatientInput{
		ID:       id,
		Gender:   model.GenderMale,
		HeightCm: 170,
		WeightKg: 70,
		AgeYears: 54,
	}
}

package service

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/saadjs/nutricu/internal/model"
	"github.com/saadjs/nutricu/internal/nutrition"
)

type DoctorReport struct {
	StalePatients   int `json:"stale_patients"`
	InvalidPatients int `json:"invalid_patients"`
	InvalidMixtures int `json:"invalid_mixtures"`
	DuplicateNames  int `json:"duplicate_mixture_names"`
	FixedPatients   int `json:"fixed_patients,omitempty"`
}

// Healthy reports whether the doctor found nothing left to fix.
func (r DoctorReport) Healthy() bool {
	return r.StalePatients-r.FixedPatients == 0 && r.InvalidPatients == 0 && r.InvalidMixtures == 0 && r.DuplicateNames == 0
}

// RunDoctor reports rows the engine cannot trust. With fix, stale derived
// patient fields are recomputed from the stored biometrics.
func RunDoctor(db *sql.DB, fix bool) (DoctorReport, error) {
	report := DoctorReport{}
	patients, err := ListPatients(db)
	if err != nil {
		return report, fmt.Errorf("doctor patient scan: %w", err)
	}
	stale := make([]model.Patient, 0)
	for _, p := range patients {
		if validatePatient(p) != nil {
			report.InvalidPatients++
			continue
		}
		if nutrition.DerivedStale(p) {
			report.StalePatients++
			stale = append(stale, p)
		}
	}

	if err := db.QueryRow(`SELECT COUNT(1) FROM mixtures WHERE NOT (calories_per_1000ml > 0) OR NOT (protein_per_1000ml > 0) OR TRIM(name) = ''`).Scan(&report.InvalidMixtures); err != nil {
		return report, fmt.Errorf("doctor mixture check: %w", err)
	}
	if err := db.QueryRow(`
SELECT COALESCE(SUM(cnt-1),0) FROM (
  SELECT COUNT(*) AS cnt FROM mixtures GROUP BY LOWER(TRIM(name)) HAVING cnt > 1
)
`).Scan(&report.DuplicateNames); err != nil {
		return report, fmt.Errorf("doctor duplicate query: %w", err)
	}

	if fix && len(stale) > 0 {
		tx, err := db.Begin()
		if err != nil {
			return report, fmt.Errorf("doctor fix begin tx: %w", err)
		}
		now := time.Now().UTC()
		for _, p := range stale {
			fixed := nutrition.ComputeDerived(p)
			fixed.UpdatedAt = now
			if err := updatePatient(tx, fixed); err != nil {
				_ = tx.Rollback()
				return report, fmt.Errorf("doctor fix patient %q: %w", p.ID, err)
			}
			report.FixedPatients++
		}
		if err := tx.Commit(); err != nil {
			return report, fmt.Errorf("doctor fix commit: %w", err)
		}
	}

	return report, nil
}

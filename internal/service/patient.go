package service

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/saadjs/nutricu/internal/model"
	"github.com/saadjs/nutricu/internal/nutrition"
)

type PatientInput struct {
	ID               string
	Gender           model.Gender
	HeightCm         float64
	WeightKg         float64
	AgeYears         int
	HasDiabetes      bool
	HasKidneyFailure bool
	HasRefeedingRisk bool
}

func (in PatientInput) patient() model.Patient {
	return model.Patient{
		ID:               strings.TrimSpace(in.ID),
		Gender:           model.Gender(strings.ToLower(strings.TrimSpace(string(in.Gender)))),
		HeightCm:         in.HeightCm,
		WeightKg:         in.WeightKg,
		AgeYears:         in.AgeYears,
		HasDiabetes:      in.HasDiabetes,
		HasKidneyFailure: in.HasKidneyFailure,
		HasRefeedingRisk: in.HasRefeedingRisk,
	}
}

// InputFromPatient returns the editable fields of p.
func InputFromPatient(p model.Patient) PatientInput {
	return PatientInput{
		ID:               p.ID,
		Gender:           p.Gender,
		HeightCm:         p.HeightCm,
		WeightKg:         p.WeightKg,
		AgeYears:         p.AgeYears,
		HasDiabetes:      p.HasDiabetes,
		HasKidneyFailure: p.HasKidneyFailure,
		HasRefeedingRisk: p.HasRefeedingRisk,
	}
}

func validatePatient(p model.Patient) error {
	if p.ID == "" {
		return fmt.Errorf("patient id is required")
	}
	if !p.Gender.Valid() {
		return fmt.Errorf("gender must be male or female")
	}
	if err := validatePositiveFloat("height", p.HeightCm); err != nil {
		return err
	}
	if err := validatePositiveFloat("weight", p.WeightKg); err != nil {
		return err
	}
	return validatePositiveInt("age", p.AgeYears)
}

// AddPatient validates in, derives anthropometry and stores the record.
func AddPatient(db *sql.DB, in PatientInput) (model.Patient, error) {
	p := in.patient()
	if err := validatePatient(p); err != nil {
		return model.Patient{}, err
	}
	exists, err := PatientExists(db, p.ID)
	if err != nil {
		return model.Patient{}, err
	}
	if exists {
		return model.Patient{}, fmt.Errorf("patient with id %q already exists", p.ID)
	}
	now := time.Now().UTC()
	p = nutrition.ComputeDerived(p)
	p.CreatedAt = now
	p.UpdatedAt = now
	if err := insertPatient(db, p); err != nil {
		return model.Patient{}, err
	}
	return p, nil
}

// UpdatePatient replaces the editable fields of patient id. The id itself is
// immutable; in.ID is ignored.
func UpdatePatient(db *sql.DB, id string, in PatientInput) (model.Patient, error) {
	existing, err := GetPatient(db, id)
	if err != nil {
		return model.Patient{}, err
	}
	p := in.patient()
	p.ID = existing.ID
	if err := validatePatient(p); err != nil {
		return model.Patient{}, err
	}
	p = nutrition.ComputeDerived(p)
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	if err := updatePatient(db, p); err != nil {
		return model.Patient{}, err
	}
	return p, nil
}

func GetPatient(db *sql.DB, id string) (*model.Patient, error) {
	return getPatient(db, id)
}

func getPatient(q queryer, id string) (*model.Patient, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("patient id is required")
	}
	p, err := scanPatient(q.QueryRow(patientSelectBase()+` WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("patient %q not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get patient %q: %w", id, err)
	}
	return p, nil
}

// ListPatients returns the newest patients first.
func ListPatients(db *sql.DB) ([]model.Patient, error) {
	rows, err := db.Query(patientSelectBase() + ` ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	defer rows.Close()
	out := make([]model.Patient, 0)
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan patient: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate patients: %w", err)
	}
	return out, nil
}

func DeletePatient(db *sql.DB, id string) error {
	id = strings.TrimSpace(id)
	res, err := db.Exec(`DELETE FROM patients WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete patient %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete patient rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("patient %q not found", id)
	}
	return nil
}

func PatientExists(db *sql.DB, id string) (bool, error) {
	return patientExists(db, id)
}

func patientExists(q queryer, id string) (bool, error) {
	var one int
	err := q.QueryRow(`SELECT 1 FROM patients WHERE id = ?`, strings.TrimSpace(id)).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check patient %q: %w", id, err)
	}
	return true, nil
}

func insertPatient(q queryer, p model.Patient) error {
	_, err := q.Exec(`
INSERT INTO patients(
  id, gender, height_cm, weight_kg, age_years,
  has_diabetes, has_kidney_failure, has_refeeding_risk,
  bmi, ideal_weight, adjusted_weight, calculation_weight,
  created_at, updated_at
) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		p.ID, string(p.Gender), p.HeightCm, p.WeightKg, p.AgeYears,
		boolInt(p.HasDiabetes), boolInt(p.HasKidneyFailure), boolInt(p.HasRefeedingRisk),
		p.BMI, p.IdealWeight, p.AdjustedWeight, p.CalculationWeight,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert patient %q: %w", p.ID, err)
	}
	return nil
}

func updatePatient(q queryer, p model.Patient) error {
	_, err := q.Exec(`
UPDATE patients
SET gender = ?, height_cm = ?, weight_kg = ?, age_years = ?,
    has_diabetes = ?, has_kidney_failure = ?, has_refeeding_risk = ?,
    bmi = ?, ideal_weight = ?, adjusted_weight = ?, calculation_weight = ?,
    updated_at = ?
WHERE id = ?
`,
		string(p.Gender), p.HeightCm, p.WeightKg, p.AgeYears,
		boolInt(p.HasDiabetes), boolInt(p.HasKidneyFailure), boolInt(p.HasRefeedingRisk),
		p.BMI, p.IdealWeight, p.AdjustedWeight, p.CalculationWeight,
		p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update patient %q: %w", p.ID, err)
	}
	return nil
}

func patientSelectBase() string {
	return `
SELECT id, gender, height_cm, weight_kg, age_years,
       has_diabetes, has_kidney_failure, has_refeeding_risk,
       bmi, ideal_weight, adjusted_weight, calculation_weight,
       created_at, updated_at
FROM patients`
}

func scanPatient(row rowScanner) (*model.Patient, error) {
	var p model.Patient
	var gender string
	if err := row.Scan(
		&p.ID,
		&gender,
		&p.HeightCm,
		&p.WeightKg,
		&p.AgeYears,
		&p.HasDiabetes,
		&p.HasKidneyFailure,
		&p.HasRefeedingRisk,
		&p.BMI,
		&p.IdealWeight,
		&p.AdjustedWeight,
		&p.CalculationWeight,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.Gender = model.Gender(gender)
	return &p, nil
}

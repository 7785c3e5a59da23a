package service

import (
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/saadjs/nutricu/internal/catalog"
	"github.com/saadjs/nutricu/internal/model"
	"github.com/saadjs/nutricu/internal/nutrition"
)

// SnapshotVersion is written into every export.
const SnapshotVersion = 1

type Snapshot struct {
	Version    int             `json:"version" yaml:"version"`
	ExportedAt time.Time       `json:"exported_at" yaml:"exported_at"`
	Patients   []model.Patient `json:"patients" yaml:"patients"`
	Mixtures   []model.Mixture `json:"mixtures" yaml:"mixtures"`
}

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	// FormatCSV carries patients only, one row each.
	FormatCSV Format = "csv"
)

// ParseFormat accepts json, yaml, yml and csv.
func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported format %q (use json, yaml, or csv)", value)
	}
}

// FormatFromPath picks the format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".csv":
		return FormatCSV
	default:
		return FormatJSON
	}
}

type ImportMode string

const (
	ImportModeFail    ImportMode = "fail"
	ImportModeSkip    ImportMode = "skip"
	ImportModeMerge   ImportMode = "merge"
	ImportModeReplace ImportMode = "replace"
)

func ParseImportMode(value string) (ImportMode, error) {
	mode := ImportMode(strings.ToLower(strings.TrimSpace(value)))
	switch mode {
	case ImportModeFail, ImportModeSkip, ImportModeMerge, ImportModeReplace:
		return mode, nil
	case "":
		return ImportModeMerge, nil
	default:
		return "", fmt.Errorf("invalid import mode %q (use fail, skip, merge, or replace)", value)
	}
}

type ImportOptions struct {
	Mode   ImportMode
	DryRun bool
}

type ImportReport struct {
	Inserted  int      `json:"inserted"`
	Updated   int      `json:"updated"`
	Skipped   int      `json:"skipped"`
	Conflicts int      `json:"conflicts"`
	Warnings  []string `json:"warnings,omitempty"`
}

func ExportSnapshot(db *sql.DB) (*Snapshot, error) {
	patients, err := ListPatients(db)
	if err != nil {
		return nil, fmt.Errorf("export patients: %w", err)
	}
	mixtures, err := ListMixtures(db)
	if err != nil {
		return nil, fmt.Errorf("export mixtures: %w", err)
	}
	return &Snapshot{
		Version:    SnapshotVersion,
		ExportedAt: time.Now().UTC(),
		Patients:   patients,
		Mixtures:   mixtures,
	}, nil
}

func EncodeSnapshot(w io.Writer, snap *Snapshot, format Format) error {
	switch format {
	case FormatCSV:
		return encodePatientsCSV(w, snap.Patients)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(snap); err != nil {
			return fmt.Errorf("encode yaml snapshot: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("flush yaml snapshot: %w", err)
		}
		return nil
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snap); err != nil {
			return fmt.Errorf("encode json snapshot: %w", err)
		}
		return nil
	}
}

func DecodeSnapshot(r io.Reader, format Format) (*Snapshot, error) {
	var snap Snapshot
	switch format {
	case FormatCSV:
		patients, err := decodePatientsCSV(r)
		if err != nil {
			return nil, err
		}
		snap = Snapshot{Version: SnapshotVersion, Patients: patients}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&snap); err != nil {
			return nil, fmt.Errorf("decode yaml snapshot: %w", err)
		}
	default:
		if err := json.NewDecoder(r).Decode(&snap); err != nil {
			return nil, fmt.Errorf("decode json snapshot: %w", err)
		}
	}
	if snap.Version > SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d is newer than supported version %d", snap.Version, SnapshotVersion)
	}
	return &snap, nil
}

// ImportSnapshot writes snap in one transaction. Derived patient fields in the
// file are ignored and recomputed.
func ImportSnapshot(db *sql.DB, snap *Snapshot, opts ImportOptions) (ImportReport, error) {
	report := ImportReport{}
	mode := opts.Mode
	if mode == "" {
		mode = ImportModeMerge
	}

	tx, err := db.Begin()
	if err != nil {
		return report, fmt.Errorf("begin import tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if mode == ImportModeReplace {
		if err := clearUserData(tx); err != nil {
			return report, err
		}
	}

	now := time.Now().UTC()
	for _, raw := range snap.Patients {
		p := InputFromPatient(raw).patient()
		if err := validatePatient(p); err != nil {
			return report, fmt.Errorf("import patient %q: %w", raw.ID, err)
		}
		p = nutrition.ComputeDerived(p)
		p.CreatedAt = raw.CreatedAt
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		p.UpdatedAt = now

		exists, err := patientExists(tx, p.ID)
		if err != nil {
			return report, err
		}
		if exists {
			switch mode {
			case ImportModeFail:
				report.Conflicts++
				return report, fmt.Errorf("import conflict for patient %q", p.ID)
			case ImportModeSkip:
				report.Skipped++
				continue
			}
			if err := updatePatient(tx, p); err != nil {
				return report, err
			}
			report.Updated++
			continue
		}
		if err := insertPatient(tx, p); err != nil {
			return report, err
		}
		report.Inserted++
	}

	for _, m := range snap.Mixtures {
		in := InputFromMixture(m)
		if err := validateMixture(in); err != nil {
			return report, fmt.Errorf("import mixture %d: %w", m.ID, err)
		}
		m.Name = strings.TrimSpace(m.Name)
		if m.ID <= 0 {
			id, err := nextMixtureID(tx)
			if err != nil {
				return report, err
			}
			m.ID = id
		}

		nameTaken, err := mixtureNameExists(tx, m.Name, m.ID)
		if err != nil {
			return report, err
		}
		if nameTaken {
			if mode == ImportModeFail {
				report.Conflicts++
				return report, fmt.Errorf("import conflict for mixture name %q", m.Name)
			}
			report.Skipped++
			report.Warnings = append(report.Warnings, fmt.Sprintf("mixture %d skipped: name %q belongs to another mixture", m.ID, m.Name))
			continue
		}

		var one int
		err = tx.QueryRow(`SELECT 1 FROM mixtures WHERE id = ?`, m.ID).Scan(&one)
		if err != nil && err != sql.ErrNoRows {
			return report, fmt.Errorf("find mixture %d: %w", m.ID, err)
		}
		if err == nil {
			switch mode {
			case ImportModeFail:
				report.Conflicts++
				return report, fmt.Errorf("import conflict for mixture %d", m.ID)
			case ImportModeSkip:
				report.Skipped++
				continue
			}
			if err := updateMixture(tx, m); err != nil {
				return report, err
			}
			report.Updated++
			continue
		}
		if err := insertMixture(tx, m); err != nil {
			return report, err
		}
		report.Inserted++
	}

	if opts.DryRun {
		return report, nil
	}
	if err := tx.Commit(); err != nil {
		return report, fmt.Errorf("commit import tx: %w", err)
	}
	return report, nil
}

// clearUserData empties the record tables. Every bundled id is marked seeded
// so the snapshot alone decides which defaults exist afterwards.
func clearUserData(tx *sql.Tx) error {
	for _, stmt := range []string{
		`DELETE FROM patients`,
		`DELETE FROM mixtures`,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("clear data (%s): %w", stmt, err)
		}
	}
	for id := int64(1); id <= catalog.MaxDefaultID; id++ {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO mixture_seeds(mixture_id) VALUES(?)`, id); err != nil {
			return fmt.Errorf("mark default mixture %d seeded: %w", id, err)
		}
	}
	return nil
}

var patientCSVHeader = []string{
	"id", "gender", "height_cm", "weight_kg", "age_years",
	"has_diabetes", "has_kidney_failure", "has_refeeding_risk",
	"bmi", "ideal_weight", "adjusted_weight", "calculation_weight", "created_at",
}

func encodePatientsCSV(w io.Writer, patients []model.Patient) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(patientCSVHeader); err != nil {
		return fmt.Errorf("write patient csv header: %w", err)
	}
	for _, p := range patients {
		record := []string{
			p.ID,
			string(p.Gender),
			strconv.FormatFloat(p.HeightCm, 'f', -1, 64),
			strconv.FormatFloat(p.WeightKg, 'f', -1, 64),
			strconv.Itoa(p.AgeYears),
			strconv.FormatBool(p.HasDiabetes),
			strconv.FormatBool(p.HasKidneyFailure),
			strconv.FormatBool(p.HasRefeedingRisk),
			strconv.FormatFloat(p.BMI, 'f', -1, 64),
			strconv.FormatFloat(p.IdealWeight, 'f', -1, 64),
			strconv.FormatFloat(p.AdjustedWeight, 'f', -1, 64),
			strconv.FormatFloat(p.CalculationWeight, 'f', -1, 64),
			p.CreatedAt.UTC().Format(time.RFC3339Nano),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write patient csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush patient csv: %w", err)
	}
	return nil
}

// decodePatientsCSV reads the biometric columns; derived columns are ignored.
func decodePatientsCSV(r io.Reader) ([]model.Patient, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read patient csv: %w", err)
	}
	if len(records) <= 1 {
		return nil, fmt.Errorf("patient csv contains no data rows")
	}
	out := make([]model.Patient, 0, len(records)-1)
	for i := 1; i < len(records); i++ {
		row := records[i]
		if len(row) < 8 {
			return nil, fmt.Errorf("csv row %d has %d columns, expected at least 8", i+1, len(row))
		}
		height, err := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("csv row %d height: %w", i+1, err)
		}
		weight, err := strconv.ParseFloat(strings.TrimSpace(row[3]), 64)
		if err != nil {
			return nil, fmt.Errorf("csv row %d weight: %w", i+1, err)
		}
		age, err := strconv.Atoi(strings.TrimSpace(row[4]))
		if err != nil {
			return nil, fmt.Errorf("csv row %d age: %w", i+1, err)
		}
		p := model.Patient{
			ID:       strings.TrimSpace(row[0]),
			Gender:   model.Gender(strings.ToLower(strings.TrimSpace(row[1]))),
			HeightCm: height,
			WeightKg: weight,
			AgeYears: age,
		}
		flags := []*bool{&p.HasDiabetes, &p.HasKidneyFailure, &p.HasRefeedingRisk}
		for j, dst := range flags {
			v, err := strconv.ParseBool(strings.TrimSpace(row[5+j]))
			if err != nil {
				return nil, fmt.Errorf("csv row %d %s: %w", i+1, patientCSVHeader[5+j], err)
			}
			*dst = v
		}
		if len(row) > 12 && strings.TrimSpace(row[12]) != "" {
			created, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(row[12]))
			if err != nil {
				return nil, fmt.Errorf("csv row %d created_at: %w", i+1, err)
			}
			p.CreatedAt = created
		}
		out = append(out, p)
	}
	return out, nil
}

package service

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/saadjs/nutricu/internal/catalog"
	"github.com/saadjs/nutricu/internal/model"
)

type MixtureInput struct {
	Name              string
	CaloriesPer1000ml float64
	ProteinPer1000ml  float64
	IsDiabetic        bool
	IsSemiElemental   bool
}

func InputFromMixture(m model.Mixture) MixtureInput {
	return MixtureInput{
		Name:              m.Name,
		CaloriesPer1000ml: m.CaloriesPer1000ml,
		ProteinPer1000ml:  m.ProteinPer1000ml,
		IsDiabetic:        m.IsDiabetic,
		IsSemiElemental:   m.IsSemiElemental,
	}
}

func validateMixture(in MixtureInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("mixture name is required")
	}
	if err := validatePositiveFloat("calories per 1000 ml", in.CaloriesPer1000ml); err != nil {
		return err
	}
	return validatePositiveFloat("protein per 1000 ml", in.ProteinPer1000ml)
}

// AddMixture stores a user mixture under the next free id. User ids start
// above the bundled catalog range.
func AddMixture(db *sql.DB, in MixtureInput) (model.Mixture, error) {
	if err := validateMixture(in); err != nil {
		return model.Mixture{}, err
	}
	name := strings.TrimSpace(in.Name)
	exists, err := MixtureNameExists(db, name, 0)
	if err != nil {
		return model.Mixture{}, err
	}
	if exists {
		return model.Mixture{}, fmt.Errorf("mixture with name %q already exists", name)
	}
	id, err := nextMixtureID(db)
	if err != nil {
		return model.Mixture{}, err
	}
	m := model.Mixture{
		ID:                id,
		Name:              name,
		NameNorm:          normalizeName(name),
		CaloriesPer1000ml: in.CaloriesPer1000ml,
		ProteinPer1000ml:  in.ProteinPer1000ml,
		IsDiabetic:        in.IsDiabetic,
		IsSemiElemental:   in.IsSemiElemental,
	}
	if err := insertMixture(db, m); err != nil {
		return model.Mixture{}, err
	}
	return m, nil
}

// UpdateMixture edits any mixture, bundled ones included. The default flag is
// kept as stored.
func UpdateMixture(db *sql.DB, id int64, in MixtureInput) (model.Mixture, error) {
	existing, err := GetMixture(db, id)
	if err != nil {
		return model.Mixture{}, err
	}
	if err := validateMixture(in); err != nil {
		return model.Mixture{}, err
	}
	name := strings.TrimSpace(in.Name)
	exists, err := MixtureNameExists(db, name, id)
	if err != nil {
		return model.Mixture{}, err
	}
	if exists {
		return model.Mixture{}, fmt.Errorf("mixture with name %q already exists", name)
	}
	m := model.Mixture{
		ID:                id,
		Name:              name,
		NameNorm:          normalizeName(name),
		CaloriesPer1000ml: in.CaloriesPer1000ml,
		ProteinPer1000ml:  in.ProteinPer1000ml,
		IsDiabetic:        in.IsDiabetic,
		IsSemiElemental:   in.IsSemiElemental,
		IsDefault:         existing.IsDefault,
	}
	if err := updateMixture(db, m); err != nil {
		return model.Mixture{}, err
	}
	return m, nil
}

func GetMixture(db *sql.DB, id int64) (*model.Mixture, error) {
	m, err := scanMixture(db.QueryRow(mixtureSelectBase()+` WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("mixture %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get mixture %d: %w", id, err)
	}
	return m, nil
}

func ListMixtures(db *sql.DB) ([]model.Mixture, error) {
	rows, err := db.Query(mixtureSelectBase() + ` ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list mixtures: %w", err)
	}
	defer rows.Close()
	out := make([]model.Mixture, 0)
	for rows.Next() {
		m, err := scanMixture(rows)
		if err != nil {
			return nil, fmt.Errorf("scan mixture: %w", err)
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mixtures: %w", err)
	}
	return out, nil
}

func DeleteMixture(db *sql.DB, id int64) error {
	res, err := db.Exec(`DELETE FROM mixtures WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete mixture %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete mixture rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("mixture %d not found", id)
	}
	return nil
}

// MixtureNameExists compares names case-insensitively. A non-zero excludeID
// ignores that mixture, so a rename to its own name is allowed.
func MixtureNameExists(db *sql.DB, name string, excludeID int64) (bool, error) {
	return mixtureNameExists(db, name, excludeID)
}

func mixtureNameExists(q queryer, name string, excludeID int64) (bool, error) {
	var one int
	err := q.QueryRow(`SELECT 1 FROM mixtures WHERE name_norm = ? AND id != ?`, normalizeName(name), excludeID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check mixture name %q: %w", name, err)
	}
	return true, nil
}

// ResolveMixtures returns the mixtures for ids in the given order. Unknown
// and repeated ids are skipped.
func ResolveMixtures(db *sql.DB, ids []int64) ([]model.Mixture, error) {
	out := make([]model.Mixture, 0, len(ids))
	seen := map[int64]bool{}
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		m, err := scanMixture(db.QueryRow(mixtureSelectBase()+` WHERE id = ?`, id))
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("resolve mixture %d: %w", id, err)
		}
		out = append(out, *m)
	}
	return out, nil
}

// SeedDefaultMixtures inserts bundled mixtures that were never seeded before.
// Each seeded id is logged, so a default the user deleted or renamed is left
// alone on later runs.
func SeedDefaultMixtures(db *sql.DB) (int, error) {
	defaults, err := catalog.Defaults()
	if err != nil {
		return 0, err
	}
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	added := 0
	for _, m := range defaults {
		var one int
		err := tx.QueryRow(`SELECT 1 FROM mixture_seeds WHERE mixture_id = ?`, m.ID).Scan(&one)
		if err == nil {
			continue
		}
		if err != sql.ErrNoRows {
			return 0, fmt.Errorf("check seeded mixture %d: %w", m.ID, err)
		}
		m.NameNorm = normalizeName(m.Name)
		res, err := tx.Exec(`
INSERT OR IGNORE INTO mixtures(id, name, name_norm, calories_per_1000ml, protein_per_1000ml, is_diabetic, is_semi_elemental, is_default)
VALUES(?, ?, ?, ?, ?, ?, ?, 1)
`, m.ID, m.Name, m.NameNorm, m.CaloriesPer1000ml, m.ProteinPer1000ml, boolInt(m.IsDiabetic), boolInt(m.IsSemiElemental))
		if err != nil {
			return 0, fmt.Errorf("seed default mixture %d: %w", m.ID, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
		if _, err := tx.Exec(`INSERT INTO mixture_seeds(mixture_id) VALUES(?)`, m.ID); err != nil {
			return 0, fmt.Errorf("record seeded mixture %d: %w", m.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit seed tx: %w", err)
	}
	return added, nil
}

func nextMixtureID(q queryer) (int64, error) {
	var maxID sql.NullInt64
	if err := q.QueryRow(`SELECT MAX(id) FROM mixtures`).Scan(&maxID); err != nil {
		return 0, fmt.Errorf("resolve next mixture id: %w", err)
	}
	next := catalog.MaxDefaultID
	if maxID.Valid && maxID.Int64 > next {
		next = maxID.Int64
	}
	return next + 1, nil
}

func insertMixture(q queryer, m model.Mixture) error {
	_, err := q.Exec(`
INSERT INTO mixtures(id, name, name_norm, calories_per_1000ml, protein_per_1000ml, is_diabetic, is_semi_elemental, is_default)
VALUES(?, ?, ?, ?, ?, ?, ?, ?)
`, m.ID, m.Name, normalizeName(m.Name), m.CaloriesPer1000ml, m.ProteinPer1000ml, boolInt(m.IsDiabetic), boolInt(m.IsSemiElemental), boolInt(m.IsDefault))
	if err != nil {
		return fmt.Errorf("insert mixture %q: %w", m.Name, err)
	}
	return nil
}

func updateMixture(q queryer, m model.Mixture) error {
	_, err := q.Exec(`
UPDATE mixtures
SET name = ?, name_norm = ?, calories_per_1000ml = ?, protein_per_1000ml = ?,
    is_diabetic = ?, is_semi_elemental = ?, is_default = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?
`, m.Name, normalizeName(m.Name), m.CaloriesPer1000ml, m.ProteinPer1000ml, boolInt(m.IsDiabetic), boolInt(m.IsSemiElemental), boolInt(m.IsDefault), m.ID)
	if err != nil {
		return fmt.Errorf("update mixture %d: %w", m.ID, err)
	}
	return nil
}

func mixtureSelectBase() string {
	return `
SELECT id, name, name_norm, calories_per_1000ml, protein_per_1000ml, is_diabetic, is_semi_elemental, is_default
FROM mixtures`
}

func scanMixture(row rowScanner) (*model.Mixture, error) {
	var m model.Mixture
	if err := row.Scan(
		&m.ID,
		&m.Name,
		&m.NameNorm,
		&m.CaloriesPer1000ml,
		&m.ProteinPer1000ml,
		&m.IsDiabetic,
		&m.IsSemiElemental,
		&m.IsDefault,
	); err != nil {
		return nil, err
	}
	return &m, nil
}

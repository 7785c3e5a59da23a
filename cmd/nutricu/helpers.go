package nutricu

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/saadjs/nutricu/internal/app"
	"github.com/saadjs/nutricu/internal/db"
	"github.com/saadjs/nutricu/internal/nutrition"
	"github.com/saadjs/nutricu/internal/service"
)

func resolveDBPath() (string, error) {
	if cfg != nil && cfg.DBPath != "" {
		return cfg.DBPath, nil
	}
	return app.DefaultDBPath()
}

// withDB opens the database, applies pending migrations and seeds bundled
// mixtures before running fn.
func withDB(run func(*sql.DB) error) error {
	path, err := resolveDBPath()
	if err != nil {
		return err
	}
	if err := app.EnsureDBDir(path); err != nil {
		return err
	}
	sqldb, applied, err := db.OpenMigrated(path)
	if err != nil {
		return err
	}
	defer sqldb.Close()

	if applied > 0 {
		logger.Info().Int("applied", applied).Int("version", db.LatestVersion()).Str("db", path).Msg("migrations applied")
	}
	added, err := service.SeedDefaultMixtures(sqldb)
	if err != nil {
		return err
	}
	if added > 0 {
		logger.Info().Int("added", added).Msg("default mixtures seeded")
	}
	return run(sqldb)
}

// localizer resolves the display language from config, then the stored
// setting, then the default.
func localizer(sqldb *sql.DB) (nutrition.Localizer, error) {
	stored, err := service.Language(sqldb)
	if err != nil {
		return nil, err
	}
	lang := messages.NormalizeLanguage(cfg.ResolveLanguage(stored))
	logger.Debug().Str("lang", lang).Msg("display language resolved")
	return messages.Localizer(lang), nil
}

func parseDay(value string) (int, error) {
	day, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || day < 1 || day > nutrition.PlanDays {
		return 0, fmt.Errorf("invalid day %q (expected 1-%d)", value, nutrition.PlanDays)
	}
	return day, nil
}

// parseDayMixture parses "D:M".
func parseDayMixture(value string) (int, int64, error) {
	dayPart, mixturePart, ok := strings.Cut(value, ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid %q (expected DAY:MIXTURE)", value)
	}
	day, err := parseDay(dayPart)
	if err != nil {
		return 0, 0, err
	}
	id, err := service.ParseMixtureID(mixturePart)
	if err != nil {
		return 0, 0, err
	}
	return day, id, nil
}

// parseDayMixtureValue parses "D:M=N".
func parseDayMixtureValue(value string) (int, int64, int, error) {
	key, raw, ok := strings.Cut(value, "=")
	if !ok {
		return 0, 0, 0, fmt.Errorf("invalid %q (expected DAY:MIXTURE=VALUE)", value)
	}
	day, id, err := parseDayMixture(key)
	if err != nil {
		return 0, 0, 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid value in %q", value)
	}
	return day, id, n, nil
}

// reportPath turns a directory into dir/nutrition_calculation_<id>.txt.
func reportPath(out, patientID string) string {
	if st, err := os.Stat(out); err == nil && st.IsDir() {
		safe := strings.NewReplacer("/", "_", `\`, "_").Replace(patientID)
		return filepath.Join(out, fmt.Sprintf("nutrition_calculation_%s.txt", safe))
	}
	return out
}

func writeReport(out, patientID, text string) (string, error) {
	path := reportPath(out, patientID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	logger.Info().Str("path", path).Str("patient", patientID).Msg("report written")
	return path, nil
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

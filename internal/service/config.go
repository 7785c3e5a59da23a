package service

import (
	"database/sql"
	"fmt"
	"strings"
)

// ConfigLanguage holds the persisted display language.
const ConfigLanguage = "language"

var knownConfigKeys = map[string]bool{
	ConfigLanguage: true,
}

type ConfigEntry struct {
	Key       string `json:"key"`
	Value     string `json:"value"`
	UpdatedAt string `json:"updated_at"`
}

func configKey(key string) (string, error) {
	key = strings.TrimSpace(strings.ToLower(key))
	if key == "" {
		return "", fmt.Errorf("config key is required")
	}
	if !knownConfigKeys[key] {
		return "", fmt.Errorf("unknown config key %q", key)
	}
	return key, nil
}

func SetConfig(db *sql.DB, key, value string) error {
	key, err := configKey(key)
	if err != nil {
		return err
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return fmt.Errorf("%s value is required", key)
	}
	_, err = db.Exec(`
INSERT INTO app_config(key, value, updated_at)
VALUES(?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at
`, key, value)
	if err != nil {
		return fmt.Errorf("set config %q: %w", key, err)
	}
	return nil
}

// GetConfig returns the stored value and whether one exists.
func GetConfig(db *sql.DB, key string) (string, bool, error) {
	key, err := configKey(key)
	if err != nil {
		return "", false, err
	}
	var value string
	err = db.QueryRow(`SELECT value FROM app_config WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get config %q: %w", key, err)
	}
	return value, true, nil
}

// UnsetConfig removes key. Removing an unset key is not an error.
func UnsetConfig(db *sql.DB, key string) error {
	key, err := configKey(key)
	if err != nil {
		return err
	}
	if _, err := db.Exec(`DELETE FROM app_config WHERE key = ?`, key); err != nil {
		return fmt.Errorf("unset config %q: %w", key, err)
	}
	return nil
}

func ListConfig(db *sql.DB) ([]ConfigEntry, error) {
	rows, err := db.Query(`SELECT key, value, updated_at FROM app_config ORDER BY key ASC`)
	if err != nil {
		return nil, fmt.Errorf("list config: %w", err)
	}
	defer rows.Close()
	out := make([]ConfigEntry, 0)
	for rows.Next() {
		var e ConfigEntry
		if err := rows.Scan(&e.Key, &e.Value, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan config: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate config: %w", err)
	}
	return out, nil
}

// SetLanguage persists lang lowercased. Callers validate it against the
// loaded locales.
func SetLanguage(db *sql.DB, lang string) error {
	return SetConfig(db, ConfigLanguage, strings.ToLower(lang))
}

// Language returns the persisted display language, or "" when unset.
func Language(db *sql.DB) (string, error) {
	lang, _, err := GetConfig(db, ConfigLanguage)
	return lang, err
}

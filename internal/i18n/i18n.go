package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/saadjs/nutricu/internal/nutrition"
)

const (
	LangRU = "ru"
	LangEN = "en"
)

// Locales stores the bundled message catalogs, one JSON object per language.
//
//go:embed locales/*.json
var Locales embed.FS

type Manager struct {
	defaultLanguage string
	locales         map[string]map[string]string
	supported       []string
}

// NewManager loads the bundled locales.
func NewManager(defaultLanguage string) (*Manager, error) {
	sub, err := fs.Sub(Locales, "locales")
	if err != nil {
		return nil, fmt.Errorf("open bundled locales: %w", err)
	}
	return NewManagerFS(defaultLanguage, sub)
}

// NewManagerFS loads every *.json file at the root of fsys as a locale named
// after the file.
func NewManagerFS(defaultLanguage string, fsys fs.FS) (*Manager, error) {
	manager := &Manager{
		locales: map[string]map[string]string{},
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read locales dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".json" {
			continue
		}

		language := strings.TrimSuffix(strings.ToLower(entry.Name()), path.Ext(entry.Name()))
		content, err := fs.ReadFile(fsys, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", language, err)
		}

		messages := map[string]string{}
		if err := json.Unmarshal(content, &messages); err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", language, err)
		}
		if len(messages) == 0 {
			return nil, fmt.Errorf("locale %s is empty", language)
		}

		manager.locales[language] = messages
		manager.supported = append(manager.supported, language)
	}

	if len(manager.supported) == 0 {
		return nil, fmt.Errorf("no locales found")
	}
	if _, ok := manager.locales[LangRU]; !ok {
		return nil, fmt.Errorf("required locale %q missing", LangRU)
	}
	if _, ok := manager.locales[LangEN]; !ok {
		return nil, fmt.Errorf("required locale %q missing", LangEN)
	}

	sort.Strings(manager.supported)
	manager.defaultLanguage = LangRU
	manager.defaultLanguage = manager.NormalizeLanguage(defaultLanguage)
	return manager, nil
}

func (manager *Manager) DefaultLanguage() string {
	return manager.defaultLanguage
}

func (manager *Manager) SupportedLanguages() []string {
	result := make([]string, len(manager.supported))
	copy(result, manager.supported)
	return result
}

func (manager *Manager) IsSupported(raw string) bool {
	return manager.isSupported(normalizeLanguageTag(raw))
}

func (manager *Manager) NormalizeLanguage(raw string) string {
	normalized := normalizeLanguageTag(raw)
	if normalized == "" {
		return manager.defaultLanguage
	}
	if manager.isSupported(normalized) {
		return normalized
	}
	return manager.defaultLanguage
}

// Translate looks key up in language, then the default language, and falls
// back to the key itself.
func (manager *Manager) Translate(language string, key string) string {
	if value, ok := manager.locales[manager.NormalizeLanguage(language)][key]; ok && strings.TrimSpace(value) != "" {
		return value
	}
	if value, ok := manager.locales[manager.defaultLanguage][key]; ok && strings.TrimSpace(value) != "" {
		return value
	}
	return key
}

func (manager *Manager) Translatef(language string, key string, args ...any) string {
	return fmt.Sprintf(manager.Translate(language, key), args...)
}

// Localizer binds Translate to one language for the report formatter.
func (manager *Manager) Localizer(language string) nutrition.Localizer {
	language = manager.NormalizeLanguage(language)
	return func(key string) string {
		return manager.Translate(language, key)
	}
}

func (manager *Manager) isSupported(language string) bool {
	if language == "" {
		return false
	}
	_, ok := manager.locales[language]
	return ok
}

func normalizeLanguageTag(raw string) string {
	language := strings.ToLower(strings.TrimSpace(raw))
	if language == "" {
		return ""
	}
	language = strings.ReplaceAll(language, "_", "-")
	if separator := strings.Index(language, "-"); separator >= 0 {
		language = language[:separator]
	}
	return language
}

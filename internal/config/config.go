package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	EnvPrefix       = "NUTRICU"
	DefaultLanguage = "ru"
	DefaultLogLevel = "warn"
)

// Keys double as config file keys and, upper-cased with EnvPrefix, as
// environment variables (NUTRICU_DB, NUTRICU_LANG, NUTRICU_LOG_LEVEL).
const (
	KeyDB       = "db"
	KeyLanguage = "lang"
	KeyLogLevel = "log_level"
)

type Config struct {
	DBPath   string `mapstructure:"db"`
	Language string `mapstructure:"lang"`
	LogLevel string `mapstructure:"log_level"`
}

type Options struct {
	// ConfigFile must exist when set. DefaultConfigFile is read only if present.
	ConfigFile        string
	DefaultConfigFile string
	// Overrides carries explicitly set command-line flags, keyed like the file.
	Overrides map[string]string
}

// Load merges defaults, the YAML config file, environment and overrides, in
// increasing order of precedence.
func Load(opts Options) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault(KeyDB, "")
	v.SetDefault(KeyLanguage, "")
	v.SetDefault(KeyLogLevel, DefaultLogLevel)

	for _, key := range []string{KeyDB, KeyLanguage, KeyLogLevel} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	switch {
	case strings.TrimSpace(opts.ConfigFile) != "":
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", opts.ConfigFile, err)
		}
	case strings.TrimSpace(opts.DefaultConfigFile) != "":
		if _, err := os.Stat(opts.DefaultConfigFile); err == nil {
			v.SetConfigFile(opts.DefaultConfigFile)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config file %s: %w", opts.DefaultConfigFile, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat config file %s: %w", opts.DefaultConfigFile, err)
		}
	}

	for key, value := range opts.Overrides {
		v.Set(key, value)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.DBPath = strings.TrimSpace(cfg.DBPath)
	cfg.Language = strings.ToLower(strings.TrimSpace(cfg.Language))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel; an empty value means DefaultLogLevel.
func (c *Config) Level() (zerolog.Level, error) {
	raw := c.LogLevel
	if raw == "" {
		raw = DefaultLogLevel
	}
	level, err := zerolog.ParseLevel(raw)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return level, nil
}

// ResolveLanguage picks the configured language, then the stored one, then
// DefaultLanguage.
func (c *Config) ResolveLanguage(stored string) string {
	if c.Language != "" {
		return c.Language
	}
	if stored = strings.ToLower(strings.TrimSpace(stored)); stored != "" {
		return stored
	}
	return DefaultLanguage
}

package nutricu

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/saadjs/nutricu/internal/app"
	"github.com/saadjs/nutricu/internal/config"
	"github.com/saadjs/nutricu/internal/i18n"
)

var (
	dbPath     string
	configFile string
	langFlag   string
	logLevel   string
)

// Populated by loadRuntime before any command runs.
var (
	cfg      *config.Config
	logger   = zerolog.Nop()
	messages *i18n.Manager
)

var rootCmd = &cobra.Command{
	Use:               "nutricu",
	Short:             "nutricu plans enteral nutrition for ICU patients",
	Long:              "nutricu computes anthropometry, a 7-day calorie and protein ramp, and mixture volumes for ICU patients, and keeps patients and mixtures in a local database.",
	SilenceUsage:      true,
	PersistentPreRunE: loadRuntime,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to SQLite database (env NUTRICU_DB)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&langFlag, "lang", "", "Display language: ru or en (env NUTRICU_LANG)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (env NUTRICU_LOG_LEVEL)")
}

func loadRuntime(cmd *cobra.Command, args []string) error {
	overrides := map[string]string{}
	if cmd.Flags().Changed("db") {
		overrides[config.KeyDB] = dbPath
	}
	if cmd.Flags().Changed("lang") {
		overrides[config.KeyLanguage] = langFlag
	}
	if cmd.Flags().Changed("log-level") {
		overrides[config.KeyLogLevel] = logLevel
	}
	defaultConfig, err := app.DefaultConfigPath()
	if err != nil {
		defaultConfig = ""
	}
	loaded, err := config.Load(config.Options{
		ConfigFile:        configFile,
		DefaultConfigFile: defaultConfig,
		Overrides:         overrides,
	})
	if err != nil {
		return err
	}
	level, err := loaded.Level()
	if err != nil {
		return err
	}
	manager, err := i18n.NewManager(config.DefaultLanguage)
	if err != nil {
		return err
	}
	if loaded.Language != "" && !manager.IsSupported(loaded.Language) {
		return fmt.Errorf("unsupported language %q (supported: %v)", loaded.Language, manager.SupportedLanguages())
	}

	cfg = loaded
	messages = manager
	logger = newLogger(cmd.ErrOrStderr(), level)
	logger.Debug().Str("db", cfg.DBPath).Str("lang", cfg.Language).Msg("configuration loaded")
	return nil
}

func newLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: "15:04:05"}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

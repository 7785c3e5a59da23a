package nutricu

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saadjs/nutricu/internal/service"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage settings stored in the database",
}

var (
	cfgLanguage      string
	cfgUnsetLanguage bool
)

var configSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("language") {
			return fmt.Errorf("set at least one flag")
		}
		if !messages.IsSupported(cfgLanguage) {
			return fmt.Errorf("unsupported language %q (supported: %v)", cfgLanguage, messages.SupportedLanguages())
		}
		return withDB(func(sqldb *sql.DB) error {
			lang := messages.NormalizeLanguage(cfgLanguage)
			if err := service.SetLanguage(sqldb, lang); err != nil {
				return err
			}
			logger.Info().Str("language", lang).Msg("language stored")
			fmt.Fprintf(cmd.OutOrStdout(), "Stored language %s\n", lang)
			return nil
		})
	},
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset",
	Short: "Remove stored settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cfgUnsetLanguage {
			return fmt.Errorf("set at least one flag")
		}
		return withDB(func(sqldb *sql.DB) error {
			if err := service.UnsetConfig(sqldb, service.ConfigLanguage); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Removed stored language")
			return nil
		})
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show stored settings and the effective language",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			entries, err := service.ListConfig(sqldb)
			if err != nil {
				return err
			}
			stored := ""
			fmt.Fprintln(cmd.OutOrStdout(), "KEY\tVALUE\tUPDATED")
			for _, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", e.Key, e.Value, e.UpdatedAt)
				if e.Key == service.ConfigLanguage {
					stored = e.Value
				}
			}
			effective := messages.NormalizeLanguage(cfg.ResolveLanguage(stored))
			fmt.Fprintf(cmd.OutOrStdout(), "effective language\t%s\n", effective)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configSetCmd, configUnsetCmd, configGetCmd)
	configSetCmd.Flags().StringVar(&cfgLanguage, "language", "", "Display language stored for reports (ru or en)")
	configUnsetCmd.Flags().BoolVar(&cfgUnsetLanguage, "language", false, "Remove the stored display language")
}

package nutricu

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saadjs/nutricu/internal/service"
)

var doctorFix bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run data integrity checks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			report, err := service.RunDoctor(sqldb, doctorFix)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stale derived patient fields: %d\n", report.StalePatients)
			fmt.Fprintf(cmd.OutOrStdout(), "Invalid patient rows: %d\n", report.InvalidPatients)
			fmt.Fprintf(cmd.OutOrStdout(), "Invalid mixture rows: %d\n", report.InvalidMixtures)
			fmt.Fprintf(cmd.OutOrStdout(), "Duplicate mixture names: %d\n", report.DuplicateNames)
			if doctorFix {
				fmt.Fprintf(cmd.OutOrStdout(), "Fixed patients: %d\n", report.FixedPatients)
				logger.Info().Int("fixed", report.FixedPatients).Msg("doctor fixes applied")
			}
			if !report.Healthy() {
				return fmt.Errorf("doctor found integrity issues")
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Recompute stale derived patient fields")
}

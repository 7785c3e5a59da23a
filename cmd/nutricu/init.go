package nutricu

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize local nutricu database",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			path, err := resolveDBPath()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized nutricu database at %s\n", path)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

package nutricu

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saadjs/nutricu/internal/db"
)

// Set with -ldflags "-X github.com/saadjs/nutricu/cmd/nutricu.version=...".
var (
	version = "dev"
	commit  = "none"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version/build metadata",
	Run: func(cmd *cobra.Command, args []string) {
		printVersion(cmd)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func printVersion(cmd *cobra.Command) {
	fmt.Fprintf(cmd.OutOrStdout(), "nutricu %s (commit %s, schema v%d)\n", version, commit, db.LatestVersion())
}

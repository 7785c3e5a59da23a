package nutricu

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/saadjs/nutricu/internal/app"
	"github.com/saadjs/nutricu/internal/service"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Create, verify and restore database backups",
}

var (
	backupOut    string
	backupDir    string
	backupKeep   int
	backupFile   string
	restoreForce bool
)

func backupDirFor(dbFile string) string {
	if backupDir != "" {
		return backupDir
	}
	return app.DefaultBackupDir(dbFile)
}

var backupCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Write a consistent copy of the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbFile, err := resolveDBPath()
		if err != nil {
			return err
		}
		out := backupOut
		if out == "" {
			out = filepath.Join(backupDirFor(dbFile), service.BackupFileName(time.Now()))
		}
		return withDB(func(sqldb *sql.DB) error {
			info, err := service.CreateBackup(sqldb, out)
			if err != nil {
				return err
			}
			logger.Info().Str("path", info.Path).Int64("bytes", info.SizeBytes).Int("schema", info.SchemaVersion).Msg("backup created")
			fmt.Fprintf(cmd.OutOrStdout(), "Created backup: %s\n", info.Path)
			fmt.Fprintf(cmd.OutOrStdout(), "Checksum: %s\n", info.Checksum)
			return nil
		})
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backups, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbFile, err := resolveDBPath()
		if err != nil {
			return err
		}
		items, err := service.ListBackups(backupDirFor(dbFile))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "FILE\tSIZE\tCREATED\tCHECKSUM")
		for _, it := range items {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t%s\t%s\n", it.Path, it.SizeBytes, it.CreatedAt.Format(time.RFC3339), it.Checksum)
		}
		return nil
	},
}

var backupVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check a backup's checksum, integrity and schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		if backupFile == "" {
			return fmt.Errorf("--file is required")
		}
		info, err := service.VerifyBackup(backupFile)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Backup %s is valid (schema v%d, %d bytes)\n", info.Path, info.SchemaVersion, info.SizeBytes)
		return nil
	},
}

var backupPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove all but the newest backups",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbFile, err := resolveDBPath()
		if err != nil {
			return err
		}
		removed, err := service.PruneBackups(backupDirFor(dbFile), backupKeep)
		if err != nil {
			return err
		}
		for _, path := range removed {
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", path)
		}
		logger.Info().Int("removed", len(removed)).Int("keep", backupKeep).Msg("backups pruned")
		return nil
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Replace the database with a verified backup",
	RunE: func(cmd *cobra.Command, args []string) error {
		if backupFile == "" {
			return fmt.Errorf("--file is required")
		}
		dbFile, err := resolveDBPath()
		if err != nil {
			return err
		}
		if err := service.RestoreBackup(backupFile, dbFile, restoreForce); err != nil {
			return err
		}
		logger.Warn().Str("from", backupFile).Str("db", dbFile).Msg("database restored from backup")
		fmt.Fprintf(cmd.OutOrStdout(), "Restored backup from %s\n", backupFile)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.AddCommand(backupCreateCmd, backupListCmd, backupVerifyCmd, backupPruneCmd, backupRestoreCmd)

	backupCreateCmd.Flags().StringVar(&backupOut, "out", "", "Backup output file path")
	for _, c := range []*cobra.Command{backupCreateCmd, backupListCmd, backupPruneCmd} {
		c.Flags().StringVar(&backupDir, "dir", "", "Backup directory (default: backups/ next to the database)")
	}
	backupPruneCmd.Flags().IntVar(&backupKeep, "keep", 5, "Number of newest backups to keep")
	backupVerifyCmd.Flags().StringVar(&backupFile, "file", "", "Backup .db file path")
	backupRestoreCmd.Flags().StringVar(&backupFile, "file", "", "Backup .db file path")
	backupRestoreCmd.Flags().BoolVar(&restoreForce, "force", false, "Overwrite the existing database")
}

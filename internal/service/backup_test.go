package service_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/saadjs/nutricu/internal/db"
	"github.com/saadjs/nutricu/internal/service"
)

func TestBackupCreateListRestore(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "nutricu.db")
	sqldb := openTestDB(t, dbPath)
	if _, err := service.AddPatient(sqldb, adultMale("icu-7")); err != nil {
		t.Fatalf("add patient: %v", err)
	}

	backupDir := filepath.Join(dir, "backups")
	out := filepath.Join(backupDir, service.BackupFileName(time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC)))
	if !strings.HasSuffix(out, "nutricu-20260301-083000.db") {
		t.Fatalf("unexpected backup name %s", out)
	}
	info, err := service.CreateBackup(sqldb, out)
	if err != nil {
		t.Fatalf("create backup: %v", err)
	}
	if info.Checksum == "" || info.SizeBytes == 0 || info.SchemaVersion != db.LatestVersion() {
		t.Fatalf("expected checksum, size and schema version, got %+v", info)
	}
	if _, err := service.CreateBackup(sqldb, out); err == nil {
		t.Fatalf("expected existing backup file not overwritten")
	}

	list, err := service.ListBackups(backupDir)
	if err != nil || len(list) != 1 || list[0].Checksum != info.Checksum {
		t.Fatalf("expected one listed backup, got %+v (%v)", list, err)
	}
	if !list[0].CreatedAt.Equal(time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC)) {
		t.Fatalf("expected created time from file name, got %s", list[0].CreatedAt)
	}
	if empty, err := service.ListBackups(filepath.Join(dir, "missing")); err != nil || len(empty) != 0 {
		t.Fatalf("expected empty list for missing dir, got %+v (%v)", empty, err)
	}

	if err := service.RestoreBackup(out, dbPath, false); err == nil {
		t.Fatalf("expected restore onto existing db refused without force")
	}
	restored := filepath.Join(dir, "restored.db")
	if err := service.RestoreBackup(out, restored, false); err != nil {
		t.Fatalf("restore backup: %v", err)
	}
	if _, err := os.Stat(restored + ".restore"); !os.IsNotExist(err) {
		t.Fatalf("expected temporary restore file removed, got %v", err)
	}
	rdb := openTestDB(t, restored)
	if exists, err := service.PatientExists(rdb, "icu-7"); err != nil || !exists {
		t.Fatalf("expected patient in restored db, exists=%t err=%v", exists, err)
	}

	if err := os.WriteFile(out+".sha256", []byte("deadbeef\n"), 0o644); err != nil {
		t.Fatalf("tamper checksum: %v", err)
	}
	if err := service.RestoreBackup(out, filepath.Join(dir, "again.db"), true); err == nil || !strings.Contains(err.Error(), "checksum") {
		t.Fatalf("expected checksum mismatch, got %v", err)
	}
}

func TestVerifyBackupRejectsNewerSchema(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	sqldb := openTestDB(t, filepath.Join(dir, "nutricu.db"))
	if _, err := sqldb.Exec(`INSERT INTO schema_migrations(version, name) VALUES(?, 'future')`, db.LatestVersion()+1); err != nil {
		t.Fatalf("simulate newer schema: %v", err)
	}

	out := filepath.Join(dir, "future.db")
	if _, err := service.CreateBackup(sqldb, out); err != nil {
		t.Fatalf("create backup: %v", err)
	}
	if _, err := service.VerifyBackup(out); err == nil || !strings.Contains(err.Error(), "newer than supported") {
		t.Fatalf("expected newer schema rejected, got %v", err)
	}
}

func TestPruneBackupsKeepsNewest(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	sqldb := openTestDB(t, filepath.Join(dir, "nutricu.db"))
	backupDir := filepath.Join(dir, "backups")

	base := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		out := filepath.Join(backupDir, service.BackupFileName(base.Add(time.Duration(i)*time.Hour)))
		if _, err := service.CreateBackup(sqldb, out); err != nil {
			t.Fatalf("create backup %d: %v", i, err)
		}
	}

	removed, err := service.PruneBackups(backupDir, 1)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if len(removed) != 2 {
		t.Fatalf("expected two backups removed, got %v", removed)
	}
	left, err := service.ListBackups(backupDir)
	if err != nil || len(left) != 1 || !strings.HasSuffix(left[0].Path, "nutricu-20260510-140000.db") {
		t.Fatalf("expected newest backup kept, got %+v (%v)", left, err)
	}
	if _, err := os.Stat(removed[0] + ".sha256"); !os.IsNotExist(err) {
		t.Fatalf("expected checksum of pruned backup removed")
	}
	if _, err := service.PruneBackups(backupDir, -1); err == nil {
		t.Fatalf("expected negative keep rejected")
	}
}

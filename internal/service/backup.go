package service

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/saadjs/nutricu/internal/db"
)

const (
	backupPrefix    = "nutricu-"
	backupExt       = ".db"
	checksumExt     = ".sha256"
	backupTimestamp = "20060102-150405"
)

type BackupInfo struct {
	Path          string    `json:"path"`
	Checksum      string    `json:"checksum"`
	SchemaVersion int       `json:"schema_version"`
	CreatedAt     time.Time `json:"created_at"`
	SizeBytes     int64     `json:"size_bytes"`
}

// BackupFileName names a backup taken at t.
func BackupFileName(t time.Time) string {
	return backupPrefix + t.UTC().Format(backupTimestamp) + backupExt
}

// CreateBackup writes a consistent copy of the open database to outPath with
// VACUUM INTO and stores its SHA-256 next to it.
func CreateBackup(sqldb *sql.DB, outPath string) (BackupInfo, error) {
	if strings.TrimSpace(outPath) == "" {
		return BackupInfo{}, fmt.Errorf("backup output path is required")
	}
	if _, err := os.Stat(outPath); err == nil {
		return BackupInfo{}, fmt.Errorf("backup %s already exists", outPath)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return BackupInfo{}, fmt.Errorf("create backup directory: %w", err)
	}
	if _, err := sqldb.Exec(`VACUUM INTO ?`, outPath); err != nil {
		return BackupInfo{}, fmt.Errorf("write backup: %w", err)
	}
	checksum, err := fileSHA256(outPath)
	if err != nil {
		return BackupInfo{}, err
	}
	if err := os.WriteFile(outPath+checksumExt, []byte(checksum+"\n"), 0o644); err != nil {
		return BackupInfo{}, fmt.Errorf("write checksum file: %w", err)
	}
	version, err := schemaVersion(sqldb)
	if err != nil {
		return BackupInfo{}, err
	}
	st, err := os.Stat(outPath)
	if err != nil {
		return BackupInfo{}, fmt.Errorf("stat backup: %w", err)
	}
	return BackupInfo{Path: outPath, Checksum: checksum, SchemaVersion: version, CreatedAt: st.ModTime(), SizeBytes: st.Size()}, nil
}

// VerifyBackup checks the stored checksum when present, then opens the backup
// and requires a passing integrity check and a schema this build can read.
func VerifyBackup(path string) (BackupInfo, error) {
	st, err := os.Stat(path)
	if err != nil {
		return BackupInfo{}, fmt.Errorf("stat backup: %w", err)
	}
	checksum, err := fileSHA256(path)
	if err != nil {
		return BackupInfo{}, err
	}
	if expected, err := os.ReadFile(path + checksumExt); err == nil {
		if strings.TrimSpace(string(expected)) != checksum {
			return BackupInfo{}, fmt.Errorf("backup checksum mismatch")
		}
	}

	bdb, err := db.Open(path)
	if err != nil {
		return BackupInfo{}, err
	}
	defer bdb.Close()
	var result string
	if err := bdb.QueryRow(`PRAGMA integrity_check`).Scan(&result); err != nil {
		return BackupInfo{}, fmt.Errorf("backup integrity check: %w", err)
	}
	if result != "ok" {
		return BackupInfo{}, fmt.Errorf("backup integrity check failed: %s", result)
	}
	version, err := schemaVersion(bdb)
	if err != nil {
		return BackupInfo{}, err
	}
	if version > db.LatestVersion() {
		return BackupInfo{}, fmt.Errorf("backup schema v%d is newer than supported v%d", version, db.LatestVersion())
	}
	return BackupInfo{Path: path, Checksum: checksum, SchemaVersion: version, CreatedAt: st.ModTime(), SizeBytes: st.Size()}, nil
}

// RestoreBackup verifies backupPath and replaces dbPath with it. The copy is
// written beside dbPath and renamed into place.
func RestoreBackup(backupPath, dbPath string, force bool) error {
	if strings.TrimSpace(backupPath) == "" || strings.TrimSpace(dbPath) == "" {
		return fmt.Errorf("backup path and db path are required")
	}
	if !force {
		if _, err := os.Stat(dbPath); err == nil {
			return fmt.Errorf("target db already exists; use --force to overwrite")
		}
	}
	if _, err := VerifyBackup(backupPath); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("create db directory: %w", err)
	}
	tmp := dbPath + ".restore"
	if err := copyFile(backupPath, tmp); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, dbPath); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace database: %w", err)
	}
	return nil
}

// ListBackups returns the backups in dir, newest first. A missing dir has no
// backups.
func ListBackups(dir string) ([]BackupInfo, error) {
	files, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return []BackupInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read backup dir: %w", err)
	}
	out := make([]BackupInfo, 0)
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), backupExt) {
			continue
		}
		full := filepath.Join(dir, f.Name())
		st, err := os.Stat(full)
		if err != nil {
			continue
		}
		checksum := ""
		if b, err := os.ReadFile(full + checksumExt); err == nil {
			checksum = strings.TrimSpace(string(b))
		}
		out = append(out, BackupInfo{Path: full, Checksum: checksum, CreatedAt: backupTime(f.Name(), st.ModTime()), SizeBytes: st.Size()})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// PruneBackups keeps the newest keep backups in dir and removes the rest with
// their checksum files. It returns the removed paths.
func PruneBackups(dir string, keep int) ([]string, error) {
	if keep < 0 {
		return nil, fmt.Errorf("keep must be >= 0")
	}
	items, err := ListBackups(dir)
	if err != nil {
		return nil, err
	}
	removed := make([]string, 0)
	for i := keep; i < len(items); i++ {
		path := items[i].Path
		if err := os.Remove(path); err != nil {
			return removed, fmt.Errorf("remove backup %s: %w", path, err)
		}
		if err := os.Remove(path + checksumExt); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("remove checksum %s: %w", path, err)
		}
		removed = append(removed, path)
	}
	return removed, nil
}

// backupTime prefers the timestamp in a generated file name over mtime.
func backupTime(name string, modTime time.Time) time.Time {
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, backupPrefix), backupExt)
	if t, err := time.Parse(backupTimestamp, stamp); err == nil {
		return t
	}
	return modTime
}

func schemaVersion(q queryer) (int, error) {
	var version int
	if err := q.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source file: %w", err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create destination file: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy file: %w", err)
	}
	if err := out.Sync(); err != nil {
		return fmt.Errorf("sync destination file: %w", err)
	}
	return nil
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file for checksum: %w", err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/hazyhaar/chartkeep/isoweek"
)

// backup checkpoints the WAL and byte-copies the week store to a new backup
// artifact named from (week, now) at second resolution. Called with the
// week lock held, before any mutation; a failure here aborts the ingest.
//
// Two ingests of the same week inside the same second produce the same
// backup name; the second copy overwrites a byte-identical first, which is
// harmless.
func (c *Catalog) backup(ctx context.Context, db *sql.DB, w isoweek.Week) (string, error) {
	// Fold WAL content back into the main file so the copy is complete.
	var busy, logPages, ckpt int
	if err := db.QueryRowContext(ctx, `PRAGMA wal_checkpoint(TRUNCATE)`).Scan(&busy, &logPages, &ckpt); err != nil {
		return "", fmt.Errorf("%w: checkpoint %s: %v", ErrIO, w, err)
	}

	if err := os.MkdirAll(c.backupDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: mkdir backups: %v", ErrIO, err)
	}

	dst := c.backupPath(w, c.now())
	if err := copyFile(c.StorePath(w), dst); err != nil {
		return "", fmt.Errorf("%w: backup %s: %v", ErrIO, w, err)
	}
	c.log.Info("backup created", "week", w.String(), "path", dst)
	return dst, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// ListBackups enumerates backup artifacts, oldest first. Filenames that do
// not parse are ignored: only typed (week, timestamp) pairs leave this
// boundary.
func (c *Catalog) ListBackups() ([]Backup, error) {
	entries, err := os.ReadDir(c.backupDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: list backups: %v", ErrIO, err)
	}

	var backups []Backup
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		b, ok := c.backupFromName(e.Name())
		if !ok {
			continue
		}
		backups = append(backups, b)
	}
	sort.Slice(backups, func(i, j int) bool { return backups[i].CreatedAt.Before(backups[j].CreatedAt) })
	return backups, nil
}

// backupFromName parses "backup_YYYY-WXX_YYYYMMDD_HHMMSS.db".
func (c *Catalog) backupFromName(name string) (Backup, bool) {
	if !strings.HasPrefix(name, backupPrefix) || !strings.HasSuffix(name, storeExt) {
		return Backup{}, false
	}
	s := strings.TrimSuffix(strings.TrimPrefix(name, backupPrefix), storeExt)
	// "YYYY-WXX" is always 8 bytes, then "_", then the 15-byte stamp.
	if len(s) != 8+1+len(backupStampLayout) || s[8] != '_' {
		return Backup{}, false
	}
	w, err := isoweek.Parse(s[:8])
	if err != nil {
		return Backup{}, false
	}
	at, err := time.ParseInLocation(backupStampLayout, s[9:], time.UTC)
	if err != nil {
		return Backup{}, false
	}
	return Backup{Week: w, CreatedAt: at, Path: filepath.Join(c.backupDir, name)}, true
}

// PruneBackups deletes every backup older than the policy's retention
// window relative to now. Individual deletion failures are collected and
// returned as warnings; one locked file never blocks the rest.
func (c *Catalog) PruneBackups(now time.Time, policy Policy) (int, []error) {
	backups, err := c.ListBackups()
	if err != nil {
		return 0, []error{err}
	}

	deleted := 0
	var warnings []error
	for _, b := range backups {
		if !policy.BackupExpired(b.CreatedAt, now) {
			continue
		}
		if err := os.Remove(b.Path); err != nil {
			warnings = append(warnings, fmt.Errorf("%w: delete backup %s: %v", ErrIO, filepath.Base(b.Path), err))
			continue
		}
		deleted++
	}
	if deleted > 0 {
		c.log.Info("old backups pruned", "deleted", deleted, "retention_days", policy.BackupRetentionDays)
	}
	return deleted, warnings
}

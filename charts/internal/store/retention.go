package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hazyhaar/chartkeep/isoweek"
)

// Policy decides which dated artifacts must be deleted. Pure configuration:
// both predicates are deterministic functions of their inputs, so retention
// is testable with any clock.
type Policy struct {
	BackupRetentionDays    int
	SnapshotRetentionWeeks int
}

// DefaultPolicy keeps backups for a week and snapshots for a year.
func DefaultPolicy() Policy {
	return Policy{BackupRetentionDays: 7, SnapshotRetentionWeeks: 52}
}

// BackupExpired reports whether a backup created at createdAt is past the
// retention window at now. A backup aged exactly BackupRetentionDays is
// retained, not deleted.
func (p Policy) BackupExpired(createdAt, now time.Time) bool {
	return createdAt.Before(now.AddDate(0, 0, -p.BackupRetentionDays))
}

// SnapshotExpired reports whether week w is past the retention window at
// now, by calendar-week arithmetic: the newest SnapshotRetentionWeeks
// weeks (the current week included) are retained.
func (p Policy) SnapshotExpired(w isoweek.Week, now time.Time) bool {
	return isoweek.FromTime(now).Sub(w) >= p.SnapshotRetentionWeeks
}

// PruneWeeks deletes per-week stores older than the policy's snapshot
// retention, returning the removed weeks. Per-store errors are collected
// as warnings so the pass makes maximal progress.
func (c *Catalog) PruneWeeks(now time.Time, policy Policy) ([]isoweek.Week, []error) {
	weeks, err := c.Weeks()
	if err != nil {
		return nil, []error{err}
	}

	var removed []isoweek.Week
	var warnings []error
	for _, w := range weeks {
		if !policy.SnapshotExpired(w, now) {
			continue
		}
		if err := c.removeStore(w); err != nil {
			warnings = append(warnings, err)
			continue
		}
		removed = append(removed, w)
	}
	if len(removed) > 0 {
		c.log.Info("old week stores pruned",
			"deleted", len(removed), "retention_weeks", policy.SnapshotRetentionWeeks)
	}
	return removed, warnings
}

// removeStore deletes the database file and any WAL/SHM companions left by
// an interrupted run.
func (c *Catalog) removeStore(w isoweek.Week) error {
	path := c.StorePath(w)
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("%w: delete store %s: %v", ErrIO, filepath.Base(path), err)
	}
	os.Remove(path + "-wal")
	os.Remove(path + "-shm")
	return nil
}

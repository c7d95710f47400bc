package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/hazyhaar/chartkeep/dbopen"
	"github.com/hazyhaar/chartkeep/isoweek"
)

// Ingest atomically replaces the week store's contents with ds.
//
// Sequence: validate → per-week lock → backup prior contents (if any) →
// stage rows into a throwaway table → swap the staged table in as a single
// transaction. Any failure before the swap leaves the live table byte-for-
// byte unchanged; re-ingesting the same week is last-write-wins and never
// touches other weeks.
func (c *Catalog) Ingest(ctx context.Context, ds *Dataset) (*IngestResult, error) {
	if err := ds.Validate(); err != nil {
		return nil, err
	}

	lock := c.lockWeek(ds.Week)
	lock.Lock()
	defer lock.Unlock()

	path := c.StorePath(ds.Week)
	_, statErr := os.Stat(path)
	hadPrior := statErr == nil

	db, err := dbopen.Open(path, dbopen.WithMkdirAll(), dbopen.WithSchema(Schema))
	if err != nil {
		return nil, fmt.Errorf("%w: open week store %s: %v", ErrIO, ds.Week, err)
	}
	defer db.Close()

	// No mutation without a successful backup when prior data exists.
	backupPath := ""
	if hadPrior {
		backupPath, err = c.backup(ctx, db, ds.Week)
		if err != nil {
			return nil, err
		}
	}

	// An interrupted earlier run may have left an orphaned staging table;
	// it never affected the live table and is safe to clear now.
	sweepOrphanedStaging(ctx, db)

	now := c.now()
	staging := fmt.Sprintf("chart_data_stg_%d", now.UnixNano())

	if err := c.stage(ctx, db, staging, ds, now); err != nil {
		dropStaging(ctx, db, staging)
		return nil, &IngestError{Stage: StageStaging, Err: err}
	}

	if c.beforeCommit != nil {
		if err := c.beforeCommit(); err != nil {
			dropStaging(ctx, db, staging)
			return nil, &IngestError{Stage: StageCommit, Err: err}
		}
	}

	// The swap is one transaction: either the new table fully replaces the
	// old one or the old one survives untouched.
	err = dbopen.RunTx(ctx, db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, chartTable)); err != nil {
			return fmt.Errorf("drop live table: %w", err)
		}
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`ALTER TABLE %q RENAME TO %s`, staging, chartTable)); err != nil {
			return fmt.Errorf("swap staged table: %w", err)
		}
		for _, ddl := range indexDDL {
			if _, err := tx.ExecContext(ctx, ddl); err != nil {
				return fmt.Errorf("recreate index: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		dropStaging(ctx, db, staging)
		return nil, &IngestError{Stage: StageCommit, Err: err}
	}

	res := &IngestResult{
		RunID:      c.newRunID(),
		Week:       ds.Week,
		Rows:       len(ds.Records),
		BackupPath: backupPath,
	}
	c.log.Info("week snapshot ingested",
		"run_id", res.RunID, "week", ds.Week.String(), "rows", res.Rows,
		"replaced_prior", hadPrior)
	return res, nil
}

// stage creates the staging table and fills it with the dataset rows plus
// ingestion metadata. The live table is not involved at any point.
func (c *Catalog) stage(ctx context.Context, db *sql.DB, staging string, ds *Dataset, now time.Time) error {
	if _, err := db.ExecContext(ctx, stagingDDL(staging)); err != nil {
		return fmt.Errorf("create staging table: %w", err)
	}

	date := now.Format("2006-01-02")
	stamp := now.Format("2006-01-02 15:04:05")

	return dbopen.RunTx(ctx, db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
			INSERT INTO %q ("Rank", "Previous Rank", "Track Name", "Artist Names",
				"Periods on Chart", "Views", "Growth", "YouTube URL",
				download_date, download_timestamp, week_id)
			VALUES (?,?,?,?,?,?,?,?,?,?,?)`, staging))
		if err != nil {
			return fmt.Errorf("prepare staging insert: %w", err)
		}
		defer stmt.Close()

		for _, r := range ds.Records {
			prev := sql.NullInt64{Int64: int64(r.PreviousRank), Valid: r.PreviousRank > 0}
			if _, err := stmt.ExecContext(ctx,
				r.Rank, prev, r.Title, r.Artists, r.PeriodsOnChart, r.Views,
				r.Growth, r.URL, date, stamp, ds.Week.String()); err != nil {
				return fmt.Errorf("stage rank %d: %w", r.Rank, err)
			}
		}
		return nil
	})
}

// dropStaging removes a staging table after a failed run, best effort.
// Goes through the busy-retry path: a racing writer holding the table lock
// should delay the drop, not defeat it.
func dropStaging(ctx context.Context, db *sql.DB, staging string) {
	dbopen.Exec(ctx, db, fmt.Sprintf(`DROP TABLE IF EXISTS %q`, staging))
}

// sweepOrphanedStaging drops staging tables left behind by interrupted
// runs. Best effort: a failure here only delays cleanup to the next cycle.
func sweepOrphanedStaging(ctx context.Context, db *sql.DB) {
	rows, err := db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name LIKE 'chart_data_stg_%'`)
	if err != nil {
		return
	}
	var orphans []string
	for rows.Next() {
		var name string
		if rows.Scan(&name) == nil {
			orphans = append(orphans, name)
		}
	}
	rows.Close()
	for _, name := range orphans {
		dbopen.Exec(ctx, db, fmt.Sprintf(`DROP TABLE IF EXISTS %q`, name))
	}
}

// RowCount returns the number of live rows in the week's store, or 0 when
// the store does not exist.
func (c *Catalog) RowCount(ctx context.Context, w isoweek.Week) (int64, error) {
	path := c.StorePath(w)
	if _, err := os.Stat(path); err != nil {
		return 0, nil
	}
	db, err := dbopen.Open(path)
	if err != nil {
		return 0, fmt.Errorf("%w: open week store %s: %v", ErrIO, w, err)
	}
	defer db.Close()

	var n int64
	if err := db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, chartTable)).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: count %s: %v", ErrIO, w, err)
	}
	return n, nil
}

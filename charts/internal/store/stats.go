package store

import (
	"context"
	"fmt"
	"os"

	"github.com/hazyhaar/chartkeep/dbopen"
)

// Summarize aggregates read-only statistics across all per-week stores.
// Every store is opened read-only, so the facade cannot mutate even by
// accident, and a read racing a write sees either the pre- or post-commit
// rows, never a staged state. Per-store read errors are returned as
// warnings alongside partial results.
func (c *Catalog) Summarize(ctx context.Context) (*Summary, []error) {
	sum := &Summary{
		RecordsPerStore: make(map[string]int64),
		SizesPerStore:   make(map[string]int64),
		DatesPerStore:   make(map[string][2]string),
	}

	weeks, err := c.Weeks()
	if err != nil {
		return sum, []error{err}
	}

	var warnings []error
	for _, w := range weeks {
		key := w.String()
		path := c.StorePath(w)

		if info, err := os.Stat(path); err == nil {
			sum.SizesPerStore[key] = info.Size()
		}

		db, err := dbopen.Open(path, dbopen.WithReadOnly(), dbopen.WithoutPing())
		if err != nil {
			warnings = append(warnings, fmt.Errorf("%w: open %s: %v", ErrIO, key, err))
			continue
		}

		var count int64
		var minDate, maxDate string
		err = db.QueryRowContext(ctx, fmt.Sprintf(
			`SELECT COUNT(*), COALESCE(MIN(download_date), ''), COALESCE(MAX(download_date), '') FROM %s`,
			chartTable)).Scan(&count, &minDate, &maxDate)
		db.Close()
		if err != nil {
			warnings = append(warnings, fmt.Errorf("%w: read %s: %v", ErrIO, key, err))
			continue
		}

		sum.RecordsPerStore[key] = count
		sum.DatesPerStore[key] = [2]string{minDate, maxDate}
		sum.TotalRecords += count
		sum.StoreCount++
		if sum.StoreCount == 1 || w.Before(sum.EarliestWeek) {
			sum.EarliestWeek = w
		}
		if sum.StoreCount == 1 || sum.LatestWeek.Before(w) {
			sum.LatestWeek = w
		}
	}
	return sum, warnings
}

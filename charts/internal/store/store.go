// Package store is the durable layer for weekly chart snapshots: one SQLite
// database per ISO week in a flat catalog directory, plus point-in-time
// backups in a sibling directory.
//
// Layout:
//
//	<dir>/youtube_charts_2025-W01.db
//	<backupDir>/backup_2025-W01_20250106_083000.db
//
// Filenames are an indexing convention only; they are parsed into typed
// isoweek.Week and time.Time values at the boundary and never compared as
// raw strings.
package store

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hazyhaar/chartkeep/idgen"
	"github.com/hazyhaar/chartkeep/isoweek"
)

const (
	storePrefix  = "youtube_charts_"
	storeExt     = ".db"
	backupPrefix = "backup_"
	// Second-resolution backup stamp, per the archive naming convention.
	backupStampLayout = "20060102_150405"
)

// Catalog owns the per-week stores and their backups. All mutation of the
// on-disk layout goes through it.
type Catalog struct {
	dir       string
	backupDir string
	now       func() time.Time
	newRunID  idgen.Generator
	log       *slog.Logger

	mu        sync.Mutex
	weekLocks map[isoweek.Week]*sync.Mutex

	// beforeCommit runs between staging and commit when set; lets tests
	// inject a crash at the most dangerous point of the ingest.
	beforeCommit func() error
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(c *Catalog) { c.now = now }
}

// WithLogger overrides the default slog logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Catalog) { c.log = l }
}

// WithRunIDs overrides the ingest run-ID generator.
func WithRunIDs(gen idgen.Generator) Option {
	return func(c *Catalog) { c.newRunID = gen }
}

// New creates a Catalog over dir for stores and backupDir for backups.
// Directories are created lazily on first write.
func New(dir, backupDir string, opts ...Option) *Catalog {
	c := &Catalog{
		dir:       dir,
		backupDir: backupDir,
		now:       time.Now,
		newRunID:  idgen.Prefixed("run_", idgen.Default),
		log:       slog.Default(),
		weekLocks: make(map[isoweek.Week]*sync.Mutex),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// StorePath returns the database path for week w.
func (c *Catalog) StorePath(w isoweek.Week) string {
	return filepath.Join(c.dir, storePrefix+w.String()+storeExt)
}

func (c *Catalog) backupPath(w isoweek.Week, at time.Time) string {
	name := fmt.Sprintf("%s%s_%s%s", backupPrefix, w.String(), at.UTC().Format(backupStampLayout), storeExt)
	return filepath.Join(c.backupDir, name)
}

// lockWeek returns the advisory lock for week w, creating it on first use.
// Distinct weeks get distinct locks, so ingests for different weeks never
// block each other.
func (c *Catalog) lockWeek(w isoweek.Week) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.weekLocks[w]
	if !ok {
		l = &sync.Mutex{}
		c.weekLocks[w] = l
	}
	return l
}

// Weeks lists all per-week stores present on disk, earliest first.
// Foreign or unparseable filenames in the catalog directory are skipped.
func (c *Catalog) Weeks() ([]isoweek.Week, error) {
	entries, err := os.ReadDir(c.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: list stores: %v", ErrIO, err)
	}

	var weeks []isoweek.Week
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		w, ok := weekFromStoreName(e.Name())
		if !ok {
			continue
		}
		weeks = append(weeks, w)
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].Before(weeks[j]) })
	return weeks, nil
}

// weekFromStoreName parses "youtube_charts_YYYY-WXX.db" into a typed week.
func weekFromStoreName(name string) (isoweek.Week, bool) {
	if !strings.HasPrefix(name, storePrefix) || !strings.HasSuffix(name, storeExt) {
		return isoweek.Week{}, false
	}
	s := strings.TrimSuffix(strings.TrimPrefix(name, storePrefix), storeExt)
	w, err := isoweek.Parse(s)
	if err != nil {
		return isoweek.Week{}, false
	}
	return w, true
}

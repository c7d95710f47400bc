// Package charts maintains a versioned archive of weekly chart snapshots.
//
// An external producer yields one tabular dataset per reporting week; the
// service backs up the week's prior store, atomically replaces its contents,
// rotates backups and prunes old weeks under the configured retention
// policy, and exposes read-only reporting over the archive. Each ISO week
// lives in its own SQLite database, so history accumulates at the catalog
// level and a failed cycle can never damage previously committed weeks.
package charts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hazyhaar/chartkeep/charts/internal/store"
	"github.com/hazyhaar/chartkeep/isoweek"
)

// Re-export store types for the public API.
type (
	ChartRecord     = store.ChartRecord
	Dataset         = store.Dataset
	ValidationError = store.ValidationError
	IngestError     = store.IngestError
	IngestResult    = store.IngestResult
	Summary         = store.Summary
	Policy          = store.Policy
	Backup          = store.Backup
)

// ErrIO marks backup/store read-write failures.
var ErrIO = store.ErrIO

// CycleReport aggregates everything one ingestion cycle did.
type CycleReport struct {
	RunID         string
	Week          isoweek.Week
	Rows          int
	BackupPath    string
	LatestExport  string
	BackupsPruned int
	WeeksPruned   []isoweek.Week
	Warnings      []string
	Summary       *Summary
}

// Service wires the catalog, retention policy, and latest-export together.
type Service struct {
	cfg *Config
	cat *store.Catalog
	log *slog.Logger
	now func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a Service from cfg. A nil logger falls back to slog.Default.
func New(cfg *Config, logger *slog.Logger, opts ...Option) (*Service, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Service{cfg: cfg, log: logger, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	s.cat = store.New(cfg.DataDir, cfg.BackupDir,
		store.WithLogger(logger),
		store.WithClock(s.now),
	)
	return s, nil
}

// RunCycle executes one full ingestion cycle: produce → ingest → export
// latest → prune → summarize. The configured producer timeout bounds the
// produce step only; once a dataset is in hand the rest of the cycle runs
// on the caller's context. Producer and ingest failures abort the cycle
// with the archive untouched beyond what Ingest guarantees; export and
// pruning problems are demoted to warnings because the snapshot is already
// durable by then.
func (s *Service) RunCycle(ctx context.Context, p Producer) (*CycleReport, error) {
	prodCtx := ctx
	if d := s.cfg.ProducerTimeout(); d > 0 {
		var cancel context.CancelFunc
		prodCtx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	ds, err := p.Produce(prodCtx)
	if err != nil {
		if errors.Is(err, ErrProducer) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrProducer, err)
	}

	res, err := s.cat.Ingest(ctx, ds)
	if err != nil {
		return nil, err
	}

	report := &CycleReport{
		RunID:      res.RunID,
		Week:       res.Week,
		Rows:       res.Rows,
		BackupPath: res.BackupPath,
	}

	if path, err := s.exportLatest(ds); err != nil {
		report.Warnings = append(report.Warnings, fmt.Sprintf("latest export: %v", err))
	} else {
		report.LatestExport = path
	}

	now := s.now()
	policy := s.cfg.Policy()

	deleted, warns := s.cat.PruneBackups(now, policy)
	report.BackupsPruned = deleted
	for _, w := range warns {
		report.Warnings = append(report.Warnings, w.Error())
	}

	removed, warns := s.cat.PruneWeeks(now, policy)
	report.WeeksPruned = removed
	for _, w := range warns {
		report.Warnings = append(report.Warnings, w.Error())
	}

	sum, warns := s.cat.Summarize(ctx)
	report.Summary = sum
	for _, w := range warns {
		report.Warnings = append(report.Warnings, w.Error())
	}

	s.log.Info("cycle complete",
		"run_id", report.RunID, "week", report.Week.String(), "rows", report.Rows,
		"stores", sum.StoreCount, "total_records", sum.TotalRecords,
		"backups_pruned", report.BackupsPruned, "weeks_pruned", len(report.WeeksPruned),
		"warnings", len(report.Warnings))
	return report, nil
}

// Summarize reports read-only statistics over the whole archive.
func (s *Service) Summarize(ctx context.Context) (*Summary, []error) {
	return s.cat.Summarize(ctx)
}

// Weeks lists the archived weeks, earliest first.
func (s *Service) Weeks() ([]isoweek.Week, error) {
	return s.cat.Weeks()
}

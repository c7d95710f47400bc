package store

import (
	"time"

	"github.com/hazyhaar/chartkeep/isoweek"
)

// ChartRecord is one ranked entry of a weekly chart.
type ChartRecord struct {
	Rank           int
	PreviousRank   int // 0 means "not on chart last period"; persisted as NULL
	Title          string
	Artists        string
	PeriodsOnChart int
	Views          int64
	Growth         string // free-form, e.g. "+12%", "-3%", "—"
	URL            string
}

// Dataset is one extracted weekly chart ready for ingestion. It is produced
// by an external producer, validated once at the ingest boundary, consumed
// exactly once, and not retained afterwards.
type Dataset struct {
	Records     []ChartRecord
	RetrievedAt time.Time
	Week        isoweek.Week
}

// Backup describes one point-in-time copy of a per-week store.
type Backup struct {
	Week      isoweek.Week
	CreatedAt time.Time
	Path      string
}

// IngestResult reports what one successful ingest did.
type IngestResult struct {
	RunID      string
	Week       isoweek.Week
	Rows       int
	BackupPath string // empty when the week had no prior data to back up
}

// Summary is the read-only aggregate over all per-week stores.
type Summary struct {
	StoreCount      int
	TotalRecords    int64
	RecordsPerStore map[string]int64 // keyed by canonical week string
	SizesPerStore   map[string]int64 // file sizes in bytes
	DatesPerStore   map[string][2]string
	EarliestWeek    isoweek.Week
	LatestWeek      isoweek.Week
}

package charts

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hazyhaar/chartkeep/isoweek"
)

// Producer yields one tabular dataset for the current reporting week, or
// fails. The archive treats every producer identically; whether the data
// came from a real chart export or a fallback generator is the caller's
// business, never branched on here.
type Producer interface {
	Produce(ctx context.Context) (*Dataset, error)
}

// Chart CSV export headers, in canonical order.
var csvHeader = []string{
	"Rank", "Previous Rank", "Track Name", "Artist Names",
	"Periods on Chart", "Views", "Growth", "YouTube URL",
}

// CSVFileProducer reads a chart CSV export from disk. The file is the
// hand-off point from whatever obtained the chart (an external downloader,
// a manual export); this producer only parses and stamps provenance.
type CSVFileProducer struct {
	Path string
	// Now overrides the provenance clock (tests). Defaults to time.Now.
	Now func() time.Time
}

func (p *CSVFileProducer) Produce(ctx context.Context) (*Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProducer, err)
	}

	f, err := os.Open(p.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrProducer, p.Path, err)
	}
	defer f.Close()

	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	ds, err := parseChartCSV(f, now())
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrProducer, p.Path, err)
	}
	return ds, nil
}

func parseChartCSV(r io.Reader, now time.Time) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	for _, h := range csvHeader {
		if _, ok := col[h]; !ok {
			return nil, fmt.Errorf("missing column %q", h)
		}
	}

	ds := &Dataset{RetrievedAt: now, Week: isoweek.FromTime(now)}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		field := func(name string) string { return strings.TrimSpace(rec[col[name]]) }

		rank, err := strconv.Atoi(field("Rank"))
		if err != nil {
			return nil, fmt.Errorf("line %d: rank: %w", line, err)
		}
		prev := 0
		if s := field("Previous Rank"); s != "" && s != "-" {
			prev, err = strconv.Atoi(s)
			if err != nil {
				return nil, fmt.Errorf("line %d: previous rank: %w", line, err)
			}
		}
		periods, err := strconv.Atoi(nonEmpty(field("Periods on Chart"), "0"))
		if err != nil {
			return nil, fmt.Errorf("line %d: periods on chart: %w", line, err)
		}
		// View counts in exports occasionally carry thousands separators.
		views, err := strconv.ParseInt(strings.ReplaceAll(nonEmpty(field("Views"), "0"), ",", ""), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: views: %w", line, err)
		}

		ds.Records = append(ds.Records, ChartRecord{
			Rank:           rank,
			PreviousRank:   prev,
			Title:          field("Track Name"),
			Artists:        field("Artist Names"),
			PeriodsOnChart: periods,
			Views:          views,
			Growth:         field("Growth"),
			URL:            field("YouTube URL"),
		})
	}
	return ds, nil
}

func nonEmpty(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// SyntheticProducer generates a realistic placeholder chart. It exists for
// cycles where no real export is available and implements the exact same
// contract, so downstream code cannot tell the difference.
type SyntheticProducer struct {
	// N is the number of records; defaults to 100.
	N int
	// Now overrides the provenance clock (tests). Defaults to time.Now.
	Now func() time.Time
}

func (p *SyntheticProducer) Produce(ctx context.Context) (*Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProducer, err)
	}

	n := p.N
	if n <= 0 {
		n = 100
	}
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	at := now()

	ds := &Dataset{RetrievedAt: at, Week: isoweek.FromTime(at)}
	for i := 1; i <= n; i++ {
		prev := i - 1
		if prev < 1 {
			prev = 1
		}
		ds.Records = append(ds.Records, ChartRecord{
			Rank:           i,
			PreviousRank:   prev,
			Title:          fmt.Sprintf("Popular Song %d", i),
			Artists:        fmt.Sprintf("Artist %c and Collaborators", 'A'+(i-1)%26),
			PeriodsOnChart: 10 + i%40,
			Views:          5_000_000 + int64(n-i)*50_000,
			Growth:         fmt.Sprintf("%.2f%%", float64(n+1-i)/float64(n)),
			URL:            fmt.Sprintf("https://www.youtube.com/watch?v=example%03d", i),
		})
	}
	return ds, nil
}

package charts

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// exportLatest writes the just-ingested dataset to the "latest" CSV path,
// unconditionally overwriting the previous cycle's export. Written to a
// temp file first and renamed in, so a reader never sees a torn file.
func (s *Service) exportLatest(ds *Dataset) (string, error) {
	path := s.cfg.LatestPath
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("mkdir export dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".latest-*")
	if err != nil {
		return "", fmt.Errorf("create temp export: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(csvHeader); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write header: %w", err)
	}
	for _, r := range ds.Records {
		prev := ""
		if r.PreviousRank > 0 {
			prev = strconv.Itoa(r.PreviousRank)
		}
		row := []string{
			strconv.Itoa(r.Rank), prev, r.Title, r.Artists,
			strconv.Itoa(r.PeriodsOnChart), strconv.FormatInt(r.Views, 10),
			r.Growth, r.URL,
		}
		if err := w.Write(row); err != nil {
			tmp.Close()
			return "", fmt.Errorf("write rank %d: %w", r.Rank, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("flush export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close export: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("replace latest export: %w", err)
	}
	return path, nil
}

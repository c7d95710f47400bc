package store

import "fmt"

// Validate checks the dataset's structural invariants: non-empty, ranks
// unique, rank 1 present, title and attribution non-empty on every record.
// Rank gaps above 1 are tolerated — charts occasionally skip positions for
// delisted entries. Read-only; returns *ValidationError on the first
// violation found.
func (d *Dataset) Validate() error {
	if len(d.Records) == 0 {
		return &ValidationError{Reason: "dataset is empty"}
	}

	seen := make(map[int]struct{}, len(d.Records))
	rankOne := false
	for i, r := range d.Records {
		if r.Rank < 1 {
			return &ValidationError{Reason: fmt.Sprintf("record %d: rank %d is not positive", i, r.Rank)}
		}
		if _, dup := seen[r.Rank]; dup {
			return &ValidationError{Reason: fmt.Sprintf("duplicate rank %d", r.Rank)}
		}
		seen[r.Rank] = struct{}{}
		if r.Rank == 1 {
			rankOne = true
		}
		if r.Title == "" {
			return &ValidationError{Reason: fmt.Sprintf("rank %d: empty title", r.Rank)}
		}
		if r.Artists == "" {
			return &ValidationError{Reason: fmt.Sprintf("rank %d: empty artist attribution", r.Rank)}
		}
		if r.PeriodsOnChart < 0 {
			return &ValidationError{Reason: fmt.Sprintf("rank %d: negative periods on chart", r.Rank)}
		}
		if r.Views < 0 {
			return &ValidationError{Reason: fmt.Sprintf("rank %d: negative view count", r.Rank)}
		}
	}
	if !rankOne {
		return &ValidationError{Reason: "rank 1 is missing"}
	}
	return nil
}

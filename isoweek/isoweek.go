// Package isoweek provides the ISO-8601 week identity used to name and
// order weekly chart snapshots.
//
// A Week is a (year, week-number) pair under ISO-8601 week-numbering rules:
// weeks start on Monday, and week 1 is the week containing the year's first
// Thursday. The canonical string form is "YYYY-WXX" with a zero-padded week
// number, e.g. "2025-W05". That string sorts lexicographically in the same
// order as the weeks themselves, which is what the on-disk naming scheme
// relies on.
package isoweek

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrBadFormat is returned by Parse for strings that are not a canonical
// "YYYY-WXX" week identifier.
var ErrBadFormat = errors.New("isoweek: malformed week identifier")

// Week identifies one ISO-8601 calendar week. The zero value is not a valid
// week; construct via FromTime or Parse.
type Week struct {
	Year int
	Num  int
}

// FromTime returns the ISO week containing t. Total: every valid time maps
// to exactly one week.
func FromTime(t time.Time) Week {
	y, w := t.ISOWeek()
	return Week{Year: y, Num: w}
}

// String returns the canonical "YYYY-WXX" form.
func (w Week) String() string {
	return fmt.Sprintf("%04d-W%02d", w.Year, w.Num)
}

// Parse is the exact inverse of String. It accepts only the canonical
// zero-padded form and wraps ErrBadFormat otherwise.
func Parse(s string) (Week, error) {
	if len(s) != 8 || s[4] != '-' || s[5] != 'W' {
		return Week{}, fmt.Errorf("%w: %q", ErrBadFormat, s)
	}
	year, err := strconv.Atoi(s[:4])
	if err != nil {
		return Week{}, fmt.Errorf("%w: %q", ErrBadFormat, s)
	}
	num, err := strconv.Atoi(s[6:])
	if err != nil {
		return Week{}, fmt.Errorf("%w: %q", ErrBadFormat, s)
	}
	if num < 1 || num > 53 {
		return Week{}, fmt.Errorf("%w: week number out of range in %q", ErrBadFormat, s)
	}
	w := Week{Year: year, Num: num}
	// Reject non-canonical renderings (signs, stray padding).
	if w.String() != s {
		return Week{}, fmt.Errorf("%w: %q", ErrBadFormat, s)
	}
	return w, nil
}

// Compare orders weeks by (year, number). It returns -1, 0 or +1.
func (w Week) Compare(o Week) int {
	switch {
	case w.Year != o.Year:
		if w.Year < o.Year {
			return -1
		}
		return 1
	case w.Num != o.Num:
		if w.Num < o.Num {
			return -1
		}
		return 1
	default:
		return 0
	}
}

// Before reports whether w is strictly earlier than o.
func (w Week) Before(o Week) bool { return w.Compare(o) < 0 }

// Start returns the Monday 00:00:00 UTC instant opening the week.
func (w Week) Start() time.Time {
	// Jan 4 is always inside ISO week 1 of its year.
	jan4 := time.Date(w.Year, time.January, 4, 0, 0, 0, 0, time.UTC)
	// Back up to the Monday of week 1.
	offset := (int(jan4.Weekday()) + 6) % 7
	week1 := jan4.AddDate(0, 0, -offset)
	return week1.AddDate(0, 0, (w.Num-1)*7)
}

// Sub returns the number of whole calendar weeks from o to w
// (positive when w is later).
func (w Week) Sub(o Week) int {
	return int(w.Start().Sub(o.Start()) / (7 * 24 * time.Hour))
}

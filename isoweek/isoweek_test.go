package isoweek

import (
	"errors"
	"testing"
	"time"
)

func TestFromTimeKnownDates(t *testing.T) {
	// WHAT: Spot-check FromTime against hand-computed ISO weeks.
	// WHY: The year boundary is where ISO weeks diverge from calendar years.
	cases := []struct {
		date string
		want Week
	}{
		{"2025-01-01", Week{2025, 1}},
		{"2025-06-15", Week{2025, 24}},
		{"2024-12-30", Week{2025, 1}},  // Monday belonging to next ISO year
		{"2023-01-01", Week{2022, 52}}, // Sunday belonging to prior ISO year
		{"2020-12-31", Week{2020, 53}}, // 53-week year
		{"2021-01-03", Week{2020, 53}},
	}
	for _, c := range cases {
		d, err := time.Parse("2006-01-02", c.date)
		if err != nil {
			t.Fatal(err)
		}
		if got := FromTime(d); got != c.want {
			t.Errorf("FromTime(%s): got %v, want %v", c.date, got, c.want)
		}
	}
}

func TestStringParseRoundTrip(t *testing.T) {
	// WHAT: Parse(String()) must be the identity over a long span of weeks.
	// WHY: The canonical string is the on-disk key; it must round-trip exactly.
	d := time.Date(2018, time.January, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 60*7; i += 3 {
		w := FromTime(d.AddDate(0, 0, i))
		got, err := Parse(w.String())
		if err != nil {
			t.Fatalf("parse %q: %v", w.String(), err)
		}
		if got != w {
			t.Fatalf("round-trip %q: got %v, want %v", w.String(), got, w)
		}
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, s := range []string{
		"", "2025-W1", "2025W01", "2025-w01", "25-W01",
		"2025-W00", "2025-W54", "2025-W5a", "2025-W011", "garbage",
	} {
		if _, err := Parse(s); !errors.Is(err, ErrBadFormat) {
			t.Errorf("Parse(%q): want ErrBadFormat, got %v", s, err)
		}
	}
}

func TestOrdering(t *testing.T) {
	a := Week{2024, 52}
	b := Week{2025, 1}
	if !a.Before(b) {
		t.Error("2024-W52 should sort before 2025-W01")
	}
	if b.Before(a) {
		t.Error("2025-W01 should not sort before 2024-W52")
	}
	if a.Compare(a) != 0 {
		t.Error("Compare with self should be 0")
	}
}

func TestStartIsMonday(t *testing.T) {
	// WHAT: Start() lands on a Monday and contains the week it opens.
	// WHY: Retention arithmetic is defined on week starts.
	for _, w := range []Week{{2025, 1}, {2020, 53}, {2024, 30}} {
		s := w.Start()
		if s.Weekday() != time.Monday {
			t.Errorf("%v.Start() = %v, not a Monday", w, s)
		}
		if FromTime(s) != w {
			t.Errorf("%v.Start() maps back to %v", w, FromTime(s))
		}
		if FromTime(s.AddDate(0, 0, 6)) != w {
			t.Errorf("%v start+6d maps to %v", w, FromTime(s.AddDate(0, 0, 6)))
		}
	}
}

func TestSub(t *testing.T) {
	a := Week{2024, 50}
	b := Week{2025, 2}
	if got := b.Sub(a); got != 4 {
		t.Errorf("Sub across year boundary: got %d, want 4", got)
	}
	if got := a.Sub(b); got != -4 {
		t.Errorf("negative Sub: got %d, want -4", got)
	}
}

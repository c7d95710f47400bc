package idgen

import (
	"strings"
	"testing"
)

func TestUUIDv7_Format(t *testing.T) {
	gen := UUIDv7()
	id := gen()
	// UUID format: 8-4-4-4-12
	parts := strings.Split(id, "-")
	if len(parts) != 5 {
		t.Fatalf("UUIDv7: expected 5 parts, got %d in %q", len(parts), id)
	}
	if len(id) != 36 {
		t.Fatalf("UUIDv7: expected length 36, got %d", len(id))
	}
}

func TestUUIDv7_Uniqueness(t *testing.T) {
	gen := UUIDv7()
	seen := make(map[string]struct{}, 100)
	for i := 0; i < 100; i++ {
		id := gen()
		if _, ok := seen[id]; ok {
			t.Fatalf("UUIDv7: duplicate at iteration %d", i)
		}
		seen[id] = struct{}{}
	}
}

func TestUUIDv7_Sortable(t *testing.T) {
	// WHAT: Successive UUIDv7 values sort in generation order.
	// WHY: Run IDs are used to order cycle reports chronologically.
	gen := UUIDv7()
	prev := gen()
	for i := 0; i < 50; i++ {
		id := gen()
		if id < prev {
			t.Fatalf("UUIDv7 not monotone at iteration %d: %q < %q", i, id, prev)
		}
		prev = id
	}
}

func TestPrefixed(t *testing.T) {
	gen := Prefixed("run_", UUIDv7())
	id := gen()
	if !strings.HasPrefix(id, "run_") {
		t.Fatalf("Prefixed: expected prefix 'run_', got %q", id)
	}
	if len(id) != 4+36 {
		t.Fatalf("Prefixed: expected length 40, got %d", len(id))
	}
}

func TestDefault_IsUUIDv7(t *testing.T) {
	id := Default()
	if len(id) != 36 {
		t.Fatalf("Default (UUIDv7): expected length 36, got %d for %q", len(id), id)
	}
	if strings.Count(id, "-") != 4 {
		t.Fatalf("Default: not a canonical UUID: %q", id)
	}
}

// Package idgen provides pluggable ID generation for chartkeep.
//
// Ingest run IDs want to be time-sortable so log lines and cycle reports
// line up chronologically, hence UUIDv7 as the default strategy. The
// Generator func type keeps the strategy a startup-time decision: tests
// inject fixed generators, production composes Prefixed over UUIDv7.
package idgen

import "github.com/google/uuid"

// Generator produces unique string identifiers.
type Generator func() string

// UUIDv7 returns a Generator that produces RFC 9562 UUID v7 strings.
// Time-sortable and globally unique.
func UUIDv7() Generator {
	return func() string {
		return uuid.Must(uuid.NewV7()).String()
	}
}

// Prefixed wraps a Generator and prepends a fixed prefix to every ID.
// Useful for type-scoped identifiers (e.g. "run_").
func Prefixed(prefix string, gen Generator) Generator {
	return func() string {
		return prefix + gen()
	}
}

// Default is the package default: UUIDv7.
var Default Generator = UUIDv7()

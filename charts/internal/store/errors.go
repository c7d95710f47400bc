package store

import (
	"errors"
	"fmt"
)

// ErrIO marks backup or store read/write failures. A failed backup copy
// aborts the enclosing ingest before any mutation.
var ErrIO = errors.New("charts: store I/O failure")

// Ingest stages, for IngestError.Stage.
const (
	StageStaging = "staging"
	StageCommit  = "commit"
)

// ValidationError rejects a dataset at the ingest boundary, before any
// durable state is touched.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "charts: invalid dataset: " + e.Reason
}

// IngestError reports a failure in the staging or commit phase. In either
// case the live table still holds exactly the pre-ingest rows.
type IngestError struct {
	Stage string
	Err   error
}

func (e *IngestError) Error() string {
	return fmt.Sprintf("charts: ingest failed during %s: %v", e.Stage, e.Err)
}

func (e *IngestError) Unwrap() error { return e.Err }

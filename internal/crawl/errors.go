package crawl

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingCredential marks a source whose configured credential
	// environment variable is unset. Fatal to that source only.
	ErrMissingCredential = errors.New("missing credential")

	// ErrRetriesExhausted is returned by the retry controller when the
	// attempt budget is spent on transient outcomes. The pagination
	// engine treats it as end-of-source, not a crash.
	ErrRetriesExhausted = errors.New("page fetch retries exhausted")

	// ErrSourcePanic marks a recovered panic in a source's unit of
	// work. Isolated at the orchestrator boundary.
	ErrSourcePanic = errors.New("unhandled source failure")
)

// Rejection reason codes.
const (
	ReasonMissingFields   = "missing-fields"
	ReasonExtractionError = "extraction-error"
	ReasonDuplicate       = "duplicate"
)

// ValidationError reports why a raw record was rejected. Records are
// never dropped without a reason code.
type ValidationError struct {
	// Reason is one of the rejection reason codes.
	Reason string
	// Missing lists the empty required fields for ReasonMissingFields.
	Missing []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Reason == ReasonMissingFields {
		return fmt.Sprintf("record rejected (%s): %s", e.Reason, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("record rejected (%s)", e.Reason)
}

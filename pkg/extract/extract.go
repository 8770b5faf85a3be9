// Package extract defines the structured-extraction capability the discovery
// pipeline depends on: turn one source page into candidate place records.
// The concrete extraction technology is swappable; the default implementation
// fetches the page and asks an LLM to emit structured JSON.
package extract

import (
	"context"
	"fmt"

	"github.com/roamkit/tripscope/pkg/places"
)

// Reason classifies an extraction failure so callers can decide whether the
// source deserves a long suppression or just a skip.
type Reason string

const (
	// ReasonBudget means the source exceeded the extractor's input-size
	// budget. Retrying won't help until the budget changes.
	ReasonBudget Reason = "budget"
	// ReasonMalformed means the source content is fundamentally
	// unextractable (not HTML, empty document, and so on).
	ReasonMalformed Reason = "malformed"
	// ReasonUnreachable means the source could not be fetched. Usually
	// transient.
	ReasonUnreachable Reason = "unreachable"
	// ReasonBadOutput means the extractor itself produced an unusable
	// result. Usually transient.
	ReasonBadOutput Reason = "bad_output"
)

// ExtractionError is returned when a source could not be turned into records.
type ExtractionError struct {
	Source string
	Reason Reason
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extraction failed for %s (%s): %v", e.Source, e.Reason, e.Err)
	}
	return fmt.Sprintf("extraction failed for %s (%s)", e.Source, e.Reason)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Extractor converts one source page into candidate place records.
// It fails with *ExtractionError when the source is malformed, unreachable,
// or exceeds the input-size budget.
type Extractor interface {
	Extract(ctx context.Context, pageURL, instruction string) ([]places.Place, error)
}

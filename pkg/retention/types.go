package retention

import (
	"fmt"
	"time"
)

// Policy is the retention policy for one evaluation. It is immutable for
// the duration of the run.
type Policy struct {
	// DaysStale is the staleness threshold: documents whose last reload is
	// older than this many days qualify.
	DaysStale int

	// MinSizeMB is the size floor in megabytes. Documents at or below the
	// floor are skipped; they are probably already empty.
	MinSizeMB float64

	// IncludePublished also considers published documents. Off by default:
	// published documents are normally in active use.
	IncludePublished bool
}

// DefaultPolicy returns the default retention policy.
func DefaultPolicy() Policy {
	return Policy{
		DaysStale:        180,
		MinSizeMB:        1.0,
		IncludePublished: false,
	}
}

// Validate checks the policy's numeric bounds.
func (p Policy) Validate() error {
	if p.DaysStale < 0 {
		return fmt.Errorf("days_stale must be >= 0, got %d", p.DaysStale)
	}
	if p.MinSizeMB < 0 {
		return fmt.Errorf("min_size_mb must be >= 0, got %g", p.MinSizeMB)
	}
	return nil
}

// Candidate is a document that qualifies for reclamation. Created by
// Evaluate and never mutated afterwards.
type Candidate struct {
	ID   string
	Name string

	// SizeMB is the document size in megabytes, rounded to two decimals.
	SizeMB float64

	// LastReload is the last reload instant in UTC. Documents that were
	// never reloaded carry the Unix epoch here.
	LastReload time.Time
}

// InputError reports catalog metadata that cannot be interpreted, such as a
// malformed reload timestamp. It is surfaced rather than defaulted so
// operators can see the bad data at the source.
type InputError struct {
	DocID string
	Field string
	Value string
	Err   error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("document %s has malformed %s %q: %v", e.DocID, e.Field, e.Value, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

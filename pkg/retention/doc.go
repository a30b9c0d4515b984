// Package retention decides which documents qualify for data reclamation.
//
// Evaluate is a pure function over the fetched catalog: it never contacts
// the engine and never mutates its input. A document qualifies when it is
// unpublished (or published documents are explicitly included), its last
// reload is older than the staleness threshold, and its size is strictly
// above the configured floor. Documents with no reload on record are treated
// as maximally stale.
package retention

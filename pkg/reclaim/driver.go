// Package reclaim drives the per-document truncate-and-save sequence.
//
// Each document gets its own connection: a slow or broken session can then
// never wedge the documents that follow it. The batch is strictly
// sequential, and a failure on one document is recorded in its outcome
// without aborting the rest.
package reclaim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"sensetools/sweeper/pkg/engine"
)

// ErrNotOpened indicates the open-without-data step did not yield a usable
// document handle, e.g. the document is locked, deleted or access-denied.
var ErrNotOpened = errors.New("document could not be opened")

// Outcome is the result of one reclamation attempt.
type Outcome struct {
	DocID     string
	Reclaimed bool
	Err       error
}

// Dialer opens a fresh engine connection. The driver calls it once per
// document.
type Dialer func(ctx context.Context) (*engine.Conn, error)

// ProgressFunc receives the 1-based attempt index, the batch total and the
// attempt's outcome as each attempt completes.
type ProgressFunc func(current, total int, outcome Outcome)

// Observer mirrors engine.Client.Observer; see Driver options.
type Observer func(method string, err error)

// Driver runs reclamation attempts against the engine.
type Driver struct {
	dial     Dialer
	logger   *slog.Logger
	observer Observer
}

// Option configures a Driver.
type Option func(*Driver)

// WithLogger sets the driver's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Driver) { d.logger = logger }
}

// WithObserver forwards per-call outcomes, typically into a metrics
// registry.
func WithObserver(obs Observer) Option {
	return func(d *Driver) { d.observer = obs }
}

// New creates a Driver that opens connections with dial.
func New(dial Dialer, opts ...Option) *Driver {
	d := &Driver{
		dial:   dial,
		logger: slog.Default().With("component", "reclaim"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Reclaim truncates one document: open without data, save in place. The
// connection is closed on every exit path. All failures are reported in the
// Outcome; none are fatal to a batch.
func (d *Driver) Reclaim(ctx context.Context, docID string) Outcome {
	conn, err := d.dial(ctx)
	if err != nil {
		return Outcome{DocID: docID, Err: err}
	}
	defer conn.Close()

	client := engine.NewClient(conn)
	client.Observer = d.observer

	opened, err := client.OpenDoc(ctx, docID, true)
	if err != nil {
		return Outcome{DocID: docID, Err: err}
	}
	if opened.Type != engine.DocTypeDoc {
		return Outcome{
			DocID: docID,
			Err:   fmt.Errorf("%w: engine returned object type %q", ErrNotOpened, opened.Type),
		}
	}

	if err := client.DoSave(ctx, opened.Handle); err != nil {
		return Outcome{DocID: docID, Err: err}
	}
	return Outcome{DocID: docID, Reclaimed: true}
}

// Run attempts every document in order. One document's failure never
// prevents the remaining documents from being attempted; only context
// cancellation stops the batch early. The progress callback, when set,
// fires after each attempt.
func (d *Driver) Run(ctx context.Context, docIDs []string, progress ProgressFunc) []Outcome {
	outcomes := make([]Outcome, 0, len(docIDs))
	for i, docID := range docIDs {
		if err := ctx.Err(); err != nil {
			d.logger.Warn("batch stopped", "error", err, "attempted", i, "total", len(docIDs))
			break
		}

		outcome := d.Reclaim(ctx, docID)
		outcomes = append(outcomes, outcome)

		if outcome.Err != nil {
			d.logger.Error("reclamation failed",
				"doc_id", docID,
				"error", outcome.Err,
			)
		} else {
			d.logger.Info("reclaimed document", "doc_id", docID)
		}
		if progress != nil {
			progress(i+1, len(docIDs), outcome)
		}
	}
	return outcomes
}

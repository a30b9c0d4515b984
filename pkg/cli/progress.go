// Package cli holds the terminal-facing pieces of the tool: per-item batch
// progress, the dry-run summary, and typed command errors.
package cli

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// ProgressReporter reports per-item progress for a batch.
type ProgressReporter interface {
	Item(current, total int, label string, err error)
	Finish(succeeded, failed int)
}

// LineProgress prints one line per completed item.
type LineProgress struct {
	mu     sync.Mutex
	writer io.Writer
}

// NewProgressReporter creates a progress reporter that writes to w.
// If w is nil, it defaults to os.Stdout.
func NewProgressReporter(w io.Writer) *LineProgress {
	if w == nil {
		w = os.Stdout
	}
	return &LineProgress{writer: w}
}

// Item reports one completed attempt.
func (p *LineProgress) Item(current, total int, label string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err != nil {
		fmt.Fprintf(p.writer, "[%d/%d] %s: FAILED: %v\n", current, total, label, err)
		return
	}
	fmt.Fprintf(p.writer, "[%d/%d] %s: ok\n", current, total, label)
}

// Finish reports the batch totals.
func (p *LineProgress) Finish(succeeded, failed int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.writer, "Done. %d reclaimed, %d failed.\n", succeeded, failed)
}

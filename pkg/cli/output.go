package cli

import (
	"fmt"
	"io"

	"sensetools/sweeper/pkg/retention"
)

// PrintSummary renders the evaluation result of a run. This is the whole of
// the default dry-run output.
func PrintSummary(w io.Writer, policy retention.Policy, candidates []retention.Candidate) {
	fmt.Fprintf(w, "Searching for apps that are more than %d days old.\n", policy.DaysStale)
	fmt.Fprintf(w, "Found %d applications with a total of %g MB of data.\n",
		len(candidates), retention.TotalSizeMB(candidates))
	fmt.Fprintln(w, "Run with --report to write the list to CSV and with --truncate to clear their data.")
}

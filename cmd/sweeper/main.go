// Sweeper reclaims storage held by stale analytical apps on an analytics
// engine server.
//
// It fetches the engine's full document catalog, evaluates each document
// against a retention policy (days since last reload, minimum size,
// published or not), and either prints a summary (default), writes the
// candidate list to a CSV report, or truncates the qualifying documents by
// reopening each one without its data and saving it back in place.
//
// Usage:
//
//	# Dry run: list what would be reclaimed
//	sweeper run --host sense.example.com
//
//	# Write the candidate list to a timestamped CSV
//	sweeper run --host sense.example.com --report
//
//	# Actually truncate the candidates
//	sweeper run --host sense.example.com --truncate
//
//	# Tighter policy
//	sweeper run --host sense.example.com --days 365 --min-mb 10
package main

func main() {
	Execute()
}

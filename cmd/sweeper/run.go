package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"sensetools/sweeper/pkg/cli"
	"sensetools/sweeper/pkg/config"
	"sensetools/sweeper/pkg/engine"
	"sensetools/sweeper/pkg/reclaim"
	"sensetools/sweeper/pkg/report"
	"sensetools/sweeper/pkg/retention"
	"sensetools/sweeper/pkg/telemetry/logging"
	"sensetools/sweeper/pkg/telemetry/metrics"
)

var runFlags struct {
	host             string
	days             int
	minMB            float64
	includePublished bool
	writeReport      bool
	truncate         bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Evaluate the catalog and optionally report or truncate stale apps",
	Long: `Fetch the engine's document catalog, evaluate it against the retention
policy and print a summary.

With neither --report nor --truncate this is a dry run: nothing on the
server is touched. --report writes the candidate list to a timestamped CSV
file. --truncate reopens each candidate without its data and saves it back
in place, one app at a time; a failure on one app does not stop the rest.

Examples:
  # Dry run with the default policy (180 days, 1 MB floor, unpublished only)
  sweeper run --host sense.example.com

  # Report and truncate apps untouched for a year
  sweeper run --host sense.example.com --days 365 --report --truncate`,
	RunE: runSweep,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runFlags.host, "host", "", "engine server hostname (required unless set in config)")
	runCmd.Flags().IntVarP(&runFlags.days, "days", "d", 180, "days since reload before an app counts as stale")
	runCmd.Flags().Float64Var(&runFlags.minMB, "min-mb", 1.0, "minimum app size in MB to consider")
	runCmd.Flags().BoolVar(&runFlags.includePublished, "include-published", false, "also consider published apps")
	runCmd.Flags().BoolVarP(&runFlags.writeReport, "report", "r", false, "write the candidate list to a CSV file")
	runCmd.Flags().BoolVarP(&runFlags.truncate, "truncate", "t", false, "truncate data from the candidate apps")
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return cli.NewConfigError("", err.Error())
	}

	// Flag overrides; flags beat file and environment.
	if runFlags.host != "" {
		cfg.Engine.Host = runFlags.host
	}
	if cfg.Engine.Host == "" {
		return cli.NewConfigError("engine.host", "no engine host given; use --host or the config file")
	}
	if cmd.Flags().Changed("days") {
		cfg.Retention.DaysStale = runFlags.days
	}
	if cmd.Flags().Changed("min-mb") {
		cfg.Retention.MinSizeMB = runFlags.minMB
	}
	if runFlags.includePublished {
		cfg.Retention.IncludePublished = true
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	logger := logging.New(cfg.Logging).With("run_id", uuid.NewString())
	slog.SetDefault(logger)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		m.Serve(cfg.Metrics.ListenAddress)
		logger.Info("metrics endpoint up", "address", cfg.Metrics.ListenAddress)
	}

	policy := retention.Policy{
		DaysStale:        cfg.Retention.DaysStale,
		MinSizeMB:        cfg.Retention.MinSizeMB,
		IncludePublished: cfg.Retention.IncludePublished,
	}
	if err := policy.Validate(); err != nil {
		return cli.NewConfigError("retention", err.Error())
	}

	tlsConfig, err := engine.LoadTLS(cfg.Engine.CertFile, cfg.Engine.KeyFile, cfg.Engine.CAFile)
	if err != nil {
		return cli.NewConfigError("engine", err.Error())
	}
	dialOpts := engine.Options{
		TLSConfig:        tlsConfig,
		Header:           http.Header{"X-Qlik-User": []string{cfg.Engine.IdentityHeader()}},
		HandshakeTimeout: cfg.Engine.DialTimeout,
		RequestTimeout:   cfg.Engine.RequestTimeout,
	}
	url := cfg.Engine.URL()
	ctx := context.Background()

	// Inventory. A failure here is fatal: no partial catalog is usable.
	docs, err := fetchCatalog(ctx, url, dialOpts, m)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	logger.Info("fetched catalog", "documents", len(docs), "host", cfg.Engine.Host)

	candidates, err := retention.Evaluate(docs, policy, time.Now().UTC())
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	m.SetCandidateMB(retention.TotalSizeMB(candidates))

	cli.PrintSummary(os.Stdout, policy, candidates)

	if runFlags.writeReport {
		path, err := report.NewWriter().WriteFile(cfg.Report.OutputDir, candidates, time.Now())
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		fmt.Printf("Wrote report to %s.\n", path)
	}

	if !runFlags.truncate {
		return nil
	}

	// Each app gets a fresh connection; one broken session cannot wedge
	// the apps that follow it.
	dialer := func(ctx context.Context) (*engine.Conn, error) {
		return engine.Dial(ctx, url, dialOpts)
	}
	driver := reclaim.New(dialer,
		reclaim.WithLogger(logger),
		reclaim.WithObserver(m.ObserveRPC),
	)

	progress := cli.NewProgressReporter(os.Stdout)
	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ID
	}

	var succeeded, failed int
	driver.Run(ctx, ids, func(current, total int, outcome reclaim.Outcome) {
		m.ObserveReclaim(outcome.Reclaimed)
		if outcome.Reclaimed {
			succeeded++
		} else {
			failed++
		}
		progress.Item(current, total, outcome.DocID, outcome.Err)
	})
	progress.Finish(succeeded, failed)

	// Per-item failures were reported inline; the batch itself succeeded.
	return nil
}

// fetchCatalog retrieves the full document list on its own connection.
func fetchCatalog(ctx context.Context, url string, opts engine.Options, m *metrics.Metrics) ([]engine.DocListEntry, error) {
	conn, err := engine.Dial(ctx, url, opts)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	client := engine.NewClient(conn)
	client.Observer = m.ObserveRPC
	return client.GetDocList(ctx)
}

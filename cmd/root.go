// Package cmd implements the queue-ai CLI command tree.
// This file defines the root command and registers all global persistent flags.
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/eEQK/queue-ai/internal/app"
	"github.com/eEQK/queue-ai/internal/config"
)

// globalFlags holds the parsed values of all persistent (global) flags.
// Commands read from this struct via the deps they receive.
var globalFlags struct {
	SensorURL string
	DBPath    string
	Format    string
	Out       string
	Timeout   string
	Rate      float64
	Quiet     bool
	Verbose   bool
	Debug     bool
}

// rootCmd is the base command. Running `queue-ai` with no subcommand
// prints help.
var rootCmd = &cobra.Command{
	Use:   "queue-ai",
	Short: "queue-ai — emergency department queue analytics and forecasting",
	Long: `queue-ai ingests sensor readings from an emergency department, derives queue
snapshots, and forecasts queue length and wait times with time-series
decomposition.

Quick start:
  queue-ai simulate            # run the sensor simulator on :3001
  queue-ai serve               # start the analytics service on :3000
  queue-ai seed --hours 168    # generate a week of synthetic history
  queue-ai forecast --hours 12 # offline forecast from the archive`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// buildDeps resolves config and constructs the dependency container.
// Called at the start of each command's RunE.
func buildDeps() (*app.Deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	// Apply CLI flag overrides
	cfg.Quiet = globalFlags.Quiet
	cfg.Verbose = globalFlags.Verbose
	cfg.Debug = globalFlags.Debug

	if globalFlags.SensorURL != "" {
		cfg.SensorURL = globalFlags.SensorURL
	}
	if globalFlags.DBPath != "" {
		cfg.DBPath = globalFlags.DBPath
	}
	if globalFlags.Timeout != "" {
		if d, err2 := time.ParseDuration(globalFlags.Timeout); err2 == nil {
			cfg.Timeout = d
		}
	}
	if globalFlags.Rate > 0 {
		cfg.Rate = globalFlags.Rate
	}

	return app.New(cfg), nil
}

func init() {
	pf := rootCmd.PersistentFlags()

	pf.StringVar(&globalFlags.SensorURL, "sensor-url", "",
		"sensor gateway base URL (overrides env QUEUEAI_SENSOR_URL and config.json)")
	pf.StringVar(&globalFlags.DBPath, "db", "",
		"snapshot archive path (overrides env QUEUEAI_DB_PATH and config.json)")
	pf.StringVar(&globalFlags.Format, "format", "",
		"output format: table|json|jsonl|csv (default: table)")
	pf.StringVar(&globalFlags.Out, "out", "",
		"write output to file instead of stdout")
	pf.StringVar(&globalFlags.Timeout, "timeout", "",
		"HTTP request timeout (e.g. 10s, 1m)")
	pf.Float64Var(&globalFlags.Rate, "rate", 0,
		"max sensor requests per second (default: 10.0)")
	pf.BoolVar(&globalFlags.Quiet, "quiet", false,
		"suppress all non-error output")
	pf.BoolVar(&globalFlags.Verbose, "verbose", false,
		"show timing stats after output")
	pf.BoolVar(&globalFlags.Debug, "debug", false,
		"log HTTP requests and responses")
}

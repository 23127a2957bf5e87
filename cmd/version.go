package cmd

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Version is the canonical release string. The default here is the fallback
// for `go run` and untagged builds. Production builds overwrite this via:
//
//	go build -ldflags "-X github.com/eEQK/queue-ai/cmd.Version=v0.2.0"
//
// Set once in the Makefile VERSION variable; never edit this string directly
// for a release.
var Version = "v0.1.0"

// BuildTime is optionally injected at build time alongside Version:
//
//	-ldflags "-X github.com/eEQK/queue-ai/cmd.Version=v0.2.0
//	           -X github.com/eEQK/queue-ai/cmd.BuildTime=2026-08-31T12:00:00Z"
var BuildTime = ""

// versionInfo is the structured payload for --format json output.
// All fields are exported so encoding/json picks them up.
type versionInfo struct {
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	GOOS      string `json:"goos"`
	GOARCH    string `json:"goarch"`
	BuildTime string `json:"build_time,omitempty"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the queue-ai version and build information",
	Long: `Print the queue-ai version string and build metadata.

Default output is plain text, suitable for shell scripts and pipelines.
Use --format json for structured output.

Examples:
  queue-ai version
  queue-ai version --format json
  queue-ai version --format json | jq .version`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format := globalFlags.Format
		if format == "" {
			format = "text"
		}

		info := versionInfo{
			Version:   Version,
			GoVersion: runtime.Version(),
			GOOS:      runtime.GOOS,
			GOARCH:    runtime.GOARCH,
			BuildTime: BuildTime,
		}

		switch format {
		case "json":
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(info)

		case "jsonl":
			// Single object, one line — useful for mixing into a JSONL pipeline.
			b, err := json.Marshal(info)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", b)
			return nil

		default:
			// Plain text — one value per line, grep/awk friendly.
			fmt.Fprintf(cmd.OutOrStdout(), "queue-ai %s\n", info.Version)
			fmt.Fprintf(cmd.OutOrStdout(), "go       %s\n", info.GoVersion)
			fmt.Fprintf(cmd.OutOrStdout(), "os       %s/%s\n", info.GOOS, info.GOARCH)
			if info.BuildTime != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "built    %s\n", info.BuildTime)
			}
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

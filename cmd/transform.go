package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/eEQK/queue-ai/internal/pipeline"
	"github.com/eEQK/queue-ai/internal/transform"
)

var transformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Transform a JSONL time series from stdin",
	Long: `Transform commands read JSONL points from stdin, apply an operation, and
write JSONL to stdout for further piping.`,
}

var smoothWindow int

var smoothCmd = &cobra.Command{
	Use:   "smooth",
	Short: "Apply a trailing moving average",
	Long: `Smooths the series with a trailing moving average. Leading points without a
full window are dropped.`,
	Example: `  queue-ai forecast --hours 48 --format jsonl | queue-ai transform smooth --window 3 | queue-ai chart plot`,
	RunE: func(cmd *cobra.Command, args []string) error {
		metric, points, err := pipeline.ReadSeries(os.Stdin)
		if err != nil {
			return err
		}
		smoothed, err := transform.MovingAverage(points, smoothWindow)
		if err != nil {
			return err
		}
		return pipeline.WriteJSONL(os.Stdout, metric, smoothed)
	},
}

func init() {
	rootCmd.AddCommand(transformCmd)
	transformCmd.AddCommand(smoothCmd)

	smoothCmd.Flags().IntVar(&smoothWindow, "window", 3, "moving average window size")
}

package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/eEQK/queue-ai/internal/chart"
	"github.com/eEQK/queue-ai/internal/pipeline"
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Render a time series as an ASCII chart (reads JSONL from stdin)",
	Long: `Chart commands read JSONL points from stdin and render to the terminal.

Pipeline examples:
  queue-ai forecast --hours 24 --format jsonl | queue-ai chart plot
  queue-ai forecast --type wait-time --format jsonl | queue-ai chart bar`,
}

// ─── chart bar ───────────────────────────────────────────────────────────────

var (
	chartBarWidth   int
	chartBarMaxBars int
)

var chartBarCmd = &cobra.Command{
	Use:   "bar",
	Short: "Horizontal bar chart, one bar per point",
	Long: `Renders a horizontal bar chart with one labeled bar per time point.

Best suited for short windows — a day of hourly values reads well; longer
series should cap the output with --max-bars.`,
	Example: `  queue-ai forecast --hours 12 --format jsonl | queue-ai chart bar
  queue-ai forecast --hours 48 --format jsonl | queue-ai chart bar --max-bars 12`,
	RunE: func(cmd *cobra.Command, args []string) error {
		metric, points, err := pipeline.ReadSeries(os.Stdin)
		if err != nil {
			return err
		}
		if metric == "" {
			metric = "series"
		}
		return chart.Bar(os.Stdout, metric, points, chart.BarOptions{
			Width:   chartBarWidth,
			MaxBars: chartBarMaxBars,
		})
	},
}

// ─── chart plot ──────────────────────────────────────────────────────────────

var (
	chartPlotWidth  int
	chartPlotHeight int
	chartPlotTitle  string
)

var chartPlotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Multi-line ASCII chart with labeled axes",
	Long: `Renders a multi-line chart with Y-axis tick labels and X-axis time labels.

Width auto-detects from $COLUMNS (falls back to 80). Override with --width
and --height.`,
	Example: `  queue-ai forecast --hours 24 --format jsonl | queue-ai chart plot
  queue-ai forecast --type wait-time --format jsonl | queue-ai chart plot --height 8
  queue-ai forecast --hours 72 --format jsonl | queue-ai chart plot --title "3-day outlook"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		metric, points, err := pipeline.ReadSeries(os.Stdin)
		if err != nil {
			return err
		}

		title := chartPlotTitle
		if title == "" {
			title = metric
		}
		if title == "" {
			title = "series"
		}

		return chart.Plot(os.Stdout, title, points, chart.PlotOptions{
			Width:  chartPlotWidth,
			Height: chartPlotHeight,
		})
	},
}

// ─── Registration ─────────────────────────────────────────────────────────────

func init() {
	rootCmd.AddCommand(chartCmd)
	chartCmd.AddCommand(chartBarCmd)
	chartCmd.AddCommand(chartPlotCmd)

	// bar flags
	chartBarCmd.Flags().IntVar(&chartBarWidth, "width", 0,
		"total chart width in characters (default: auto-detect from $COLUMNS, fallback 80)")
	chartBarCmd.Flags().IntVar(&chartBarMaxBars, "max-bars", 0,
		"maximum bars to render — takes the last N if series is longer (0 = no limit)")

	// plot flags
	chartPlotCmd.Flags().IntVar(&chartPlotWidth, "width", 0,
		"chart width in characters (default: auto-detect from $COLUMNS, fallback 80)")
	chartPlotCmd.Flags().IntVar(&chartPlotHeight, "height", 12,
		"chart height in rows (default 12)")
	chartPlotCmd.Flags().StringVar(&chartPlotTitle, "title", "",
		"chart title (default: metric name)")

	chartCmd.SilenceUsage = true
	chartBarCmd.SilenceUsage = true
	chartPlotCmd.SilenceUsage = true
}

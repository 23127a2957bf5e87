package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/eEQK/queue-ai/internal/model"
	"github.com/eEQK/queue-ai/internal/queue"
	"github.com/eEQK/queue-ai/internal/render"
)

var statusAnalytics bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the latest queue snapshot and alerts from the archive",
	Long: `Print the most recent archived snapshot with short-term trends and
threshold alerts. With --analytics, also print the weekly descriptive report:
peak hours, daily volume, bottlenecks, and growth.`,
	Example: `  queue-ai status
  queue-ai status --analytics
  queue-ai status --format json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		window, err := loadWindow(deps.Config.DBPath)
		if err != nil {
			return err
		}

		current, ok := window.Latest()
		if !ok {
			return fmt.Errorf("no snapshots in the archive")
		}
		report := queue.Status(time.Now(), current, window.Recent(24))

		format := resolveFormat()
		return render.To(globalFlags.Out, func(w io.Writer) error {
			if format != render.FormatTable {
				if statusAnalytics {
					return renderStatusJSON(w, report, window.Recent(7*24))
				}
				return render.Snapshots(w, format, []model.QueueSnapshot{current})
			}

			fmt.Fprintf(w, "Queue status at %s\n\n", current.Timestamp.Format("2006-01-02 15:04"))
			if err := render.Snapshots(w, format, []model.QueueSnapshot{current}); err != nil {
				return err
			}
			fmt.Fprintf(w, "\nHourly change: %+d patients   Daily average: %d patients\n",
				report.Trends.HourlyChange, report.Trends.DailyAverage)

			if len(report.Alerts) > 0 {
				fmt.Fprintln(w, "\nAlerts:")
				for _, a := range report.Alerts {
					fmt.Fprintf(w, "  [%s] %s\n", a.Severity, a.Message)
				}
			}

			if statusAnalytics {
				analytics := queue.Analyze(window.Recent(7 * 24))
				fmt.Fprintln(w, "\nWeekly analytics:")
				rows := [][]string{
					{"daily volume", fmt.Sprintf("%d patients", analytics.AverageDailyVolume)},
					{"weekly growth", fmt.Sprintf("%d%%", analytics.Trends.WeeklyGrowth)},
					{"pattern", analytics.Trends.SeasonalPattern},
				}
				for i, p := range analytics.PeakHours {
					rows = append(rows, []string{
						fmt.Sprintf("peak hour %d", i+1),
						fmt.Sprintf("%02d:00 (%d patients, %.0f min wait)", p.Hour, p.AveragePatients, p.AverageWaitTime),
					})
				}
				printKVTable(w, rows)
				for _, b := range analytics.Bottlenecks {
					fmt.Fprintf(w, "  bottleneck: [%s] %s\n", b.Severity, b.Description)
				}
			}
			return nil
		})
	},
}

// renderStatusJSON emits the status report and analytics as one JSON document.
func renderStatusJSON(w io.Writer, report queue.StatusReport, week []model.QueueSnapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"status":    report,
		"analytics": queue.Analyze(week),
	})
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVar(&statusAnalytics, "analytics", false,
		"include the weekly analytics report")
}

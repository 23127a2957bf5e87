package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/eEQK/queue-ai/internal/model"
	"github.com/eEQK/queue-ai/internal/predict"
	"github.com/eEQK/queue-ai/internal/render"
)

var (
	forecastType  string
	forecastHours int
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Forecast queue length or wait times from archived history",
	Long: `Run an offline forecast over the snapshot archive.

The retained week of snapshots is loaded from the archive; no service or
sensor gateway needs to be running.`,
	Example: `  queue-ai forecast --hours 12
  queue-ai forecast --type wait-time --hours 24 --format json
  queue-ai forecast --hours 24 --format jsonl | queue-ai chart plot`,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		metric, err := parseMetric(forecastType)
		if err != nil {
			return err
		}

		window, err := loadWindow(deps.Config.DBPath)
		if err != nil {
			return err
		}

		svc := predict.NewService(window, nil)
		start := time.Now()
		res, err := svc.Predict(metric, forecastHours)
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		format := resolveFormat()
		return render.To(globalFlags.Out, func(w io.Writer) error {
			if err := render.Forecast(w, format, metric, res.Points); err != nil {
				return err
			}
			render.Footer(w, res.GeneratedAt, len(res.Points), elapsed, deps.Config.Verbose)
			return nil
		})
	},
}

// parseMetric maps the --type flag onto a Metric, defaulting to queue length.
func parseMetric(raw string) (model.Metric, error) {
	switch raw {
	case "", string(model.MetricQueueLength):
		return model.MetricQueueLength, nil
	case string(model.MetricWaitTime):
		return model.MetricWaitTime, nil
	}
	return "", fmt.Errorf("invalid --type %q: expected queue-length or wait-time", raw)
}

func init() {
	rootCmd.AddCommand(forecastCmd)

	forecastCmd.Flags().StringVar(&forecastType, "type", "",
		"metric to forecast: queue-length|wait-time (default: queue-length)")
	forecastCmd.Flags().IntVar(&forecastHours, "hours", 6,
		"forecast horizon in hours (1-72)")
}

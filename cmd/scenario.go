package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/eEQK/queue-ai/internal/model"
	"github.com/eEQK/queue-ai/internal/predict"
	"github.com/eEQK/queue-ai/internal/render"
	"github.com/eEQK/queue-ai/internal/scenario"
)

var (
	scenarioMultiplier float64
	scenarioHours      int
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario <name>",
	Short: "Model a what-if load scenario over the forecast",
	Long: `Scale the baseline forecast by a named scenario's load multiplier.

Scenarios: normal, high_volume, emergency, staff_shortage. Queue length
scales linearly with the combined multiplier; wait times scale by its square
root, except under staff_shortage where service capacity itself degrades.`,
	Example: `  queue-ai scenario emergency --hours 12
  queue-ai scenario high_volume --multiplier 1.2
  queue-ai scenario staff_shortage --format json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		window, err := loadWindow(deps.Config.DBPath)
		if err != nil {
			return err
		}

		svc := predict.NewService(window, nil)
		start := time.Now()
		res, err := svc.Scenario(scenario.Name(args[0]), scenarioMultiplier, scenarioHours)
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		format := resolveFormat()
		return render.To(globalFlags.Out, func(w io.Writer) error {
			if format != render.FormatTable {
				return render.Forecast(w, format, model.MetricQueueLength, res.Predictions.QueueLength)
			}

			fmt.Fprintf(w, "Scenario: %s (multiplier %.2f)\n%s\n\n", res.Name, res.Multiplier, res.Description)
			fmt.Fprintln(w, "Queue length:")
			if err := render.Forecast(w, format, model.MetricQueueLength, res.Predictions.QueueLength); err != nil {
				return err
			}
			fmt.Fprintln(w, "\nWait times:")
			if err := render.Forecast(w, format, model.MetricWaitTime, res.Predictions.WaitTimes); err != nil {
				return err
			}
			fmt.Fprintln(w)
			if err := render.Insights(w, format, res.Insights); err != nil {
				return err
			}
			render.Footer(w, start, len(res.Predictions.QueueLength), elapsed, deps.Config.Verbose)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(scenarioCmd)

	scenarioCmd.Flags().Float64Var(&scenarioMultiplier, "multiplier", 1.0,
		"baseline multiplier applied on top of the scenario's own factor")
	scenarioCmd.Flags().IntVar(&scenarioHours, "hours", 12,
		"scenario duration in hours (1-72)")
}

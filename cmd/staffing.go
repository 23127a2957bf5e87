package cmd

import (
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/eEQK/queue-ai/internal/predict"
	"github.com/eEQK/queue-ai/internal/render"
)

var staffingHours int

var staffingCmd = &cobra.Command{
	Use:   "staffing",
	Short: "Recommend staffing levels from the queue-length forecast",
	Long: `Forecast queue length over the given horizon and map each hour to a
recommended staff level with an urgency band and reasoning.`,
	Example: `  queue-ai staffing --hours 24
  queue-ai staffing --hours 12 --format json`,
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
		plan, err := svc.Staffing(staffingHours)
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		format := resolveFormat()
		return render.To(globalFlags.Out, func(w io.Writer) error {
			if err := render.StaffingPlan(w, format, plan); err != nil {
				return err
			}
			render.Footer(w, start, len(plan.Recommendations), elapsed, deps.Config.Verbose)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(staffingCmd)

	staffingCmd.Flags().IntVar(&staffingHours, "hours", 24,
		"forecast horizon in hours (1-72)")
}

// Package render converts analytics payloads into human-readable or
// machine-parseable output. Each format is a separate function; the
// top-level dispatchers select based on the format string.
package render

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/eEQK/queue-ai/internal/model"
	"github.com/eEQK/queue-ai/internal/pipeline"
	"github.com/eEQK/queue-ai/internal/staffing"
)

// Format constants matching --format flag values.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
	FormatCSV   = "csv"
)

const timestampFormat = "2006-01-02 15:04"

// To writes with the given render function to stdout by default; if path is
// non-empty, writes to a file instead.
func To(path string, render func(io.Writer) error) error {
	if path == "" {
		return render(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()
	return render(f)
}

// ─── Forecast ─────────────────────────────────────────────────────────────────

// Forecast writes forecast points in the requested format.
func Forecast(w io.Writer, format string, metric model.Metric, points []model.ForecastPoint) error {
	switch format {
	case FormatJSON:
		return renderJSON(w, map[string]any{
			"metric":      metric,
			"predictions": points,
		})
	case FormatJSONL:
		series := make([]model.TimePoint, len(points))
		for i, p := range points {
			series[i] = model.TimePoint{Timestamp: p.Timestamp, Value: p.ForecastedValue}
		}
		return pipeline.WriteJSONL(w, string(metric), series)
	case FormatCSV:
		rows := [][]string{{"timestamp", "forecast", "ci_lower", "ci_upper"}}
		for _, p := range points {
			rows = append(rows, []string{
				p.Timestamp.Format(time.RFC3339),
				formatValue(p.ForecastedValue),
				formatValue(p.ConfidenceInterval.Lower),
				formatValue(p.ConfidenceInterval.Upper),
			})
		}
		return csv.NewWriter(w).WriteAll(rows)
	default:
		unit := metric.Unit()
		table(w, []string{"Time", "Forecast (" + unit + ")", "CI Lower", "CI Upper"}, func(add func(...string)) {
			for _, p := range points {
				add(
					p.Timestamp.Format(timestampFormat),
					formatValue(p.ForecastedValue),
					formatValue(p.ConfidenceInterval.Lower),
					formatValue(p.ConfidenceInterval.Upper),
				)
			}
		})
		return nil
	}
}

// ─── Snapshots ────────────────────────────────────────────────────────────────

// Snapshots writes queue snapshots in the requested format.
func Snapshots(w io.Writer, format string, snaps []model.QueueSnapshot) error {
	switch format {
	case FormatJSON:
		return renderJSON(w, snaps)
	case FormatJSONL:
		enc := json.NewEncoder(w)
		for _, s := range snaps {
			if err := enc.Encode(s); err != nil {
				return err
			}
		}
		return nil
	case FormatCSV:
		rows := [][]string{{"timestamp", "total_patients", "waiting", "avg_wait_min", "critical", "urgent", "standard", "rooms_occupied", "rooms_total"}}
		for _, s := range snaps {
			rows = append(rows, []string{
				s.Timestamp.Format(time.RFC3339),
				strconv.Itoa(s.TotalPatients),
				strconv.Itoa(s.WaitingPatients),
				formatValue(s.AverageWaitTime),
				strconv.Itoa(s.Triage.Critical),
				strconv.Itoa(s.Triage.Urgent),
				strconv.Itoa(s.Triage.Standard),
				strconv.Itoa(s.RoomOccupancy.Occupied),
				strconv.Itoa(s.RoomOccupancy.Total),
			})
		}
		return csv.NewWriter(w).WriteAll(rows)
	default:
		table(w, []string{"Time", "Patients", "Waiting", "Avg Wait", "Critical", "Urgent", "Standard", "Rooms"}, func(add func(...string)) {
			for _, s := range snaps {
				add(
					s.Timestamp.Format(timestampFormat),
					strconv.Itoa(s.TotalPatients),
					strconv.Itoa(s.WaitingPatients),
					fmt.Sprintf("%s min", formatValue(s.AverageWaitTime)),
					strconv.Itoa(s.Triage.Critical),
					strconv.Itoa(s.Triage.Urgent),
					strconv.Itoa(s.Triage.Standard),
					fmt.Sprintf("%d/%d", s.RoomOccupancy.Occupied, s.RoomOccupancy.Total),
				)
			}
		})
		return nil
	}
}

// ─── Staffing ─────────────────────────────────────────────────────────────────

// StaffingPlan writes a staffing plan in the requested format.
func StaffingPlan(w io.Writer, format string, plan staffing.Plan) error {
	switch format {
	case FormatJSON, FormatJSONL:
		return renderJSON(w, plan)
	case FormatCSV:
		rows := [][]string{{"time_slot", "recommended_staff", "urgency", "reasoning"}}
		for _, r := range plan.Recommendations {
			rows = append(rows, []string{
				r.TimeSlot.Format(time.RFC3339),
				strconv.Itoa(r.RecommendedStaff),
				string(r.Urgency),
				r.Reasoning,
			})
		}
		return csv.NewWriter(w).WriteAll(rows)
	default:
		table(w, []string{"Time", "Staff", "Urgency", "Reasoning"}, func(add func(...string)) {
			for _, r := range plan.Recommendations {
				add(
					r.TimeSlot.Format(timestampFormat),
					strconv.Itoa(r.RecommendedStaff),
					string(r.Urgency),
					r.Reasoning,
				)
			}
		})
		fmt.Fprintf(w, "\nAdditional staff hours: %d  Cost impact: %s\n",
			plan.Summary.TotalAdditionalStaffHours, plan.Summary.CostImpact)
		return nil
	}
}

// ─── Insights ─────────────────────────────────────────────────────────────────

// Insights writes generated insights in the requested format.
func Insights(w io.Writer, format string, insights []model.Insight) error {
	switch format {
	case FormatJSON, FormatJSONL:
		return renderJSON(w, insights)
	default:
		table(w, []string{"Type", "Severity", "Confidence", "Description"}, func(add func(...string)) {
			for _, in := range insights {
				add(
					string(in.Type),
					string(in.Severity),
					fmt.Sprintf("%.0f%%", in.Confidence*100),
					in.Description,
				)
			}
		})
		return nil
	}
}

// ─── Shared ───────────────────────────────────────────────────────────────────

// Footer writes a timing footer to w when verbose mode is on.
func Footer(w io.Writer, generatedAt time.Time, items int, elapsed time.Duration, verbose bool) {
	if !verbose {
		return
	}
	fmt.Fprintf(w, "\n[%s • %d items • %dms]\n",
		generatedAt.Format(time.RFC3339), items, elapsed.Milliseconds())
}

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// table renders a simple table with headers using tablewriter.
func table(w io.Writer, headers []string, fill func(add func(...string))) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(headers)
	tw.SetBorder(true)
	tw.SetRowLine(false)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAutoWrapText(false)

	fill(func(cols ...string) {
		tw.Append(cols)
	})
	tw.Render()
}

// formatValue prints a float without trailing noise: whole numbers drop the
// decimal part.
func formatValue(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

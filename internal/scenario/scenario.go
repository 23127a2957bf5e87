// Package scenario applies deterministic multiplicative transforms to a base
// forecast to answer "what if" queries. All functions are pure; no I/O.
package scenario

import (
	"fmt"
	"math"
	"time"

	"github.com/eEQK/queue-ai/internal/forecast"
	"github.com/eEQK/queue-ai/internal/model"
	"github.com/eEQK/queue-ai/internal/util"
)

// Name identifies an operating-condition scenario.
type Name string

const (
	Normal        Name = "normal"
	HighVolume    Name = "high_volume"
	Emergency     Name = "emergency"
	StaffShortage Name = "staff_shortage"
)

// multipliers is the fixed scenario multiplier table.
var multipliers = map[Name]float64{
	Normal:        1.0,
	HighVolume:    1.5,
	Emergency:     2.0,
	StaffShortage: 1.3,
}

// descriptions underpin the scenario_analysis insight text.
var descriptions = map[Name]string{
	Normal:        "Normal operational scenario",
	HighVolume:    "High volume scenario with 50% increased patient load",
	Emergency:     "Emergency scenario with doubled patient load",
	StaffShortage: "Staff shortage scenario with 30% increased wait times",
}

var actions = map[Name]string{
	HighVolume:    "Prepare for increased patient volume",
	Emergency:     "Activate emergency protocols and call additional staff",
	StaffShortage: "Arrange backup staffing and extend shifts",
}

// Bundle is a pair of base forecasts to transform.
type Bundle struct {
	QueueLength []model.ForecastPoint `json:"queue_length"`
	WaitTimes   []model.ForecastPoint `json:"wait_times"`
}

// Result is the outcome of a scenario run.
type Result struct {
	Name        Name            `json:"name"`
	Description string          `json:"description"`
	Multiplier  float64         `json:"multiplier"`
	Predictions Bundle          `json:"predictions"`
	Insights    []model.Insight `json:"insights"`
}

// Apply scales the base forecasts by the scenario's multiplier table.
//
// Queue-length forecasts scale linearly. Wait-time forecasts scale by the
// square root of the combined multiplier (shared throughput absorbs part of a
// volume surge), except under staff_shortage where throughput itself shrinks
// and the inflation is linear.
// Non-normal scenarios append one scenario_analysis insight.
func Apply(base Bundle, name Name, baselineMultiplier float64, durationHours int) (Result, error) {
	return ApplyAt(time.Now(), base, name, baselineMultiplier, durationHours)
}

// ApplyAt is Apply with an explicit clock for the insight timeframe.
func ApplyAt(now time.Time, base Bundle, name Name, baselineMultiplier float64, durationHours int) (Result, error) {
	mult, ok := multipliers[name]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", forecast.ErrInvalidScenario, name)
	}
	if baselineMultiplier <= 0 {
		baselineMultiplier = 1.0
	}

	combined := mult * baselineMultiplier
	waitFactor := math.Sqrt(combined)
	if name == StaffShortage {
		waitFactor = combined
	}

	result := Result{
		Name:        name,
		Description: descriptions[name],
		Multiplier:  mult,
		Predictions: Bundle{
			QueueLength: scale(base.QueueLength, combined),
			WaitTimes:   scale(base.WaitTimes, waitFactor),
		},
	}

	if name != Normal {
		severity := model.SeverityWarning
		if name == Emergency {
			severity = model.SeverityCritical
		}
		result.Insights = append(result.Insights, model.Insight{
			Type:              model.InsightScenarioAnalysis,
			Severity:          severity,
			Description:       descriptions[name] + " - immediate action may be required",
			RecommendedAction: actions[name],
			Timeframe: model.Timeframe{
				Start: now,
				End:   now.Add(time.Duration(durationHours) * time.Hour),
			},
			Confidence: 0.8,
		})
	}
	return result, nil
}

// scale multiplies values and both confidence bounds by factor.
func scale(points []model.ForecastPoint, factor float64) []model.ForecastPoint {
	out := make([]model.ForecastPoint, len(points))
	for i, p := range points {
		p.ForecastedValue = util.Round2(p.ForecastedValue * factor)
		p.ConfidenceInterval.Lower = util.Round2(p.ConfidenceInterval.Lower * factor)
		p.ConfidenceInterval.Upper = util.Round2(p.ConfidenceInterval.Upper * factor)
		out[i] = p
	}
	return out
}

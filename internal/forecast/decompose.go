// Package forecast implements the deterministic time-series decomposition and
// forecasting engine. All functions are pure computations over bounded
// in-memory windows; no I/O, no hidden randomness, no model training step.
package forecast

import (
	"sort"

	"github.com/eEQK/queue-ai/internal/model"
)

// seasonLength is the assumed season size: one daily cycle of hourly steps.
const seasonLength = 24

// minSeasonPoints is the minimum series length for seasonal extraction —
// two complete cycles.
const minSeasonPoints = 2 * seasonLength

// Components holds the decomposition of a raw series. Derived value,
// recomputed on every forecast request and never persisted.
type Components struct {
	// Trend is the weighted least-squares slope per step, with later
	// observations weighted up to 3x earlier ones.
	Trend float64 `json:"trend"`

	// HourlyPattern maps hour-of-day (0-23) to mean deviation from the
	// baseline. Hours with no observations are absent and contribute 0.
	HourlyPattern map[int]float64 `json:"hourly_pattern"`

	// DayOfWeekPattern maps weekday (0=Sunday..6=Saturday) to mean deviation
	// from the baseline.
	DayOfWeekPattern map[int]float64 `json:"day_of_week_pattern"`

	// Seasonality is a 24-point residual daily profile, empty when the
	// series is shorter than two complete cycles.
	Seasonality []float64 `json:"seasonality"`
}

// Decompose extracts trend, hour-of-day pattern, day-of-week pattern, and
// (given enough data) a daily seasonal profile from a chronologically sorted
// series.
func Decompose(series []model.TimePoint) Components {
	return Components{
		Trend:            weightedTrend(series),
		HourlyPattern:    hourlyPattern(series),
		DayOfWeekPattern: dayOfWeekPattern(series),
		Seasonality:      seasonality(series),
	}
}

// ─── Trend ────────────────────────────────────────────────────────────────────

// weightedTrend fits a weighted least-squares slope over index vs value,
// where weight for index i is 1 + (i/n)*2. Returns 0 for degenerate series
// (fewer than 5 points or zero denominator).
func weightedTrend(series []model.TimePoint) float64 {
	n := len(series)
	if n < 5 {
		return 0
	}

	var sumW, sumWX, sumWY, sumWXY, sumWX2 float64
	for i, p := range series {
		x := float64(i)
		w := 1 + (float64(i)/float64(n))*2
		sumW += w
		sumWX += w * x
		sumWY += w * p.Value
		sumWXY += w * x * p.Value
		sumWX2 += w * x * x
	}

	denom := sumW*sumWX2 - sumWX*sumWX
	if denom == 0 {
		return 0
	}
	return (sumW*sumWXY - sumWX*sumWY) / denom
}

// Slope fits an ordinary (unweighted) least-squares slope over index vs
// value. Used by insight rules comparing recent and predicted trends.
// Returns 0 for series shorter than 2 points or a degenerate denominator.
func Slope(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}

	var sumX, sumY, sumXY, sumX2 float64
	for i, v := range values {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumX2 += x * x
	}

	denom := float64(n)*sumX2 - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (float64(n)*sumXY - sumX*sumY) / denom
}

// ─── Baseline ────────────────────────────────────────────────────────────────

// baseline returns the median of the series values — robust to the outliers
// a raw emergency-department feed produces. Callers guarantee a non-empty
// series.
func baseline(series []model.TimePoint) float64 {
	sorted := make([]float64, len(series))
	for i, p := range series {
		sorted[i] = p.Value
	}
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// ─── Calendar Patterns ────────────────────────────────────────────────────────

// hourlyPattern buckets deviations from the baseline by hour of day and
// averages each bucket.
func hourlyPattern(series []model.TimePoint) map[int]float64 {
	return bucketDeviations(series, func(p model.TimePoint) int {
		return p.Timestamp.Hour()
	})
}

// dayOfWeekPattern buckets deviations from the baseline by weekday
// (0=Sunday..6=Saturday).
func dayOfWeekPattern(series []model.TimePoint) map[int]float64 {
	return bucketDeviations(series, func(p model.TimePoint) int {
		return int(p.Timestamp.Weekday())
	})
}

func bucketDeviations(series []model.TimePoint, key func(model.TimePoint) int) map[int]float64 {
	pattern := make(map[int]float64)
	if len(series) == 0 {
		return pattern
	}

	base := baseline(series)
	counts := make(map[int]int)
	for _, p := range series {
		k := key(p)
		pattern[k] += p.Value - base
		counts[k]++
	}
	for k, sum := range pattern {
		pattern[k] = sum / float64(counts[k])
	}
	return pattern
}

// ─── Seasonality ─────────────────────────────────────────────────────────────

// seasonality averages each of the 24 season-phase indices across all
// complete daily cycles and subtracts the baseline, capturing residual cyclic
// effects not explained by trend and calendar patterns. Series shorter than
// two cycles yield an empty profile (zero contribution downstream).
func seasonality(series []model.TimePoint) []float64 {
	if len(series) < minSeasonPoints {
		return nil
	}

	cycles := len(series) / seasonLength
	profile := make([]float64, seasonLength)
	for c := 0; c < cycles; c++ {
		for i := 0; i < seasonLength; i++ {
			profile[i] += series[c*seasonLength+i].Value
		}
	}

	base := baseline(series)
	for i := range profile {
		profile[i] = profile[i]/float64(cycles) - base
	}
	return profile
}

package forecast

import (
	"time"

	"github.com/eEQK/queue-ai/internal/model"
	"github.com/eEQK/queue-ai/internal/util"
)

// minPoints is the minimum series length forecast functions accept.
const minPoints = 5

// Confidence interval growth: 5% base plus 1% per step ahead.
const (
	confidenceBase = 0.05
	confidenceStep = 0.01
)

// Forecast produces a horizon-step hourly forecast for the series, anchored
// at the current wall clock. The series must be chronologically sorted; the
// horizon is a positive step count, bounded by the caller.
func Forecast(series []model.TimePoint, horizon int) ([]model.ForecastPoint, error) {
	return ForecastFrom(time.Now(), series, horizon)
}

// ForecastFrom is Forecast with an explicit reference time. Two calls with
// identical inputs produce identical output.
//
// Each step i (0-based) forecasts the instant now + (i+1) hours as the last
// observed value plus the trend projection and whichever calendar/seasonal
// deviations apply, clamped non-negative. Confidence intervals widen by 1%
// per step from a 5% base.
func ForecastFrom(now time.Time, series []model.TimePoint, horizon int) ([]model.ForecastPoint, error) {
	if len(series) == 0 {
		return nil, ErrEmptySeries
	}
	if len(series) < minPoints {
		return nil, ErrInsufficientData
	}

	comps := Decompose(series)
	last := series[len(series)-1].Value

	points := make([]model.ForecastPoint, 0, horizon)
	for i := 0; i < horizon; i++ {
		at := now.Add(time.Duration(i+1) * time.Hour)

		value := last + comps.Trend*float64(i+1)
		value += comps.HourlyPattern[at.Hour()]
		value += comps.DayOfWeekPattern[int(at.Weekday())]
		if len(comps.Seasonality) > 0 {
			value += comps.Seasonality[i%seasonLength]
		}
		if value < 0 {
			value = 0
		}

		cf := confidenceBase + float64(i)*confidenceStep
		lower := value * (1 - cf)
		if lower < 0 {
			lower = 0
		}

		points = append(points, model.ForecastPoint{
			Timestamp:       at,
			ForecastedValue: util.Round2(value),
			ConfidenceInterval: model.ConfidenceInterval{
				Lower: util.Round2(lower),
				Upper: util.Round2(value * (1 + cf)),
			},
			HorizonIndex: i,
		})
	}
	return points, nil
}

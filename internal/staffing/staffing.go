// Package staffing maps queue-length forecasts to staffing recommendation
// bands and capacity risk tiers. All functions are pure; no I/O.
package staffing

import (
	"fmt"
	"math"
	"time"

	"github.com/eEQK/queue-ai/internal/model"
)

// BaselineStaff is the minimum staff level assumed always available.
const BaselineStaff = 5

// Tier boundaries and divisors. Evaluated top-down, first match wins.
const (
	highTierThreshold   = 80
	highTierDivisor     = 10
	mediumTierThreshold = 50
	mediumTierDivisor   = 12
)

// Cost impact bands on total additional staff hours.
const (
	costHighHours   = 50
	costMediumHours = 20
)

// Summary aggregates a staffing plan.
type Summary struct {
	TotalAdditionalStaffHours int                `json:"total_additional_staff_hours"`
	PeakPeriods               []model.PeakPeriod `json:"peak_periods"`
	CostImpact                string             `json:"cost_impact"` // High|Medium|Low
}

// Plan is the full staffing response for one forecast set.
type Plan struct {
	Recommendations []model.StaffingRecommendation `json:"recommendations"`
	Summary         Summary                        `json:"summary"`
}

// Recommend produces one recommendation per queue-length forecast slot.
func Recommend(queueForecast []model.ForecastPoint) Plan {
	recs := make([]model.StaffingRecommendation, 0, len(queueForecast))
	peaks := make([]model.PeakPeriod, 0)
	totalAdditional := 0

	for _, p := range queueForecast {
		expected := p.ForecastedValue
		staff := BaselineStaff
		urgency := model.UrgencyLow
		reasoning := "Normal staffing sufficient"

		switch {
		case expected > highTierThreshold:
			staff = int(math.Ceil(expected / highTierDivisor))
			urgency = model.UrgencyHigh
			reasoning = fmt.Sprintf("High patient volume (%d) requires additional staff",
				int(math.Round(expected)))
		case expected > mediumTierThreshold:
			staff = int(math.Ceil(expected / mediumTierDivisor))
			urgency = model.UrgencyMedium
			reasoning = "Moderate increase in patient volume requires staff adjustment"
		}

		if urgency != model.UrgencyLow {
			if extra := staff - BaselineStaff; extra > 0 {
				totalAdditional += extra
			}
			peaks = append(peaks, model.PeakPeriod{
				Start:    p.Timestamp,
				End:      p.Timestamp.Add(time.Hour),
				Severity: string(urgency),
			})
		}

		recs = append(recs, model.StaffingRecommendation{
			TimeSlot:         p.Timestamp,
			RecommendedStaff: staff,
			Reasoning:        reasoning,
			Urgency:          urgency,
		})
	}

	return Plan{
		Recommendations: recs,
		Summary: Summary{
			TotalAdditionalStaffHours: totalAdditional,
			PeakPeriods:               peaks,
			CostImpact:                costImpact(totalAdditional),
		},
	}
}

func costImpact(additionalHours int) string {
	switch {
	case additionalHours > costHighHours:
		return "High"
	case additionalHours > costMediumHours:
		return "Medium"
	default:
		return "Low"
	}
}

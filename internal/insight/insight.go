// Package insight scans forecasts against recent history to emit qualitative
// alerts. All rules are pure; no I/O.
package insight

import (
	"fmt"
	"math"
	"time"

	"github.com/eEQK/queue-ai/internal/forecast"
	"github.com/eEQK/queue-ai/internal/model"
)

// Rule thresholds. Fixed policy constants per metric type, not derived.
const (
	peakThreshold         = 50
	peakCriticalThreshold = 80

	capacityQueueThreshold = 60 // patients
	capacityWaitThreshold  = 30 // minutes

	trendWindow         = 6
	trendQueueThreshold = 5
	trendWaitThreshold  = 3
)

// Generate evaluates the three independent insight rules against a forecast
// set. Zero to three insights may fire; evaluation order is peak → capacity →
// trend. The history window is only consulted by the trend-change rule.
func Generate(points []model.ForecastPoint, history []model.TimePoint, metric model.Metric) []model.Insight {
	return GenerateAt(time.Now(), points, history, metric)
}

// GenerateAt is Generate with an explicit clock for the trend-change
// timeframe.
func GenerateAt(now time.Time, points []model.ForecastPoint, history []model.TimePoint, metric model.Metric) []model.Insight {
	var insights []model.Insight
	if len(points) == 0 {
		return insights
	}

	if ins, ok := peakInsight(points, metric); ok {
		insights = append(insights, ins)
	}
	if ins, ok := capacityInsight(points, metric); ok {
		insights = append(insights, ins)
	}
	if ins, ok := trendInsight(now, points, history, metric); ok {
		insights = append(insights, ins)
	}
	return insights
}

// ─── Peak Prediction ──────────────────────────────────────────────────────────

func peakInsight(points []model.ForecastPoint, metric model.Metric) (model.Insight, bool) {
	peak := points[0]
	for _, p := range points[1:] {
		if p.ForecastedValue > peak.ForecastedValue {
			peak = p
		}
	}
	if peak.ForecastedValue <= peakThreshold {
		return model.Insight{}, false
	}

	severity := model.SeverityWarning
	if peak.ForecastedValue > peakCriticalThreshold {
		severity = model.SeverityCritical
	}

	action := "Consider increasing staffing levels during peak hours"
	if metric == model.MetricWaitTime {
		action = "Consider adjusting appointment schedules to reduce wait times"
	}

	return model.Insight{
		Type:     model.InsightPeakPrediction,
		Severity: severity,
		Description: fmt.Sprintf("Peak %s of %d %s predicted at %s",
			metric.Label(), int(math.Round(peak.ForecastedValue)), metric.Unit(),
			peak.Timestamp.Format("15:04")),
		RecommendedAction: action,
		Timeframe: model.Timeframe{
			Start: peak.Timestamp,
			End:   peak.Timestamp.Add(time.Hour),
		},
		Confidence: 0.8,
	}, true
}

// ─── Capacity Warning ─────────────────────────────────────────────────────────

func capacityInsight(points []model.ForecastPoint, metric model.Metric) (model.Insight, bool) {
	var sum float64
	for _, p := range points {
		sum += p.ForecastedValue
	}
	avg := sum / float64(len(points))

	threshold := float64(capacityQueueThreshold)
	action := "Review resource allocation and staffing schedules"
	if metric == model.MetricWaitTime {
		threshold = capacityWaitThreshold
		action = "Consider additional resources to process patients more efficiently"
	}
	if avg <= threshold {
		return model.Insight{}, false
	}

	return model.Insight{
		Type:              model.InsightCapacityWarning,
		Severity:          model.SeverityWarning,
		Description:       fmt.Sprintf("Average predicted %s exceeds normal capacity", metric.Label()),
		RecommendedAction: action,
		Timeframe: model.Timeframe{
			Start: points[0].Timestamp,
			End:   points[len(points)-1].Timestamp,
		},
		Confidence: 0.75,
	}, true
}

// ─── Trend Change ─────────────────────────────────────────────────────────────

func trendInsight(now time.Time, points []model.ForecastPoint, history []model.TimePoint, metric model.Metric) (model.Insight, bool) {
	if len(history) < trendWindow || len(points) < trendWindow {
		return model.Insight{}, false
	}

	recent := make([]float64, trendWindow)
	for i, p := range history[len(history)-trendWindow:] {
		recent[i] = p.Value
	}
	predicted := make([]float64, trendWindow)
	for i, p := range points[:trendWindow] {
		predicted[i] = p.ForecastedValue
	}

	recentTrend := forecast.Slope(recent)
	predictedTrend := forecast.Slope(predicted)

	threshold := float64(trendQueueThreshold)
	if metric == model.MetricWaitTime {
		threshold = trendWaitThreshold
	}
	if math.Abs(predictedTrend-recentTrend) <= threshold {
		return model.Insight{}, false
	}

	subject := "patient volume"
	if metric == model.MetricWaitTime {
		subject = "wait times"
	}
	direction := "Decreasing"
	action := "Opportunity to reallocate resources if the decrease continues"
	if predictedTrend > recentTrend {
		direction = "Increasing"
		action = "Prepare for increased demand in the coming hours"
	}

	return model.Insight{
		Type:              model.InsightTrendChange,
		Severity:          model.SeverityInfo,
		Description:       fmt.Sprintf("%s trend detected in %s", direction, subject),
		RecommendedAction: action,
		Timeframe: model.Timeframe{
			Start: now,
			End:   points[trendWindow-1].Timestamp,
		},
		Confidence: 0.7,
	}, true
}

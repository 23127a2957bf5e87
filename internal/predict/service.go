// Package predict orchestrates the analytics engine over the snapshot
// history: it extracts metric series from the window, runs forecasts,
// insights, staffing, scenario, and capacity projections, and assembles the
// composite payloads the HTTP API and CLI both serve.
package predict

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/eEQK/queue-ai/internal/forecast"
	"github.com/eEQK/queue-ai/internal/history"
	"github.com/eEQK/queue-ai/internal/insight"
	"github.com/eEQK/queue-ai/internal/metrics"
	"github.com/eEQK/queue-ai/internal/model"
	"github.com/eEQK/queue-ai/internal/scenario"
	"github.com/eEQK/queue-ai/internal/staffing"
	"github.com/eEQK/queue-ai/internal/transform"
	"github.com/eEQK/queue-ai/internal/util"
)

// Horizon and lookback bounds enforced at the service boundary.
const (
	MaxBasicHorizon    = 24
	MaxAdvancedHorizon = 72
	MaxLookbackHours   = 168
	MaxCapacityDays    = 14
	minLookbackHours   = 48
)

// Service runs analytics over a history window. m may be nil to disable
// instrumentation (CLI usage).
type Service struct {
	window *history.Window
	m      *metrics.Metrics
	now    func() time.Time
	seed   func() int64
}

// NewService builds a Service over the given window.
func NewService(window *history.Window, m *metrics.Metrics) *Service {
	return &Service{
		window: window,
		m:      m,
		now:    time.Now,
		seed:   func() int64 { return time.Now().UnixNano() },
	}
}

// series extracts one metric's time points from the last lookback hours.
func (s *Service) series(metric model.Metric, lookback int) []model.TimePoint {
	snaps := s.window.Recent(lookback)
	if metric == model.MetricWaitTime {
		return model.WaitSeries(snaps)
	}
	return model.QueueSeries(snaps)
}

// lookbackFor sizes the history slice for a forecast horizon: at least two
// full days, at most the retained week.
func lookbackFor(hours int) int {
	lb := hours * 2
	if lb < minLookbackHours {
		lb = minLookbackHours
	}
	if lb > MaxLookbackHours {
		lb = MaxLookbackHours
	}
	return lb
}

// forecastSeries runs one instrumented forecast.
func (s *Service) forecastSeries(now time.Time, series []model.TimePoint, hours int) ([]model.ForecastPoint, error) {
	start := time.Now()
	points, err := forecast.ForecastFrom(now, series, hours)
	if s.m != nil {
		s.m.ForecastLatency.Observe(time.Since(start).Seconds())
	}
	return points, err
}

// Prediction is a single-metric forecast with provenance.
type Prediction struct {
	Metric         model.Metric          `json:"metric"`
	ForecastHours  int                   `json:"forecast_hours"`
	Points         []model.ForecastPoint `json:"predictions"`
	DataPointsUsed int                   `json:"data_points_used"`
	GeneratedAt    time.Time             `json:"generated_at"`
}

// Predict forecasts one metric. hours must be within [1, MaxAdvancedHorizon];
// the basic API path clamps to MaxBasicHorizon before calling.
func (s *Service) Predict(metric model.Metric, hours int) (Prediction, error) {
	if hours < 1 || hours > MaxAdvancedHorizon {
		return Prediction{}, fmt.Errorf("%w: forecast hours %d outside 1..%d",
			forecast.ErrInvalidRange, hours, MaxAdvancedHorizon)
	}

	now := s.now()
	series := s.series(metric, lookbackFor(hours))
	points, err := s.forecastSeries(now, series, hours)
	if err != nil {
		return Prediction{}, err
	}
	return Prediction{
		Metric:         metric,
		ForecastHours:  hours,
		Points:         points,
		DataPointsUsed: len(series),
		GeneratedAt:    now,
	}, nil
}

// MetricsResult is the combined two-metric forecast with insights.
type MetricsResult struct {
	QueueLength    []model.ForecastPoint `json:"queue_length"`
	WaitTimes      []model.ForecastPoint `json:"wait_times"`
	Insights       []model.Insight       `json:"insights"`
	DataPointsUsed int                   `json:"data_points_used"`
	GeneratedAt    time.Time             `json:"generated_at"`
}

// Metrics forecasts both metrics over the same horizon and generates
// combined insights, queue-length first.
func (s *Service) Metrics(hours int) (MetricsResult, error) {
	if hours < 1 || hours > MaxAdvancedHorizon {
		return MetricsResult{}, fmt.Errorf("%w: forecast hours %d outside 1..%d",
			forecast.ErrInvalidRange, hours, MaxAdvancedHorizon)
	}

	now := s.now()
	lookback := lookbackFor(hours)
	queueSeries := s.series(model.MetricQueueLength, lookback)
	waitSeries := s.series(model.MetricWaitTime, lookback)

	queuePoints, err := s.forecastSeries(now, queueSeries, hours)
	if err != nil {
		return MetricsResult{}, fmt.Errorf("queue-length forecast: %w", err)
	}
	waitPoints, err := s.forecastSeries(now, waitSeries, hours)
	if err != nil {
		return MetricsResult{}, fmt.Errorf("wait-time forecast: %w", err)
	}

	insights := insight.GenerateAt(now, queuePoints, queueSeries, model.MetricQueueLength)
	insights = append(insights, insight.GenerateAt(now, waitPoints, waitSeries, model.MetricWaitTime)...)

	return MetricsResult{
		QueueLength:    queuePoints,
		WaitTimes:      waitPoints,
		Insights:       insights,
		DataPointsUsed: len(queueSeries),
		GeneratedAt:    now,
	}, nil
}

// Insights runs the fixed 12-hour insight pass both API layers expose.
func (s *Service) Insights() ([]model.Insight, int, error) {
	res, err := s.Metrics(12)
	if err != nil {
		return nil, 0, err
	}
	return res.Insights, res.DataPointsUsed, nil
}

// Staffing produces the staffing plan for the queue-length forecast.
func (s *Service) Staffing(hours int) (staffing.Plan, error) {
	res, err := s.Predict(model.MetricQueueLength, hours)
	if err != nil {
		return staffing.Plan{}, err
	}
	return staffing.Recommend(res.Points), nil
}

// Scenario forecasts both metrics over durationHours and applies the named
// scenario. Base insights are carried in front of the scenario insight.
func (s *Service) Scenario(name scenario.Name, baselineMultiplier float64, durationHours int) (scenario.Result, error) {
	base, err := s.Metrics(durationHours)
	if err != nil {
		return scenario.Result{}, err
	}

	result, err := scenario.ApplyAt(s.now(), scenario.Bundle{
		QueueLength: base.QueueLength,
		WaitTimes:   base.WaitTimes,
	}, name, baselineMultiplier, durationHours)
	if err != nil {
		return scenario.Result{}, err
	}
	result.Insights = append(base.Insights, result.Insights...)
	return result, nil
}

// DailyForecast is one day of the capacity projection.
type DailyForecast struct {
	Date                 time.Time `json:"date"`
	ExpectedPeakPatients int       `json:"expected_peak_patients"`
	ExpectedPeakTime     time.Time `json:"expected_peak_time"`
	CapacityUtilization  float64   `json:"capacity_utilization"`
	RiskLevel            string    `json:"risk_level"` // low|medium|high
}

// WeeklyTrends summarizes the capacity projection.
type WeeklyTrends struct {
	AverageDailyPatients int     `json:"average_daily_patients"`
	PeakDayOfWeek        string  `json:"peak_day_of_week"`
	GrowthTrend          float64 `json:"growth_trend_percent"`
}

// Capacity is the multi-day capacity forecast.
type Capacity struct {
	DailyForecasts []DailyForecast `json:"daily_forecasts"`
	WeeklyTrends   WeeklyTrends    `json:"weekly_trends"`
	GeneratedAt    time.Time       `json:"generated_at"`
}

// CapacityForecast projects each of the next days from the retained week,
// reshaped per target weekday. days must be within [1, MaxCapacityDays].
func (s *Service) CapacityForecast(days int) (Capacity, error) {
	if days < 1 || days > MaxCapacityDays {
		return Capacity{}, fmt.Errorf("%w: capacity days %d outside 1..%d",
			forecast.ErrInvalidRange, days, MaxCapacityDays)
	}

	now := s.now()
	week := s.window.Recent(MaxLookbackHours)
	rng := rand.New(rand.NewSource(s.seed()))

	daily := make([]DailyForecast, 0, days)
	dayMeans := make([]float64, 0, days)
	for day := 0; day < days; day++ {
		target := now.AddDate(0, 0, day)
		adjusted := transform.AdjustForDay(week, target.Weekday(), rng)

		points, err := s.forecastSeries(now, model.QueueSeries(adjusted), 24)
		if err != nil {
			return Capacity{}, fmt.Errorf("capacity day %d: %w", day, err)
		}

		peak := points[0]
		var sum float64
		for _, p := range points {
			if p.ForecastedValue > peak.ForecastedValue {
				peak = p
			}
			sum += p.ForecastedValue
		}
		dayMeans = append(dayMeans, sum/24)

		risk := "low"
		switch {
		case peak.ForecastedValue > 80:
			risk = "high"
		case peak.ForecastedValue > 50:
			risk = "medium"
		}

		daily = append(daily, DailyForecast{
			Date:                 time.Date(target.Year(), target.Month(), target.Day(), 0, 0, 0, 0, target.Location()),
			ExpectedPeakPatients: int(math.Round(peak.ForecastedValue)),
			ExpectedPeakTime:     peak.Timestamp,
			CapacityUtilization:  util.Round2(peak.ForecastedValue / 100),
			RiskLevel:            risk,
		})
	}

	peakDay := 0
	for i, d := range daily {
		if d.ExpectedPeakPatients > daily[peakDay].ExpectedPeakPatients {
			peakDay = i
		}
	}

	var meanSum float64
	for _, m := range dayMeans {
		meanSum += m
	}
	growth := 0.0
	if dayMeans[0] > 0 {
		growth = util.Round2((dayMeans[len(dayMeans)-1] - dayMeans[0]) / dayMeans[0] * 100)
	}

	return Capacity{
		DailyForecasts: daily,
		WeeklyTrends: WeeklyTrends{
			AverageDailyPatients: int(math.Round(meanSum / float64(len(dayMeans)))),
			PeakDayOfWeek:        now.AddDate(0, 0, peakDay).Weekday().String(),
			GrowthTrend:          growth,
		},
		GeneratedAt: now,
	}, nil
}

// Summary is the 24-hour composite the dashboard consumes.
type Summary struct {
	Next24Hours struct {
		MaxExpectedQueueLength     int `json:"max_expected_queue_length"`
		MaxExpectedWaitTime        int `json:"max_expected_wait_time"`
		CriticalAlertsCount        int `json:"critical_alerts_count"`
		HighUrgencyStaffingPeriods int `json:"high_urgency_staffing_periods"`
	} `json:"next_24_hours"`
	KeyInsights     []model.Insight  `json:"key_insights"`
	StaffingSummary staffing.Summary `json:"staffing_summary"`
	GeneratedAt     time.Time        `json:"generated_at"`
}

// Summarize composes the 24-hour forecast, insights, and staffing plan into
// one payload.
func (s *Service) Summarize() (Summary, error) {
	res, err := s.Metrics(24)
	if err != nil {
		return Summary{}, err
	}
	plan := staffing.Recommend(res.QueueLength)

	var out Summary
	out.GeneratedAt = res.GeneratedAt
	for _, p := range res.QueueLength {
		if v := int(math.Round(p.ForecastedValue)); v > out.Next24Hours.MaxExpectedQueueLength {
			out.Next24Hours.MaxExpectedQueueLength = v
		}
	}
	for _, p := range res.WaitTimes {
		if v := int(math.Round(p.ForecastedValue)); v > out.Next24Hours.MaxExpectedWaitTime {
			out.Next24Hours.MaxExpectedWaitTime = v
		}
	}
	for _, in := range res.Insights {
		if in.Severity == model.SeverityCritical {
			out.Next24Hours.CriticalAlertsCount++
		}
	}
	for _, rec := range plan.Recommendations {
		if rec.Urgency == model.UrgencyHigh {
			out.Next24Hours.HighUrgencyStaffingPeriods++
		}
	}

	out.KeyInsights = res.Insights
	if len(out.KeyInsights) > 3 {
		out.KeyInsights = out.KeyInsights[:3]
	}
	out.StaffingSummary = plan.Summary
	return out, nil
}

// Package model defines the canonical data types used throughout queue-ai.
// These types are the single source of truth for sensor readings, queue
// snapshots, and every forecast/insight payload the service produces.
package model

import "time"

// ─── Metrics ─────────────────────────────────────────────────────────────────

// Metric identifies which scalar series an analytics operation is about.
type Metric string

const (
	MetricQueueLength Metric = "queue-length"
	MetricWaitTime    Metric = "wait-time"
)

// Unit returns the human-readable unit for the metric.
func (m Metric) Unit() string {
	if m == MetricWaitTime {
		return "minutes"
	}
	return "patients"
}

// Label returns the display name for the metric.
func (m Metric) Label() string {
	if m == MetricWaitTime {
		return "wait time"
	}
	return "queue length"
}

// ─── Time Series Types ────────────────────────────────────────────────────────

// TimePoint is a single observation of a scalar metric.
// All decomposition and forecast operations require chronologically sorted,
// non-empty TimePoint slices.
type TimePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// ─── Queue Snapshots ──────────────────────────────────────────────────────────

// Triage is the breakdown of patients by acuity. The three counts sum to the
// snapshot's TotalPatients (±1 from integer rounding).
type Triage struct {
	Critical int `json:"critical"`
	Urgent   int `json:"urgent"`
	Standard int `json:"standard"`
}

// RoomOccupancy tracks treatment room usage. Occupied never exceeds Total.
type RoomOccupancy struct {
	Total     int `json:"total"`
	Occupied  int `json:"occupied"`
	Available int `json:"available"`
}

// QueueSnapshot is one derived observation of the queue state. Snapshots are
// immutable once created and retained in a bounded 7-day rolling window.
type QueueSnapshot struct {
	Timestamp       time.Time     `json:"timestamp"`
	TotalPatients   int           `json:"total_patients"`
	WaitingPatients int           `json:"waiting_patients"`
	AverageWaitTime float64       `json:"average_wait_time"`
	Triage          Triage        `json:"triage"`
	RoomOccupancy   RoomOccupancy `json:"room_occupancy"`
}

// QueueSeries extracts the queue-length series from ordered snapshots.
func QueueSeries(snaps []QueueSnapshot) []TimePoint {
	out := make([]TimePoint, len(snaps))
	for i, s := range snaps {
		out[i] = TimePoint{Timestamp: s.Timestamp, Value: float64(s.TotalPatients)}
	}
	return out
}

// WaitSeries extracts the average-wait-time series from ordered snapshots.
func WaitSeries(snaps []QueueSnapshot) []TimePoint {
	out := make([]TimePoint, len(snaps))
	for i, s := range snaps {
		out[i] = TimePoint{Timestamp: s.Timestamp, Value: s.AverageWaitTime}
	}
	return out
}

// ─── Forecast Types ───────────────────────────────────────────────────────────

// ConfidenceInterval bounds a forecasted value: 0 <= Lower <= Upper.
type ConfidenceInterval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// ForecastPoint is one step of a multi-step-ahead forecast. Points are
// produced in strictly increasing timestamp order, hourly, starting one step
// after the forecast's reference time.
type ForecastPoint struct {
	Timestamp          time.Time          `json:"timestamp"`
	ForecastedValue    float64            `json:"forecasted_value"`
	ConfidenceInterval ConfidenceInterval `json:"confidence_interval"`
	HorizonIndex       int                `json:"horizon_index"`
}

// ─── Insights ────────────────────────────────────────────────────────────────

// InsightType classifies a generated insight.
type InsightType string

const (
	InsightPeakPrediction   InsightType = "peak_prediction"
	InsightCapacityWarning  InsightType = "capacity_warning"
	InsightTrendChange      InsightType = "trend_change"
	InsightScenarioAnalysis InsightType = "scenario_analysis"
)

// Severity levels for insights, least to most severe.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Timeframe is the window an insight applies to.
type Timeframe struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Insight is a qualitative alert derived from a forecast. Insights are
// generated per request and never stored.
type Insight struct {
	Type              InsightType `json:"type"`
	Severity          Severity    `json:"severity"`
	Description       string      `json:"description"`
	RecommendedAction string      `json:"recommended_action,omitempty"`
	Timeframe         Timeframe   `json:"timeframe"`
	Confidence        float64     `json:"confidence"` // 0..1
}

// ─── Staffing ────────────────────────────────────────────────────────────────

// Urgency bands for staffing recommendations.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// StaffingRecommendation is one per forecast time slot.
type StaffingRecommendation struct {
	TimeSlot         time.Time `json:"time_slot"`
	RecommendedStaff int       `json:"recommended_staff"`
	Reasoning        string    `json:"reasoning"`
	Urgency          Urgency   `json:"urgency"`
}

// PeakPeriod marks a high-load hour in a staffing plan.
type PeakPeriod struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Severity string    `json:"severity"`
}

// ─── Sensor Types ─────────────────────────────────────────────────────────────

// SensorType identifies the four metric streams the sensor source exposes.
type SensorType string

const (
	SensorArrival   SensorType = "arrival"
	SensorWaitTime  SensorType = "wait-time"
	SensorOccupancy SensorType = "occupancy"
	SensorStaff     SensorType = "staff"
)

// SensorTypes lists every stream in polling order.
var SensorTypes = []SensorType{SensorArrival, SensorWaitTime, SensorOccupancy, SensorStaff}

// SensorReading is one raw reading from the external sensor source.
type SensorReading struct {
	SensorID   string         `json:"sensor_id"`
	SensorType SensorType     `json:"sensor_type"`
	Timestamp  time.Time      `json:"timestamp"`
	Value      float64        `json:"value"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// SensorHealth is the last-known state of one sensor stream.
type SensorHealth struct {
	SensorID    string     `json:"sensor_id"`
	SensorType  SensorType `json:"sensor_type"`
	Status      string     `json:"status"` // online|offline|error
	LastReading time.Time  `json:"last_reading"`
	ErrorCount  int        `json:"error_count"`
}

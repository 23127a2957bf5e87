// Package queue computes descriptive analytics over the snapshot history:
// hourly load averages, peak hours, bottlenecks, growth trends, and
// operational alerts. Everything here is a pure function of the snapshots
// passed in; the HTTP layer feeds it slices from the history window.
package queue

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/eEQK/queue-ai/internal/model"
)

// Alert thresholds for the current snapshot.
const (
	highVolumeThreshold     = 50
	criticalVolumeThreshold = 75
	longWaitThreshold       = 90.0
	criticalWaitThreshold   = 150.0
	criticalPatientLimit    = 5
	occupancyWarnRate       = 0.9
	occupancyCriticalRate   = 0.95
)

// HourlyAverage is the mean load for one hour of day across the window.
type HourlyAverage struct {
	Hour            int     `json:"hour"`
	AveragePatients int     `json:"average_patients"`
	AverageWaitTime float64 `json:"average_wait_time"`
}

// Bottleneck flags a sustained operational constraint.
type Bottleneck struct {
	Type        string `json:"type"` // staffing|rooms
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

// Trends summarizes queue movement over the window.
type Trends struct {
	WeeklyGrowth    int    `json:"weekly_growth_percent"`
	SeasonalPattern string `json:"seasonal_pattern"`
}

// Analytics is the full descriptive report.
type Analytics struct {
	PeakHours          []HourlyAverage `json:"peak_hours"`
	AverageDailyVolume int             `json:"average_daily_volume"`
	Bottlenecks        []Bottleneck    `json:"bottlenecks"`
	Trends             Trends          `json:"trends"`
}

// Alert is a point-in-time operational warning derived from the latest
// snapshot.
type Alert struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"` // high_volume|long_wait|critical_patient|room_capacity
	Severity  model.Severity `json:"severity"`
	Message   string         `json:"message"`
	Timestamp time.Time      `json:"timestamp"`
}

// StatusTrends accompanies the current snapshot in status reports.
type StatusTrends struct {
	HourlyChange int `json:"hourly_change"`
	DailyAverage int `json:"daily_average"`
}

// StatusReport is the current snapshot with short-term trends and alerts.
type StatusReport struct {
	Current model.QueueSnapshot `json:"current"`
	Trends  StatusTrends        `json:"trends"`
	Alerts  []Alert             `json:"alerts"`
}

// HourlyAverages buckets snapshots by hour of day and averages each bucket.
// Results are sorted by hour. Hours with no snapshots are omitted.
func HourlyAverages(snaps []model.QueueSnapshot) []HourlyAverage {
	type bucket struct {
		patients int
		wait     float64
		count    int
	}
	buckets := make(map[int]*bucket)
	for _, s := range snaps {
		h := s.Timestamp.Hour()
		b := buckets[h]
		if b == nil {
			b = &bucket{}
			buckets[h] = b
		}
		b.patients += s.TotalPatients
		b.wait += s.AverageWaitTime
		b.count++
	}

	out := make([]HourlyAverage, 0, len(buckets))
	for h, b := range buckets {
		out = append(out, HourlyAverage{
			Hour:            h,
			AveragePatients: int(math.Round(float64(b.patients) / float64(b.count))),
			AverageWaitTime: math.Round(b.wait / float64(b.count)),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hour < out[j].Hour })
	return out
}

// Analyze produces the descriptive report. week holds up to 7 days of
// snapshots; the last 24 hours are extracted internally for bottleneck
// detection.
func Analyze(week []model.QueueSnapshot) Analytics {
	hourly := HourlyAverages(week)

	peaks := make([]HourlyAverage, len(hourly))
	copy(peaks, hourly)
	sort.Slice(peaks, func(i, j int) bool {
		return peaks[i].AveragePatients > peaks[j].AveragePatients
	})
	if len(peaks) > 3 {
		peaks = peaks[:3]
	}

	dailyVolume := 0
	if len(week) > 0 {
		total := 0
		for _, s := range week {
			total += s.TotalPatients
		}
		dailyVolume = int(math.Round(float64(total) / 7))
	}

	return Analytics{
		PeakHours:          peaks,
		AverageDailyVolume: dailyVolume,
		Bottlenecks:        identifyBottlenecks(lastHours(week, 24)),
		Trends: Trends{
			WeeklyGrowth:    weeklyGrowth(week),
			SeasonalPattern: "Normal",
		},
	}
}

// Status builds the current-status report from the latest snapshot and the
// last 24 hours of history.
func Status(now time.Time, current model.QueueSnapshot, day []model.QueueSnapshot) StatusReport {
	dailyAvg := 0
	if len(day) > 0 {
		total := 0
		for _, s := range day {
			total += s.TotalPatients
		}
		dailyAvg = int(math.Round(float64(total) / float64(len(day))))
	}

	return StatusReport{
		Current: current,
		Trends: StatusTrends{
			HourlyChange: hourlyChange(day),
			DailyAverage: dailyAvg,
		},
		Alerts: GenerateAlerts(now, current),
	}
}

// GenerateAlerts inspects one snapshot for alert conditions. Alerts are
// independent; multiple can fire at once.
func GenerateAlerts(now time.Time, s model.QueueSnapshot) []Alert {
	var alerts []Alert
	add := func(kind string, severity model.Severity, msg string) {
		alerts = append(alerts, Alert{
			ID:        fmt.Sprintf("%s-%d", kind, now.UnixNano()),
			Type:      kind,
			Severity:  severity,
			Message:   msg,
			Timestamp: now,
		})
	}

	if s.TotalPatients > highVolumeThreshold {
		severity := model.SeverityWarning
		if s.TotalPatients > criticalVolumeThreshold {
			severity = model.SeverityCritical
		}
		add("high_volume", severity, fmt.Sprintf("High patient volume: %d patients", s.TotalPatients))
	}

	if s.AverageWaitTime > longWaitThreshold {
		severity := model.SeverityWarning
		if s.AverageWaitTime > criticalWaitThreshold {
			severity = model.SeverityCritical
		}
		add("long_wait", severity, fmt.Sprintf("Long wait times: %.0f minutes average", s.AverageWaitTime))
	}

	if s.Triage.Critical > criticalPatientLimit {
		add("critical_patient", model.SeverityCritical,
			fmt.Sprintf("%d critical patients waiting", s.Triage.Critical))
	}

	if s.RoomOccupancy.Total > 0 {
		rate := float64(s.RoomOccupancy.Occupied) / float64(s.RoomOccupancy.Total)
		if rate > occupancyWarnRate {
			severity := model.SeverityWarning
			if rate > occupancyCriticalRate {
				severity = model.SeverityCritical
			}
			add("room_capacity", severity, fmt.Sprintf("Room capacity at %.0f%%", rate*100))
		}
	}

	return alerts
}

// identifyBottlenecks flags sustained staffing or room pressure over the
// given snapshots.
func identifyBottlenecks(day []model.QueueSnapshot) []Bottleneck {
	if len(day) == 0 {
		return nil
	}

	var waitSum, occSum float64
	for _, s := range day {
		waitSum += s.AverageWaitTime
		if s.RoomOccupancy.Total > 0 {
			occSum += float64(s.RoomOccupancy.Occupied) / float64(s.RoomOccupancy.Total)
		}
	}
	avgWait := waitSum / float64(len(day))
	avgOcc := occSum / float64(len(day))

	var out []Bottleneck
	if avgWait > 60 {
		severity := "medium"
		if avgWait > 120 {
			severity = "high"
		}
		out = append(out, Bottleneck{
			Type:        "staffing",
			Severity:    severity,
			Description: fmt.Sprintf("Average wait time is %.0f minutes", math.Round(avgWait)),
		})
	}
	if avgOcc > 0.9 {
		severity := "medium"
		if avgOcc > 0.95 {
			severity = "high"
		}
		out = append(out, Bottleneck{
			Type:        "rooms",
			Severity:    severity,
			Description: fmt.Sprintf("Room occupancy is %.0f%%", math.Round(avgOcc*100)),
		})
	}
	return out
}

// weeklyGrowth compares the mean load of the window's second half against
// its first half, as a whole percentage.
func weeklyGrowth(snaps []model.QueueSnapshot) int {
	if len(snaps) < 2 {
		return 0
	}
	mid := len(snaps) / 2
	first, second := snaps[:mid], snaps[mid:]

	var firstSum, secondSum float64
	for _, s := range first {
		firstSum += float64(s.TotalPatients)
	}
	for _, s := range second {
		secondSum += float64(s.TotalPatients)
	}
	firstAvg := firstSum / float64(len(first))
	secondAvg := secondSum / float64(len(second))
	if firstAvg <= 0 {
		return 0
	}
	return int(math.Round((secondAvg - firstAvg) / firstAvg * 100))
}

// hourlyChange is the patient-count delta between the latest snapshot and
// the newest snapshot at least one hour older.
func hourlyChange(snaps []model.QueueSnapshot) int {
	if len(snaps) < 2 {
		return 0
	}
	latest := snaps[len(snaps)-1]
	for i := len(snaps) - 2; i >= 0; i-- {
		if latest.Timestamp.Sub(snaps[i].Timestamp) >= time.Hour {
			return latest.TotalPatients - snaps[i].TotalPatients
		}
	}
	return 0
}

// lastHours returns the suffix of snaps within h hours of the newest one.
func lastHours(snaps []model.QueueSnapshot, h int) []model.QueueSnapshot {
	if len(snaps) == 0 {
		return nil
	}
	cutoff := snaps[len(snaps)-1].Timestamp.Add(-time.Duration(h) * time.Hour)
	i := 0
	for i < len(snaps) && snaps[i].Timestamp.Before(cutoff) {
		i++
	}
	return snaps[i:]
}

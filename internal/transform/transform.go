// Package transform implements stateless operators that take a slice of
// snapshots or time points and return a new slice. Each operator is a pure
// function; no side effects, no I/O.
package transform

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/eEQK/queue-ai/internal/model"
	"github.com/eEQK/queue-ai/internal/util"
)

// dayFactors scales patient load by target day of week. Weekends run hotter,
// Mondays slightly quieter.
var dayFactors = [7]float64{
	time.Sunday:    1.1,
	time.Monday:    0.95,
	time.Tuesday:   1.0,
	time.Wednesday: 1.02,
	time.Thursday:  1.05,
	time.Friday:    1.15,
	time.Saturday:  1.2,
}

// hourFactor models intra-day load shape: morning and evening peaks, an
// afternoon lull, and a deep overnight trough.
func hourFactor(hour int) float64 {
	switch {
	case hour >= 8 && hour <= 10:
		return 1.2
	case hour >= 14 && hour <= 16:
		return 0.9
	case hour >= 18 && hour <= 20:
		return 1.3
	case hour >= 23 || hour <= 5:
		return 0.7
	}
	return 1.0
}

// AdjustForDay reshapes historical snapshots to resemble the load pattern of
// the given weekday, with hour-of-day variation and a small random jitter.
// Capacity forecasting uses this to project each upcoming day from the same
// base week. rng keeps the jitter reproducible for tests.
func AdjustForDay(snaps []model.QueueSnapshot, day time.Weekday, rng *rand.Rand) []model.QueueSnapshot {
	if len(snaps) == 0 {
		return nil
	}

	factor := dayFactors[day]
	out := make([]model.QueueSnapshot, len(snaps))
	for i, s := range snaps {
		jitter := 1 + (rng.Float64()-0.5)*0.1
		combined := factor * hourFactor(s.Timestamp.Hour()) * jitter

		adjusted := s
		adjusted.TotalPatients = int(float64(s.TotalPatients)*combined + 0.5)
		if adjusted.TotalPatients < 1 {
			adjusted.TotalPatients = 1
		}
		adjusted.AverageWaitTime = float64(int(s.AverageWaitTime*(0.9+combined*0.1) + 0.5))
		if adjusted.AverageWaitTime < 5 {
			adjusted.AverageWaitTime = 5
		}
		out[i] = adjusted
	}
	return out
}

// MovingAverage smooths a series with a trailing window of the given size.
// Leading points that have no full window are dropped.
func MovingAverage(series []model.TimePoint, window int) ([]model.TimePoint, error) {
	if window < 1 {
		return nil, fmt.Errorf("moving-average: window must be >= 1, got %d", window)
	}
	if len(series) < window {
		return nil, fmt.Errorf("moving-average: need at least %d points, got %d", window, len(series))
	}

	out := make([]model.TimePoint, 0, len(series)-window+1)
	var sum float64
	for i, p := range series {
		sum += p.Value
		if i >= window {
			sum -= series[i-window].Value
		}
		if i >= window-1 {
			out = append(out, model.TimePoint{
				Timestamp: p.Timestamp,
				Value:     util.Round2(sum / float64(window)),
			})
		}
	}
	return out, nil
}

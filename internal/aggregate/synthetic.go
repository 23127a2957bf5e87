package aggregate

import (
	"math/rand"
	"time"

	"github.com/eEQK/queue-ai/internal/model"
)

// Synthetic generates hoursBack hourly snapshots ending one hour before now,
// oldest first. Load follows a daily pattern: busiest 08:00-18:00, moderate
// evenings, quiet overnight. Used to seed an empty history so forecasts have
// something to decompose on first boot.
func Synthetic(rng *rand.Rand, now time.Time, hoursBack int) []model.QueueSnapshot {
	out := make([]model.QueueSnapshot, 0, hoursBack)
	for i := hoursBack; i >= 1; i-- {
		ts := now.Add(-time.Duration(i) * time.Hour)

		var total int
		switch hour := ts.Hour(); {
		case hour >= 8 && hour <= 18:
			total = rng.Intn(15) + 10
		case hour >= 19 && hour <= 23:
			total = rng.Intn(12) + 8
		default:
			total = rng.Intn(8) + 3
		}

		avgWait := float64(rng.Intn(40) + 20)
		occupied := total + rng.Intn(5)
		if occupied > TotalRooms {
			occupied = TotalRooms
		}

		critical := int(float64(total) * (0.05 + rng.Float64()*0.1))
		urgent := int(float64(total) * (0.2 + rng.Float64()*0.2))
		standard := total - critical - urgent
		if standard < 0 {
			standard = 0
		}

		waiting := total - occupied
		if waiting < 0 {
			waiting = 0
		}

		out = append(out, model.QueueSnapshot{
			Timestamp:       ts,
			TotalPatients:   total,
			WaitingPatients: waiting,
			AverageWaitTime: avgWait,
			Triage:          model.Triage{Critical: critical, Urgent: urgent, Standard: standard},
			RoomOccupancy: model.RoomOccupancy{
				Total:     TotalRooms,
				Occupied:  occupied,
				Available: TotalRooms - occupied,
			},
		})
	}
	return out
}

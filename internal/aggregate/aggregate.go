// Package aggregate derives queue snapshots from raw sensor readings. The
// aggregator is the only writer into the history window: it buffers the
// latest reading per stream, damps the arrival rate into a small queue delta,
// and debounces snapshot production so a burst of readings yields one update.
package aggregate

import (
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/eEQK/queue-ai/internal/model"
	"github.com/eEQK/queue-ai/internal/util"
)

const (
	// TotalRooms is the fixed treatment room count for the department.
	TotalRooms = 20

	// DefaultStaff is assumed when no staff reading has arrived yet.
	DefaultStaff = 8

	// DefaultPatients seeds the queue when there is no prior snapshot.
	DefaultPatients = 10

	// MinPatients and MaxPatients bound the derived queue length.
	MinPatients = 5
	MaxPatients = 30

	// DebounceInterval is the minimum gap between produced snapshots.
	DebounceInterval = 2 * time.Second

	arrivalMemory = 3 // arrival readings kept for rate averaging
)

// Aggregator turns sensor readings into queue snapshots. Safe for concurrent
// use. The zero value is not usable; call New.
type Aggregator struct {
	mu       sync.Mutex
	arrivals []float64
	latest   map[model.SensorType]model.SensorReading
	limiter  *rate.Limiter
}

// New returns an aggregator with an empty reading buffer.
func New() *Aggregator {
	return &Aggregator{
		latest:  make(map[model.SensorType]model.SensorReading),
		limiter: rate.NewLimiter(rate.Every(DebounceInterval), 1),
	}
}

// Ingest records a reading. Arrival readings also feed the rate buffer used
// to compute the queue delta.
func (a *Aggregator) Ingest(r model.SensorReading) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.latest[r.SensorType] = r
	if r.SensorType == model.SensorArrival {
		a.arrivals = append(a.arrivals, r.Value)
		if len(a.arrivals) > arrivalMemory {
			a.arrivals = a.arrivals[len(a.arrivals)-arrivalMemory:]
		}
	}
}

// Snapshot derives the next queue snapshot from buffered readings.
//
// It returns ok=false when any of the arrival, wait-time, or occupancy
// streams has not reported yet, or when a snapshot was produced within the
// debounce interval. prev carries the most recent snapshot for incremental
// evolution; pass hasPrev=false when the history is empty.
func (a *Aggregator) Snapshot(now time.Time, prev model.QueueSnapshot, hasPrev bool) (model.QueueSnapshot, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	_, haveArrival := a.latest[model.SensorArrival]
	wait, haveWait := a.latest[model.SensorWaitTime]
	occ, haveOcc := a.latest[model.SensorOccupancy]
	if !haveArrival || !haveWait || !haveOcc {
		return model.QueueSnapshot{}, false
	}
	if !a.limiter.Allow() {
		return model.QueueSnapshot{}, false
	}

	current := DefaultPatients
	if hasPrev {
		current = prev.TotalPatients
	}

	avgRate := 1.0
	if len(a.arrivals) > 0 {
		avgRate = util.Mean(a.arrivals)
	}
	delta := int(math.Floor((avgRate - 2) * 0.5))
	total := util.ClampInt(current+delta, MinPatients, MaxPatients)

	occupied := util.ClampInt(int(occ.Value), 0, TotalRooms)
	if occupied > total {
		occupied = total
	}

	critical := int(float64(total) * 0.1)
	urgent := int(float64(total) * 0.3)

	return model.QueueSnapshot{
		Timestamp:       now,
		TotalPatients:   total,
		WaitingPatients: max(0, total-occupied),
		AverageWaitTime: wait.Value,
		Triage: model.Triage{
			Critical: critical,
			Urgent:   urgent,
			Standard: total - critical - urgent,
		},
		RoomOccupancy: model.RoomOccupancy{
			Total:     TotalRooms,
			Occupied:  occupied,
			Available: TotalRooms - occupied,
		},
	}, true
}

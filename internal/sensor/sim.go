package sensor

import (
	"encoding/json"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/eEQK/queue-ai/internal/model"
)

// readingInterval is the spacing of simulated readings within an hour.
const readingInterval = 5 * time.Minute

// arrivalPattern repeats across the hour's twelve reading slots.
var arrivalPattern = []float64{2, 1, 3, 0, 2, 1, 4, 2, 1, 3, 2, 0}

// Simulator produces the same wire protocol as the real sensor gateway,
// backed by deterministic per-hour reading patterns. Each stream holds
// twelve readings (one per five minutes of the current hour) and answers
// 204 once drained, until Reset.
type Simulator struct {
	mu      sync.Mutex
	now     func() time.Time
	indexes map[model.SensorType]int
}

// NewSimulator returns a simulator positioned at the start of every stream.
func NewSimulator() *Simulator {
	return &Simulator{
		now:     time.Now,
		indexes: make(map[model.SensorType]int),
	}
}

// streamValue computes the i-th reading value for a stream.
func streamValue(st model.SensorType, i int) float64 {
	switch st {
	case model.SensorArrival:
		return arrivalPattern[i%len(arrivalPattern)]
	case model.SensorWaitTime:
		return 45 + float64(i*3) + math.Floor(math.Sin(float64(i))*5)
	case model.SensorOccupancy:
		return math.Min(20, float64(12+i/2))
	case model.SensorStaff:
		return math.Max(5, float64(8-i/3))
	}
	return 0
}

// NextReading returns the next unconsumed reading for a stream, or
// ok=false when the current hour is drained.
func (s *Simulator) NextReading(st model.SensorType) (model.SensorReading, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexes[st]
	total := int(time.Hour / readingInterval)
	if i >= total {
		return model.SensorReading{}, false
	}
	s.indexes[st] = i + 1

	hourStart := s.now().Truncate(time.Hour)
	return model.SensorReading{
		SensorID:   string(st) + "-sensor-001",
		SensorType: st,
		Timestamp:  hourStart.Add(time.Duration(i) * readingInterval),
		Value:      streamValue(st, i),
		Metadata: map[string]any{
			"readingIndex":    i,
			"totalReadings":   total,
			"hasMoreReadings": i+1 < total,
		},
	}, true
}

// Reset rewinds every stream to the start of the current hour.
func (s *Simulator) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indexes = make(map[model.SensorType]int)
}

// StreamStatus describes one stream's consumption progress.
type StreamStatus struct {
	CurrentIndex    int  `json:"current_index"`
	TotalReadings   int  `json:"total_readings"`
	HasMoreReadings bool `json:"has_more_readings"`
}

// Status reports consumption progress for every stream.
func (s *Simulator) Status() map[model.SensorType]StreamStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := int(time.Hour / readingInterval)
	out := make(map[model.SensorType]StreamStatus, len(model.SensorTypes))
	for _, st := range model.SensorTypes {
		i := s.indexes[st]
		out[st] = StreamStatus{
			CurrentIndex:    i,
			TotalReadings:   total,
			HasMoreReadings: i < total,
		}
	}
	return out
}

// Handler returns the simulator's HTTP surface, same routes the real
// gateway serves.
func (s *Simulator) Handler() http.Handler {
	r := mux.NewRouter()

	for st, slug := range streamPaths {
		st := st
		r.HandleFunc("/api/sensors/"+slug+"/next", func(w http.ResponseWriter, req *http.Request) {
			reading, ok := s.NextReading(st)
			if !ok {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			writeJSON(w, http.StatusOK, rawReading{
				SensorID:   reading.SensorID,
				SensorType: string(reading.SensorType),
				Timestamp:  reading.Timestamp.Format(time.RFC3339),
				Value:      reading.Value,
				Metadata:   reading.Metadata,
			})
		}).Methods(http.MethodGet)
	}

	r.HandleFunc("/api/sensors/status", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"timestamp": s.now().UTC().Format(time.RFC3339),
			"sensors":   s.Status(),
		})
	}).Methods(http.MethodGet)

	r.HandleFunc("/api/sensors/reset", func(w http.ResponseWriter, req *http.Request) {
		s.Reset()
		writeJSON(w, http.StatusOK, map[string]any{
			"message":   "all sensor streams reset to start of current hour",
			"timestamp": s.now().UTC().Format(time.RFC3339),
		})
	}).Methods(http.MethodPost)

	r.HandleFunc("/api/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Package benchmarks measures the hot paths of the analytics engine:
// decomposition, forecasting, and snapshot JSON encoding. All inputs are
// generated in-process; no fixtures or network access required.
//
//	go test ./tests/benchmarks/... -bench=. -benchmem -count=10
package benchmarks_test

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"testing"
	"time"

	"github.com/eEQK/queue-ai/internal/aggregate"
	"github.com/eEQK/queue-ai/internal/forecast"
	"github.com/eEQK/queue-ai/internal/insight"
	"github.com/eEQK/queue-ai/internal/model"
	"github.com/eEQK/queue-ai/internal/staffing"
)

var benchBase = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

// series builds n hourly points with a daily shape and mild noise, seeded for
// run-to-run stability.
func series(n int) []model.TimePoint {
	rng := rand.New(rand.NewSource(1))
	out := make([]model.TimePoint, n)
	for i := 0; i < n; i++ {
		ts := benchBase.Add(time.Duration(i) * time.Hour)
		v := 12.0
		if h := ts.Hour(); h >= 8 && h <= 18 {
			v = 18.0
		}
		out[i] = model.TimePoint{Timestamp: ts, Value: v + rng.Float64()*4}
	}
	return out
}

func BenchmarkDecompose168(b *testing.B) {
	s := series(168)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		forecast.Decompose(s)
	}
}

func BenchmarkForecast24From168(b *testing.B) {
	s := series(168)
	now := s[len(s)-1].Timestamp
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := forecast.ForecastFrom(now, s, 24); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkForecast72From168(b *testing.B) {
	s := series(168)
	now := s[len(s)-1].Timestamp
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := forecast.ForecastFrom(now, s, 72); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkInsightsFromForecast(b *testing.B) {
	s := series(168)
	now := s[len(s)-1].Timestamp
	points, err := forecast.ForecastFrom(now, s, 12)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		insight.GenerateAt(now, points, s, model.MetricQueueLength)
	}
}

func BenchmarkStaffingPlan24(b *testing.B) {
	s := series(168)
	now := s[len(s)-1].Timestamp
	points, err := forecast.ForecastFrom(now, s, 24)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		staffing.Recommend(points)
	}
}

func BenchmarkSnapshotEncode(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	snaps := aggregate.Synthetic(rng, benchBase.Add(168*time.Hour), 168)
	var buf bytes.Buffer
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf.Reset()
		if err := json.NewEncoder(&buf).Encode(snaps); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSnapshotDecode(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	snaps := aggregate.Synthetic(rng, benchBase.Add(168*time.Hour), 168)
	data, err := json.Marshal(snaps)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var out []model.QueueSnapshot
		if err := json.Unmarshal(data, &out); err != nil {
			b.Fatal(err)
		}
	}
}

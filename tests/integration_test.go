// Package tests holds offline integration checks that exercise the full
// ingestion path: simulator HTTP surface → sensor client → aggregation →
// archive → replay → forecast. Everything runs against httptest servers and
// temp directories; no external services are required.
package tests

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/eEQK/queue-ai/internal/aggregate"
	"github.com/eEQK/queue-ai/internal/history"
	"github.com/eEQK/queue-ai/internal/model"
	"github.com/eEQK/queue-ai/internal/predict"
	"github.com/eEQK/queue-ai/internal/sensor"
	"github.com/eEQK/queue-ai/internal/store"
)

// coreStreams are the sensor types required for snapshot aggregation.
var coreStreams = []model.SensorType{
	model.SensorArrival,
	model.SensorWaitTime,
	model.SensorOccupancy,
}

// TestSimulatorToSnapshot drains one round of readings from the simulator
// through the HTTP client and checks that the aggregator accepts them into a
// snapshot.
func TestSimulatorToSnapshot(t *testing.T) {
	sim := sensor.NewSimulator()
	srv := httptest.NewServer(sim.Handler())
	defer srv.Close()

	client := sensor.NewClient(srv.URL, 5*time.Second, 100, false)
	ctx := context.Background()

	if !client.CheckHealth(ctx) {
		t.Fatal("simulator should report healthy")
	}

	agg := aggregate.New()
	for _, st := range model.SensorTypes {
		r, err := client.Next(ctx, st)
		if err != nil {
			t.Fatalf("Next(%s): %v", st, err)
		}
		if r == nil {
			t.Fatalf("Next(%s): stream drained on first read", st)
		}
		agg.Ingest(*r)
	}

	snap, ok := agg.Snapshot(time.Now(), model.QueueSnapshot{}, false)
	if !ok {
		t.Fatal("aggregator rejected a complete reading set")
	}
	if snap.TotalPatients < aggregate.MinPatients || snap.TotalPatients > aggregate.MaxPatients {
		t.Errorf("TotalPatients = %d, want within [%d,%d]",
			snap.TotalPatients, aggregate.MinPatients, aggregate.MaxPatients)
	}
	if snap.RoomOccupancy.Total != aggregate.TotalRooms {
		t.Errorf("RoomOccupancy.Total = %d, want %d", snap.RoomOccupancy.Total, aggregate.TotalRooms)
	}
	triage := snap.Triage.Critical + snap.Triage.Urgent + snap.Triage.Standard
	if triage != snap.TotalPatients {
		t.Errorf("triage sum = %d, want %d", triage, snap.TotalPatients)
	}
}

// TestStreamsDrainAfterWindow verifies that each stream yields its hourly
// window of readings and then signals empty.
func TestStreamsDrainAfterWindow(t *testing.T) {
	sim := sensor.NewSimulator()
	srv := httptest.NewServer(sim.Handler())
	defer srv.Close()

	client := sensor.NewClient(srv.URL, 5*time.Second, 1000, false)
	ctx := context.Background()

	for _, st := range coreStreams {
		count := 0
		for {
			r, err := client.Next(ctx, st)
			if err != nil {
				t.Fatalf("Next(%s): %v", st, err)
			}
			if r == nil {
				break
			}
			count++
			if count > 12 {
				t.Fatalf("%s: more than 12 readings in one hour window", st)
			}
		}
		if count != 12 {
			t.Errorf("%s: drained after %d readings, want 12", st, count)
		}
	}
}

// TestArchiveReplayAndForecast seeds an archive, replays it into a window the
// way `serve` does at boot, and runs a forecast over the replayed history.
func TestArchiveReplayAndForecast(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "queue-ai.db")

	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	now := time.Now().Truncate(time.Hour)
	for i := 0; i < 72; i++ {
		ts := now.Add(-time.Duration(71-i) * time.Hour)
		patients := 12
		if h := ts.Hour(); h >= 8 && h <= 18 {
			patients = 18
		}
		snap := model.QueueSnapshot{
			Timestamp:       ts,
			TotalPatients:   patients,
			WaitingPatients: patients / 2,
			AverageWaitTime: float64(25 + patients),
			Triage:          model.Triage{Critical: 1, Urgent: 4, Standard: patients - 5},
			RoomOccupancy:   model.RoomOccupancy{Occupied: patients / 2, Total: 20},
		}
		if err := st.PutSnapshot(snap); err != nil {
			t.Fatalf("PutSnapshot: %v", err)
		}
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Reopen and replay, as serve does after a restart.
	st2, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer st2.Close()

	snaps, err := st2.SnapshotsSince(now.Add(-history.DefaultRetention))
	if err != nil {
		t.Fatalf("SnapshotsSince: %v", err)
	}
	if len(snaps) != 72 {
		t.Fatalf("replayed %d snapshots, want 72", len(snaps))
	}

	window := history.New(history.DefaultRetention)
	for _, s := range snaps {
		window.Append(s)
	}

	svc := predict.NewService(window, nil)
	res, err := svc.Predict(model.MetricQueueLength, 12)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if len(res.Points) != 12 {
		t.Fatalf("forecast returned %d points, want 12", len(res.Points))
	}
	for i, p := range res.Points {
		if p.ForecastedValue < 0 {
			t.Errorf("point %d: negative forecast %g", i, p.ForecastedValue)
		}
		if p.ConfidenceInterval.Lower > p.ForecastedValue || p.ConfidenceInterval.Upper < p.ForecastedValue {
			t.Errorf("point %d: value %g outside CI [%g,%g]",
				i, p.ForecastedValue, p.ConfidenceInterval.Lower, p.ConfidenceInterval.Upper)
		}
	}

	// The derived products run off the same forecast plumbing.
	plan, err := svc.Staffing(12)
	if err != nil {
		t.Fatalf("Staffing: %v", err)
	}
	if len(plan.Recommendations) != 12 {
		t.Errorf("staffing returned %d recommendations, want 12", len(plan.Recommendations))
	}
}

// TestResetRewindsStreams checks that a gateway reset makes drained streams
// yield full windows again.
func TestResetRewindsStreams(t *testing.T) {
	sim := sensor.NewSimulator()
	srv := httptest.NewServer(sim.Handler())
	defer srv.Close()

	client := sensor.NewClient(srv.URL, 5*time.Second, 1000, false)
	ctx := context.Background()

	// Drain the arrival stream.
	for {
		r, err := client.Next(ctx, model.SensorArrival)
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if r == nil {
			break
		}
	}

	if err := client.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	r, err := client.Next(ctx, model.SensorArrival)
	if err != nil {
		t.Fatalf("Next after reset: %v", err)
	}
	if r == nil {
		t.Fatal("stream still drained after reset")
	}
}

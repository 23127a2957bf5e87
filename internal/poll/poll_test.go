package poll

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/eEQK/queue-ai/internal/aggregate"
	"github.com/eEQK/queue-ai/internal/history"
	"github.com/eEQK/queue-ai/internal/metrics"
	"github.com/eEQK/queue-ai/internal/model"
)

var refTime = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

// fakeSource feeds one queued reading per stream per cycle.
type fakeSource struct {
	mu       sync.Mutex
	healthy  bool
	readings map[model.SensorType][]model.SensorReading
	failing  map[model.SensorType]error
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		healthy:  true,
		readings: make(map[model.SensorType][]model.SensorReading),
		failing:  make(map[model.SensorType]error),
	}
}

func (f *fakeSource) push(st model.SensorType, value float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readings[st] = append(f.readings[st], model.SensorReading{
		SensorID:   string(st) + "-sensor-001",
		SensorType: st,
		Timestamp:  refTime,
		Value:      value,
	})
}

func (f *fakeSource) Next(ctx context.Context, st model.SensorType) (*model.SensorReading, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failing[st]; err != nil {
		return nil, err
	}
	q := f.readings[st]
	if len(q) == 0 {
		return nil, nil
	}
	r := q[0]
	f.readings[st] = q[1:]
	return &r, nil
}

func (f *fakeSource) CheckHealth(ctx context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.healthy
}

// archiveRecorder captures archived snapshots.
type archiveRecorder struct {
	mu    sync.Mutex
	snaps []model.QueueSnapshot
}

func (a *archiveRecorder) PutSnapshot(s model.QueueSnapshot) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.snaps = append(a.snaps, s)
	return nil
}

func (a *archiveRecorder) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.snaps)
}

func newTestPoller(src Source, archive Archiver) (*Poller, *history.Window) {
	window := history.New(history.DefaultRetention)
	m := metrics.New(prometheus.NewRegistry())
	p := New(src, aggregate.New(), window, archive, m, time.Hour)
	p.now = func() time.Time { return refTime }
	return p, window
}

func TestCycleCreatesSnapshot(t *testing.T) {
	src := newFakeSource()
	src.push(model.SensorArrival, 2)
	src.push(model.SensorWaitTime, 35)
	src.push(model.SensorOccupancy, 8)
	src.push(model.SensorStaff, 7)

	archive := &archiveRecorder{}
	p, window := newTestPoller(src, archive)

	p.cycle(context.Background())

	snap, ok := window.Latest()
	if !ok {
		t.Fatal("no snapshot after cycle")
	}
	if snap.AverageWaitTime != 35 {
		t.Errorf("AverageWaitTime = %v, want 35", snap.AverageWaitTime)
	}
	if archive.count() != 1 {
		t.Errorf("archived %d snapshots, want 1", archive.count())
	}
}

func TestCycleSkipsWhenUnhealthy(t *testing.T) {
	src := newFakeSource()
	src.healthy = false
	src.push(model.SensorArrival, 2)
	src.push(model.SensorWaitTime, 35)
	src.push(model.SensorOccupancy, 8)

	p, window := newTestPoller(src, nil)
	p.cycle(context.Background())

	if window.Len() != 0 {
		t.Error("snapshot created despite unhealthy gateway")
	}
	if len(src.readings[model.SensorArrival]) != 1 {
		t.Error("readings consumed despite unhealthy gateway")
	}
}

func TestCycleSurvivesStreamErrors(t *testing.T) {
	src := newFakeSource()
	src.failing[model.SensorStaff] = errors.New("connection refused")
	src.push(model.SensorArrival, 2)
	src.push(model.SensorWaitTime, 35)
	src.push(model.SensorOccupancy, 8)

	p, window := newTestPoller(src, nil)
	p.cycle(context.Background())

	// Staff stream failed but the core streams still produce a snapshot.
	if window.Len() != 1 {
		t.Fatalf("window has %d snapshots, want 1", window.Len())
	}

	var staffHealth *model.SensorHealth
	for _, h := range p.Health() {
		if h.SensorType == model.SensorStaff {
			staffHealth = &h
			break
		}
	}
	if staffHealth == nil {
		t.Fatal("no health entry for failed stream")
	}
	if staffHealth.Status != "error" || staffHealth.ErrorCount != 1 {
		t.Errorf("staff health = %+v", staffHealth)
	}
}

func TestCycleWithoutCoreStreamsProducesNothing(t *testing.T) {
	src := newFakeSource()
	src.push(model.SensorArrival, 2) // wait-time and occupancy never report

	p, window := newTestPoller(src, nil)
	p.cycle(context.Background())

	if window.Len() != 0 {
		t.Error("snapshot created without core streams")
	}
}

func TestHealthTracksOnlineStreams(t *testing.T) {
	src := newFakeSource()
	src.push(model.SensorArrival, 2)
	src.push(model.SensorWaitTime, 35)
	src.push(model.SensorOccupancy, 8)
	src.push(model.SensorStaff, 7)

	p, _ := newTestPoller(src, nil)
	p.cycle(context.Background())

	health := p.Health()
	if len(health) != 4 {
		t.Fatalf("got %d health entries, want 4", len(health))
	}
	for _, h := range health {
		if h.Status != "online" {
			t.Errorf("%s status = %q, want online", h.SensorType, h.Status)
		}
		if !h.LastReading.Equal(refTime) {
			t.Errorf("%s LastReading = %v", h.SensorType, h.LastReading)
		}
	}
}

func TestStartStopIdempotent(t *testing.T) {
	src := newFakeSource()
	p, _ := newTestPoller(src, nil)

	ctx := context.Background()
	p.Start(ctx)
	p.Start(ctx) // second start is a no-op
	p.Stop()
	p.Stop() // second stop is a no-op

	// Restart after stop works.
	p.Start(ctx)
	p.Stop()
}

func TestStopCancelsLoop(t *testing.T) {
	src := newFakeSource()
	p, _ := newTestPoller(src, nil)

	p.Start(context.Background())
	done := make(chan struct{})
	go func() {
		p.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return")
	}
}

// Package poll runs the background loop that pulls sensor readings from the
// gateway and turns them into queue snapshots.
//
// Each cycle checks gateway health, drains one reading per stream, feeds the
// aggregator, and appends any derived snapshot to the history window and the
// on-disk archive. Failures are logged and skipped; the loop never dies.
package poll

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/eEQK/queue-ai/internal/aggregate"
	"github.com/eEQK/queue-ai/internal/history"
	"github.com/eEQK/queue-ai/internal/metrics"
	"github.com/eEQK/queue-ai/internal/model"
)

// DefaultInterval between poll cycles.
const DefaultInterval = 30 * time.Second

// Source is the sensor gateway surface the poller consumes.
type Source interface {
	Next(ctx context.Context, st model.SensorType) (*model.SensorReading, error)
	CheckHealth(ctx context.Context) bool
}

// Archiver persists snapshots across restarts. The bbolt store satisfies
// this; a nil Archiver disables persistence.
type Archiver interface {
	PutSnapshot(model.QueueSnapshot) error
}

// Poller drives the sensor ingestion loop.
type Poller struct {
	source   Source
	agg      *aggregate.Aggregator
	window   *history.Window
	archive  Archiver
	metrics  *metrics.Metrics
	interval time.Duration
	now      func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	health map[model.SensorType]model.SensorHealth
}

// New assembles a poller. archive may be nil; m must not be.
func New(source Source, agg *aggregate.Aggregator, window *history.Window, archive Archiver, m *metrics.Metrics, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		source:   source,
		agg:      agg,
		window:   window,
		archive:  archive,
		metrics:  m,
		interval: interval,
		now:      time.Now,
		health:   make(map[model.SensorType]model.SensorHealth),
	}
}

// Start launches the polling loop. Calling Start on a running poller is a
// no-op. The loop stops when ctx is cancelled or Stop is called.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		slog.Info("poller already running")
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})

	slog.Info("starting sensor polling", "interval", p.interval)
	go p.run(ctx)
}

// Stop halts the loop and waits for the in-flight cycle to finish.
// Safe to call multiple times.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel = nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	slog.Info("sensor polling stopped")
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// One immediate cycle so the service has data right after boot.
	p.cycle(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.cycle(ctx)
		}
	}
}

// cycle performs one poll of every sensor stream.
func (p *Poller) cycle(ctx context.Context) {
	if !p.source.CheckHealth(ctx) {
		slog.Warn("sensor gateway unhealthy, skipping poll cycle")
		p.metrics.PollCyclesSkipped.Inc()
		return
	}

	for _, st := range model.SensorTypes {
		reading, err := p.source.Next(ctx, st)
		if err != nil {
			slog.Error("polling sensor stream", "sensor_type", st, "error", err)
			p.metrics.PollErrors.Inc()
			p.recordError(st)
			continue
		}
		if reading == nil {
			continue // stream drained for the current hour
		}

		p.agg.Ingest(*reading)
		p.metrics.ReadingsPolled.WithLabelValues(string(st)).Inc()
		p.recordReading(*reading)
		slog.Debug("processed sensor reading", "sensor_type", st, "value", reading.Value)
	}

	prev, hasPrev := p.window.Latest()
	snap, ok := p.agg.Snapshot(p.now(), prev, hasPrev)
	if !ok {
		return
	}

	p.window.Append(snap)
	p.metrics.ObserveSnapshot(snap.TotalPatients, snap.AverageWaitTime)
	if p.archive != nil {
		if err := p.archive.PutSnapshot(snap); err != nil {
			slog.Error("archiving snapshot", "error", err)
		}
	}
	slog.Info("queue snapshot created",
		"total_patients", snap.TotalPatients,
		"waiting", snap.WaitingPatients,
		"avg_wait_minutes", snap.AverageWaitTime)
}

func (p *Poller) recordReading(r model.SensorReading) {
	p.mu.Lock()
	defer p.mu.Unlock()
	h := p.health[r.SensorType]
	h.SensorID = r.SensorID
	h.SensorType = r.SensorType
	h.Status = "online"
	h.LastReading = r.Timestamp
	p.health[r.SensorType] = h
}

func (p *Poller) recordError(st model.SensorType) {
	p.mu.Lock()
	defer p.mu.Unlock()
	h := p.health[st]
	h.SensorType = st
	h.Status = "error"
	h.ErrorCount++
	p.health[st] = h
}

// Health reports the last-known state of every stream that has been polled,
// in model.SensorTypes order.
func (p *Poller) Health() []model.SensorHealth {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.SensorHealth, 0, len(p.health))
	for _, st := range model.SensorTypes {
		if h, ok := p.health[st]; ok {
			out = append(out, h)
		}
	}
	return out
}

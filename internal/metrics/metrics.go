// Package metrics defines the Prometheus instrumentation for queue-ai.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds every collector the service exports. Construct with New and
// share one instance between the poller and the HTTP layer.
type Metrics struct {
	ReadingsPolled    *prometheus.CounterVec
	PollErrors        prometheus.Counter
	PollCyclesSkipped prometheus.Counter
	SnapshotsCreated  prometheus.Counter
	QueueLength       prometheus.Gauge
	WaitTime          prometheus.Gauge
	ForecastLatency   prometheus.Histogram
	RequestDuration   *prometheus.HistogramVec
}

// New creates and registers all collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ReadingsPolled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "queueai_sensor_readings_total",
			Help: "Sensor readings successfully polled, by sensor type.",
		}, []string{"sensor_type"}),
		PollErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "queueai_poll_errors_total",
			Help: "Polling attempts that failed after retries.",
		}),
		PollCyclesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "queueai_poll_cycles_skipped_total",
			Help: "Poll cycles skipped because the sensor gateway was unhealthy.",
		}),
		SnapshotsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "queueai_snapshots_created_total",
			Help: "Queue snapshots derived from sensor readings.",
		}),
		QueueLength: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "queueai_queue_length",
			Help: "Total patients in the most recent queue snapshot.",
		}),
		WaitTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "queueai_average_wait_minutes",
			Help: "Average wait time in the most recent queue snapshot.",
		}),
		ForecastLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "queueai_forecast_duration_seconds",
			Help:    "Time spent decomposing and forecasting per request.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "queueai_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status class.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}

	reg.MustRegister(
		m.ReadingsPolled,
		m.PollErrors,
		m.PollCyclesSkipped,
		m.SnapshotsCreated,
		m.QueueLength,
		m.WaitTime,
		m.ForecastLatency,
		m.RequestDuration,
	)
	return m
}

// ObserveSnapshot updates the point-in-time gauges from a fresh snapshot.
func (m *Metrics) ObserveSnapshot(totalPatients int, avgWait float64) {
	m.SnapshotsCreated.Inc()
	m.QueueLength.Set(float64(totalPatients))
	m.WaitTime.Set(avgWait)
}

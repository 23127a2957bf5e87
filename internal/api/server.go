// Package api exposes the queue analytics service over HTTP. Handlers
// validate input, call into the prediction service and history window, and
// translate typed core errors into status codes; the core itself never
// writes HTTP responses or logs request failures.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eEQK/queue-ai/internal/forecast"
	"github.com/eEQK/queue-ai/internal/history"
	"github.com/eEQK/queue-ai/internal/metrics"
	"github.com/eEQK/queue-ai/internal/model"
	"github.com/eEQK/queue-ai/internal/predict"
	"github.com/eEQK/queue-ai/internal/queue"
	"github.com/eEQK/queue-ai/internal/scenario"
)

// HealthReporter exposes last-known sensor stream state. The poller
// satisfies this.
type HealthReporter interface {
	Health() []model.SensorHealth
}

// Server wires the HTTP surface to the analytics engine.
type Server struct {
	window   *history.Window
	svc      *predict.Service
	sensors  HealthReporter
	m        *metrics.Metrics
	gatherer prometheus.Gatherer
	now      func() time.Time
}

// New builds a Server. sensors may be nil when no poller runs (offline
// serving of archived data).
func New(window *history.Window, svc *predict.Service, sensors HealthReporter, m *metrics.Metrics, gatherer prometheus.Gatherer) *Server {
	return &Server{
		window:   window,
		svc:      svc,
		sensors:  sensors,
		m:        m,
		gatherer: gatherer,
		now:      time.Now,
	}
}

// Router builds the full route table.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/status", s.instrument("status", s.handleStatus)).Methods(http.MethodGet)
	r.HandleFunc("/api/status/history", s.instrument("status_history", s.handleHistory)).Methods(http.MethodGet)
	r.HandleFunc("/api/status/analytics", s.instrument("status_analytics", s.handleAnalytics)).Methods(http.MethodGet)

	r.HandleFunc("/api/predictions", s.instrument("predictions", s.handlePredictions)).Methods(http.MethodGet)
	r.HandleFunc("/api/predictions", s.instrument("predictions_custom", s.handleCustomPredictions)).Methods(http.MethodPost)
	r.HandleFunc("/api/predictions/insights", s.instrument("insights", s.handleInsights)).Methods(http.MethodGet)

	r.HandleFunc("/api/predictions/advanced/metrics", s.instrument("advanced_metrics", s.handleAdvancedMetrics)).Methods(http.MethodGet)
	r.HandleFunc("/api/predictions/advanced/staffing", s.instrument("advanced_staffing", s.handleStaffing)).Methods(http.MethodGet)
	r.HandleFunc("/api/predictions/advanced/capacity", s.instrument("advanced_capacity", s.handleCapacity)).Methods(http.MethodGet)
	r.HandleFunc("/api/predictions/advanced/scenario", s.instrument("advanced_scenario", s.handleScenario)).Methods(http.MethodPost)
	r.HandleFunc("/api/predictions/advanced/summary", s.instrument("advanced_summary", s.handleSummary)).Methods(http.MethodGet)

	r.HandleFunc("/api/sensors/health", s.instrument("sensor_health", s.handleSensorHealth)).Methods(http.MethodGet)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	return r
}

// instrument wraps a handler with request duration tracking.
func (s *Server) instrument(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(rec, r)
		if s.m != nil {
			class := strconv.Itoa(rec.status/100) + "xx"
			s.m.RequestDuration.WithLabelValues(route, class).Observe(time.Since(start).Seconds())
		}
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// ─── Status ──────────────────────────────────────────────────────────────────

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	current, ok := s.window.Latest()
	if !ok {
		writeError(w, http.StatusNotFound, "no queue data available")
		return
	}
	writeJSON(w, http.StatusOK, queue.Status(s.now(), current, s.window.Recent(24)))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	hours, err := intQuery(r, "hours", 24)
	if err != nil || hours < 1 || hours > predict.MaxLookbackHours {
		writeError(w, http.StatusBadRequest, "hours must be between 1 and 168")
		return
	}
	snaps := s.window.Recent(hours)
	writeJSON(w, http.StatusOK, map[string]any{
		"hours":     hours,
		"count":     len(snaps),
		"snapshots": snaps,
	})
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	week := s.window.Recent(predict.MaxLookbackHours)
	if len(week) == 0 {
		writeError(w, http.StatusNotFound, "no queue data available")
		return
	}
	writeJSON(w, http.StatusOK, queue.Analyze(week))
}

// ─── Predictions ─────────────────────────────────────────────────────────────

func (s *Server) handlePredictions(w http.ResponseWriter, r *http.Request) {
	metric, ok := metricParam(r.URL.Query().Get("type"))
	if !ok {
		writeError(w, http.StatusBadRequest, "type must be queue-length or wait-time")
		return
	}
	hours, err := intQuery(r, "hours", 6)
	if err != nil {
		writeError(w, http.StatusBadRequest, "hours must be an integer")
		return
	}
	// Basic path clamps instead of rejecting.
	if hours < 1 {
		hours = 1
	}
	if hours > predict.MaxBasicHorizon {
		hours = predict.MaxBasicHorizon
	}

	res, err := s.svc.Predict(metric, hours)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type customPredictionRequest struct {
	Type                      string `json:"type"`
	ForecastHours             int    `json:"forecast_hours"`
	IncludeConfidenceInterval bool   `json:"include_confidence_interval"`
}

type bareForecastPoint struct {
	Timestamp       time.Time `json:"timestamp"`
	ForecastedValue float64   `json:"forecasted_value"`
	HorizonIndex    int       `json:"horizon_index"`
}

func (s *Server) handleCustomPredictions(w http.ResponseWriter, r *http.Request) {
	var req customPredictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	metric, ok := metricParam(req.Type)
	if !ok {
		writeError(w, http.StatusBadRequest, "type must be queue-length or wait-time")
		return
	}

	res, err := s.svc.Predict(metric, req.ForecastHours)
	if err != nil {
		writeCoreError(w, err)
		return
	}

	if req.IncludeConfidenceInterval {
		writeJSON(w, http.StatusOK, res)
		return
	}
	bare := make([]bareForecastPoint, len(res.Points))
	for i, p := range res.Points {
		bare[i] = bareForecastPoint{
			Timestamp:       p.Timestamp,
			ForecastedValue: p.ForecastedValue,
			HorizonIndex:    p.HorizonIndex,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"metric":           res.Metric,
		"forecast_hours":   res.ForecastHours,
		"predictions":      bare,
		"data_points_used": res.DataPointsUsed,
		"generated_at":     res.GeneratedAt,
	})
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	insights, dataPoints, err := s.svc.Insights()
	if err != nil {
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"insights":         insights,
		"data_points_used": dataPoints,
		"forecast_horizon": "12 hours",
		"generated_at":     s.now(),
	})
}

// ─── Advanced predictions ────────────────────────────────────────────────────

func (s *Server) handleAdvancedMetrics(w http.ResponseWriter, r *http.Request) {
	hours, err := intQuery(r, "hours", 12)
	if err != nil {
		writeError(w, http.StatusBadRequest, "hours must be an integer")
		return
	}
	res, err := s.svc.Metrics(hours)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleStaffing(w http.ResponseWriter, r *http.Request) {
	hours, err := intQuery(r, "hours", 24)
	if err != nil {
		writeError(w, http.StatusBadRequest, "hours must be an integer")
		return
	}
	plan, err := s.svc.Staffing(hours)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"forecast_hours": hours,
		"staffing":       plan,
		"generated_at":   s.now(),
	})
}

func (s *Server) handleCapacity(w http.ResponseWriter, r *http.Request) {
	days, err := intQuery(r, "days", 7)
	if err != nil {
		writeError(w, http.StatusBadRequest, "days must be an integer")
		return
	}
	res, err := s.svc.CapacityForecast(days)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type scenarioRequest struct {
	Scenario           string  `json:"scenario"`
	BaselineMultiplier float64 `json:"baseline_multiplier"`
	DurationHours      int     `json:"duration_hours"`
}

func (s *Server) handleScenario(w http.ResponseWriter, r *http.Request) {
	var req scenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Scenario == "" {
		writeError(w, http.StatusBadRequest, "scenario is required")
		return
	}
	if req.DurationHours == 0 {
		req.DurationHours = 12
	}

	res, err := s.svc.Scenario(scenario.Name(req.Scenario), req.BaselineMultiplier, req.DurationHours)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.svc.Summarize()
	if err != nil {
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// ─── Sensors & liveness ──────────────────────────────────────────────────────

func (s *Server) handleSensorHealth(w http.ResponseWriter, r *http.Request) {
	var health []model.SensorHealth
	if s.sensors != nil {
		health = s.sensors.Health()
	}
	online := 0
	for _, h := range health {
		if h.Status == "online" {
			online++
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sensors":        health,
		"total_sensors":  len(health),
		"online_sensors": online,
		"checked_at":     s.now(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"snapshots": s.window.Len(),
		"time":      s.now().UTC(),
	})
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func metricParam(raw string) (model.Metric, bool) {
	switch raw {
	case "", string(model.MetricQueueLength):
		return model.MetricQueueLength, true
	case string(model.MetricWaitTime):
		return model.MetricWaitTime, true
	}
	return "", false
}

func intQuery(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

// writeCoreError maps typed analytics errors onto status codes.
func writeCoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, forecast.ErrInvalidRange), errors.Is(err, forecast.ErrInvalidScenario):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, forecast.ErrEmptySeries), errors.Is(err, forecast.ErrInsufficientData):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		slog.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", "error", err)
	}
}

// Package sensor implements the HTTP client for the IoT sensor gateway and
// an in-process simulator of the same wire protocol. All client methods are
// context-aware, respect the shared rate limiter, and retry on transient
// errors (429, 5xx).
package sensor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/eEQK/queue-ai/internal/model"
)

const (
	defaultBaseURL = "http://localhost:3001"
	maxRetries     = 4
)

// streamPaths maps sensor types to the gateway's URL slugs.
var streamPaths = map[model.SensorType]string{
	model.SensorArrival:   "patient-arrivals",
	model.SensorWaitTime:  "wait-times",
	model.SensorOccupancy: "room-occupancy",
	model.SensorStaff:     "staff-availability",
}

// Client is the sensor gateway HTTP client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	debug      bool
}

// NewClient creates a Client for the gateway at baseURL.
func NewClient(baseURL string, timeout time.Duration, ratePerSec float64, debug bool) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	burst := int(ratePerSec)
	if burst < 1 {
		burst = 1
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), burst),
		debug:   debug,
	}
}

// rawReading is the gateway's wire format for a single reading.
type rawReading struct {
	SensorID   string         `json:"sensorId"`
	SensorType string         `json:"sensorType"`
	Timestamp  string         `json:"timestamp"`
	Value      float64        `json:"value"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Next fetches the next unconsumed reading for one sensor stream.
// Returns (nil, nil) when the stream is drained for the current hour,
// signalled by HTTP 204.
func (c *Client) Next(ctx context.Context, st model.SensorType) (*model.SensorReading, error) {
	slug, ok := streamPaths[st]
	if !ok {
		return nil, fmt.Errorf("unknown sensor type %q", st)
	}

	var raw rawReading
	found, err := c.get(ctx, "/api/sensors/"+slug+"/next", &raw)
	if err != nil {
		return nil, fmt.Errorf("next %s reading: %w", st, err)
	}
	if !found {
		return nil, nil
	}

	ts, err := time.Parse(time.RFC3339, raw.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("next %s reading: bad timestamp %q: %w", st, raw.Timestamp, err)
	}
	return &model.SensorReading{
		SensorID:   raw.SensorID,
		SensorType: st,
		Timestamp:  ts,
		Value:      raw.Value,
		Metadata:   raw.Metadata,
	}, nil
}

// Reset rewinds every gateway stream to the start of the current hour.
func (c *Client) Reset(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/sensors/reset", nil)
	if err != nil {
		return fmt.Errorf("building reset request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("reset: HTTP %d", resp.StatusCode)
	}
	return nil
}

// CheckHealth reports whether the gateway is up. Any transport error or
// non-200 status counts as unhealthy rather than an error; polling decides
// what to do with an unhealthy gateway.
func (c *Client) CheckHealth(ctx context.Context) bool {
	if err := c.limiter.Wait(ctx); err != nil {
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}

// get performs a GET against the gateway, handling rate limiting and retries.
// Returns found=false on HTTP 204 (drained stream).
func (c *Client) get(ctx context.Context, path string, out any) (bool, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return false, err
	}

	reqURL := c.baseURL + path
	if c.debug {
		slog.Debug("sensor request", "url", reqURL)
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))*500) * time.Millisecond
			slog.Debug("retrying after backoff", "attempt", attempt, "backoff", backoff)
			select {
			case <-ctx.Done():
				return false, ctx.Err()
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return false, fmt.Errorf("building request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "queue-ai/1.0")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("reading body: %w", err)
			continue
		}

		if c.debug {
			slog.Debug("sensor response", "status", resp.StatusCode, "bytes", len(body))
		}

		if resp.StatusCode == http.StatusNoContent {
			return false, nil
		}

		// Retry on server errors and rate limiting
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
			continue
		}

		if resp.StatusCode != http.StatusOK {
			return false, fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		}

		if err := json.Unmarshal(body, out); err != nil {
			return false, fmt.Errorf("decoding response: %w", err)
		}
		return true, nil
	}
	return false, fmt.Errorf("after %d attempts: %w", maxRetries, lastErr)
}

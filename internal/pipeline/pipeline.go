// Package pipeline provides helpers for reading and writing queue time series
// via stdin/stdout in JSONL format — the canonical pipe format between
// commands.
package pipeline

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/eEQK/queue-ai/internal/model"
)

// row is the canonical JSONL record for one time point.
type row struct {
	Metric    string  `json:"metric"`
	Timestamp string  `json:"timestamp"`
	Value     float64 `json:"value"`
}

// ReadSeries reads JSONL records from r (stdin) and returns the metric name
// and slice of TimePoints. Each line must be a JSON object with "timestamp"
// and "value" fields; timestamps are RFC 3339.
func ReadSeries(r io.Reader) (string, []model.TimePoint, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	var points []model.TimePoint
	metric := ""

	lineNum := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		lineNum++
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		var rec row
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return "", nil, fmt.Errorf("line %d: invalid JSON: %w", lineNum, err)
		}

		if metric == "" && rec.Metric != "" {
			metric = rec.Metric
		}

		ts, err := time.Parse(time.RFC3339, rec.Timestamp)
		if err != nil {
			return "", nil, fmt.Errorf("line %d: invalid timestamp %q", lineNum, rec.Timestamp)
		}

		points = append(points, model.TimePoint{
			Timestamp: ts,
			Value:     rec.Value,
		})
	}
	if err := scanner.Err(); err != nil {
		return "", nil, fmt.Errorf("reading input: %w", err)
	}
	if len(points) == 0 {
		return "", nil, fmt.Errorf("no points read from input (is stdin empty?)")
	}
	return metric, points, nil
}

// WriteJSONL writes points as JSONL to w.
func WriteJSONL(w io.Writer, metric string, points []model.TimePoint) error {
	enc := json.NewEncoder(w)
	for _, p := range points {
		rec := row{
			Metric:    metric,
			Timestamp: p.Timestamp.Format(time.RFC3339),
			Value:     p.Value,
		}
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	return nil
}

// IsTTY returns true if stdout is a terminal (not a pipe).
func IsTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

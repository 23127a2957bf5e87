package pipeline_test

import (
	"strings"
	"testing"
	"time"

	"github.com/eEQK/queue-ai/internal/model"
	"github.com/eEQK/queue-ai/internal/pipeline"
)

func TestWriteReadRoundTrip(t *testing.T) {
	base := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	points := []model.TimePoint{
		{Timestamp: base, Value: 14},
		{Timestamp: base.Add(time.Hour), Value: 21.5},
		{Timestamp: base.Add(2 * time.Hour), Value: 16},
	}

	var buf strings.Builder
	if err := pipeline.WriteJSONL(&buf, "queue-length", points); err != nil {
		t.Fatalf("WriteJSONL: %v", err)
	}

	metric, got, err := pipeline.ReadSeries(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("ReadSeries: %v", err)
	}
	if metric != "queue-length" {
		t.Errorf("metric = %q, want queue-length", metric)
	}
	if len(got) != len(points) {
		t.Fatalf("len = %d, want %d", len(got), len(points))
	}
	for i := range points {
		if !got[i].Timestamp.Equal(points[i].Timestamp) {
			t.Errorf("point %d: timestamp = %v, want %v", i, got[i].Timestamp, points[i].Timestamp)
		}
		if got[i].Value != points[i].Value {
			t.Errorf("point %d: value = %g, want %g", i, got[i].Value, points[i].Value)
		}
	}
}

func TestReadSeriesSkipsBlankAndComments(t *testing.T) {
	input := `
{"metric":"wait-time","timestamp":"2026-03-02T08:00:00Z","value":35}

// a comment line
{"metric":"wait-time","timestamp":"2026-03-02T09:00:00Z","value":40}
`
	metric, points, err := pipeline.ReadSeries(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadSeries: %v", err)
	}
	if metric != "wait-time" {
		t.Errorf("metric = %q, want wait-time", metric)
	}
	if len(points) != 2 {
		t.Errorf("len = %d, want 2", len(points))
	}
}

func TestReadSeriesInvalidJSON(t *testing.T) {
	_, _, err := pipeline.ReadSeries(strings.NewReader("{not json}\n"))
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
	if !strings.Contains(err.Error(), "line 1") {
		t.Errorf("error should name the line: %v", err)
	}
}

func TestReadSeriesInvalidTimestamp(t *testing.T) {
	input := `{"metric":"queue-length","timestamp":"yesterday","value":5}`
	_, _, err := pipeline.ReadSeries(strings.NewReader(input))
	if err == nil {
		t.Fatal("expected error for invalid timestamp")
	}
	if !strings.Contains(err.Error(), "invalid timestamp") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestReadSeriesEmptyInput(t *testing.T) {
	_, _, err := pipeline.ReadSeries(strings.NewReader(""))
	if err == nil {
		t.Fatal("expected error for empty input")
	}
	if !strings.Contains(err.Error(), "no points") {
		t.Errorf("unexpected error: %v", err)
	}
}

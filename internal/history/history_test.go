package history

import (
	"sync"
	"testing"
	"time"

	"github.com/eEQK/queue-ai/internal/model"
)

var base = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

func snapAt(ts time.Time, patients int) model.QueueSnapshot {
	return model.QueueSnapshot{Timestamp: ts, TotalPatients: patients}
}

func TestLatestEmpty(t *testing.T) {
	w := New(DefaultRetention)
	if _, ok := w.Latest(); ok {
		t.Fatal("Latest reported found on empty window")
	}
}

func TestAppendAndLatest(t *testing.T) {
	w := New(DefaultRetention)
	w.Append(snapAt(base, 10))
	w.Append(snapAt(base.Add(time.Hour), 12))

	got, ok := w.Latest()
	if !ok {
		t.Fatal("Latest not found after append")
	}
	if got.TotalPatients != 12 {
		t.Errorf("Latest = %d patients, want 12", got.TotalPatients)
	}
	if w.Len() != 2 {
		t.Errorf("Len = %d, want 2", w.Len())
	}
}

func TestRetentionEviction(t *testing.T) {
	w := New(DefaultRetention)
	w.Append(snapAt(base, 1))
	w.Append(snapAt(base.Add(time.Hour), 2))
	// 8 days later; both earlier snapshots fall outside the window.
	w.Append(snapAt(base.Add(8*24*time.Hour), 3))

	if w.Len() != 1 {
		t.Fatalf("Len = %d after eviction, want 1", w.Len())
	}
	got, _ := w.Latest()
	if got.TotalPatients != 3 {
		t.Errorf("surviving snapshot has %d patients, want 3", got.TotalPatients)
	}
}

func TestRetentionBoundaryIsInclusive(t *testing.T) {
	w := New(DefaultRetention)
	w.Append(snapAt(base, 1))
	w.Append(snapAt(base.Add(DefaultRetention), 2)) // exactly at cutoff

	if w.Len() != 2 {
		t.Errorf("snapshot exactly at the cutoff was evicted, Len = %d", w.Len())
	}
}

func TestRecentWindow(t *testing.T) {
	w := New(DefaultRetention)
	for i := 0; i < 48; i++ {
		w.Append(snapAt(base.Add(time.Duration(i)*time.Hour), i))
	}

	got := w.Recent(24)
	if len(got) != 25 {
		t.Fatalf("Recent(24) returned %d snapshots, want 25", len(got))
	}
	if got[0].TotalPatients != 23 {
		t.Errorf("oldest recent snapshot = %d, want 23", got[0].TotalPatients)
	}
	if got[len(got)-1].TotalPatients != 47 {
		t.Errorf("newest recent snapshot = %d, want 47", got[len(got)-1].TotalPatients)
	}
}

func TestRecentReturnsCopy(t *testing.T) {
	w := New(DefaultRetention)
	w.Append(snapAt(base, 10))

	got := w.Recent(24)
	got[0].TotalPatients = 999

	orig, _ := w.Latest()
	if orig.TotalPatients != 10 {
		t.Error("mutating the Recent result changed the stored snapshot")
	}
}

func TestAllOrdering(t *testing.T) {
	w := New(DefaultRetention)
	for i := 0; i < 5; i++ {
		w.Append(snapAt(base.Add(time.Duration(i)*time.Hour), i))
	}
	all := w.All()
	if len(all) != 5 {
		t.Fatalf("All returned %d snapshots, want 5", len(all))
	}
	for i := 1; i < len(all); i++ {
		if !all[i].Timestamp.After(all[i-1].Timestamp) {
			t.Errorf("All not in chronological order at index %d", i)
		}
	}
}

func TestConcurrentAppendAndRead(t *testing.T) {
	w := New(DefaultRetention)
	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				w.Append(snapAt(base.Add(time.Duration(g*100+i)*time.Minute), i))
				w.Latest()
				w.Recent(1)
			}
		}(g)
	}
	wg.Wait()

	if w.Len() != 400 {
		t.Errorf("Len = %d after concurrent appends, want 400", w.Len())
	}
}

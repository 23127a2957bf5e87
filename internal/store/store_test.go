package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/eEQK/queue-ai/internal/model"
)

var base = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "queue-ai.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func snapAt(ts time.Time, patients int) model.QueueSnapshot {
	return model.QueueSnapshot{
		Timestamp:     ts,
		TotalPatients: patients,
		RoomOccupancy: model.RoomOccupancy{Total: 20, Occupied: patients / 2, Available: 20 - patients/2},
	}
}

func TestOpenCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "queue-ai.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("opening store with nested path: %v", err)
	}
	defer s.Close()
	if s.Path() != path {
		t.Errorf("Path = %q, want %q", s.Path(), path)
	}
}

func TestPutAndLatestSnapshot(t *testing.T) {
	s := openTestStore(t)

	if _, found, err := s.LatestSnapshot(); err != nil || found {
		t.Fatalf("empty store: found=%v err=%v", found, err)
	}

	for i := 0; i < 5; i++ {
		if err := s.PutSnapshot(snapAt(base.Add(time.Duration(i)*time.Hour), 10+i)); err != nil {
			t.Fatalf("put %d: %v", i, err)
		}
	}

	got, found, err := s.LatestSnapshot()
	if err != nil || !found {
		t.Fatalf("latest: found=%v err=%v", found, err)
	}
	if got.TotalPatients != 14 {
		t.Errorf("latest has %d patients, want 14", got.TotalPatients)
	}
}

func TestSnapshotsSinceOrdering(t *testing.T) {
	s := openTestStore(t)

	// Insert out of order; reads must come back chronological.
	for _, h := range []int{3, 0, 4, 1, 2} {
		if err := s.PutSnapshot(snapAt(base.Add(time.Duration(h)*time.Hour), h)); err != nil {
			t.Fatalf("put: %v", err)
		}
	}

	snaps, err := s.SnapshotsSince(base.Add(time.Hour))
	if err != nil {
		t.Fatalf("since: %v", err)
	}
	if len(snaps) != 4 {
		t.Fatalf("got %d snapshots, want 4", len(snaps))
	}
	for i := 1; i < len(snaps); i++ {
		if !snaps[i].Timestamp.After(snaps[i-1].Timestamp) {
			t.Errorf("snapshots out of order at index %d", i)
		}
	}
	if snaps[0].TotalPatients != 1 {
		t.Errorf("first snapshot = %d, want 1 (cutoff is inclusive)", snaps[0].TotalPatients)
	}
}

func TestPutSnapshotOverwritesSameTimestamp(t *testing.T) {
	s := openTestStore(t)

	if err := s.PutSnapshot(snapAt(base, 10)); err != nil {
		t.Fatal(err)
	}
	if err := s.PutSnapshot(snapAt(base, 25)); err != nil {
		t.Fatal(err)
	}

	st, err := s.SnapshotStats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Count != 1 {
		t.Errorf("Count = %d after overwrite, want 1", st.Count)
	}
	got, _, _ := s.LatestSnapshot()
	if got.TotalPatients != 25 {
		t.Errorf("latest = %d, want 25", got.TotalPatients)
	}
}

func TestPrune(t *testing.T) {
	s := openTestStore(t)

	for i := 0; i < 10; i++ {
		if err := s.PutSnapshot(snapAt(base.Add(time.Duration(i)*time.Hour), i)); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := s.Prune(base.Add(6 * time.Hour))
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if removed != 6 {
		t.Errorf("removed %d, want 6", removed)
	}

	snaps, err := s.SnapshotsSince(time.Time{})
	if err != nil {
		t.Fatalf("since: %v", err)
	}
	if len(snaps) != 4 {
		t.Errorf("%d snapshots survive, want 4", len(snaps))
	}
	if snaps[0].TotalPatients != 6 {
		t.Errorf("oldest survivor = %d, want 6", snaps[0].TotalPatients)
	}
}

func TestClearAndStats(t *testing.T) {
	s := openTestStore(t)

	for i := 0; i < 3; i++ {
		if err := s.PutSnapshot(snapAt(base.Add(time.Duration(i)*time.Hour), i)); err != nil {
			t.Fatal(err)
		}
	}
	st, _ := s.SnapshotStats()
	if st.Count != 3 || st.Bytes == 0 {
		t.Errorf("stats before clear: %+v", st)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	st, _ = s.SnapshotStats()
	if st.Count != 0 {
		t.Errorf("Count = %d after clear, want 0", st.Count)
	}
}

func TestReopenPersists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "queue-ai.db")

	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.PutSnapshot(snapAt(base, 17)); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()

	got, found, err := s2.LatestSnapshot()
	if err != nil || !found {
		t.Fatalf("latest after reopen: found=%v err=%v", found, err)
	}
	if got.TotalPatients != 17 {
		t.Errorf("persisted snapshot = %d patients, want 17", got.TotalPatients)
	}
}

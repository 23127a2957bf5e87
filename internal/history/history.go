// Package history keeps the rolling in-memory window of queue snapshots all
// analytics read from. Snapshots older than the retention period are evicted
// on every append, so memory stays bounded without a background sweeper.
package history

import (
	"sync"
	"time"

	"github.com/eEQK/queue-ai/internal/model"
)

// DefaultRetention is how long snapshots are kept.
const DefaultRetention = 7 * 24 * time.Hour

// Window is a thread-safe, time-bounded snapshot buffer.
// The zero value is not usable; call New.
type Window struct {
	mu        sync.RWMutex
	retention time.Duration
	snaps     []model.QueueSnapshot
}

// New returns an empty window with the given retention. Non-positive
// retention falls back to DefaultRetention.
func New(retention time.Duration) *Window {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Window{retention: retention}
}

// Append adds a snapshot and evicts anything older than the retention period
// relative to the new snapshot's timestamp.
func (w *Window) Append(s model.QueueSnapshot) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.snaps = append(w.snaps, s)
	cutoff := s.Timestamp.Add(-w.retention)
	i := 0
	for i < len(w.snaps) && w.snaps[i].Timestamp.Before(cutoff) {
		i++
	}
	if i > 0 {
		w.snaps = append(w.snaps[:0], w.snaps[i:]...)
	}
}

// Latest returns the most recent snapshot, or found=false when empty.
func (w *Window) Latest() (model.QueueSnapshot, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if len(w.snaps) == 0 {
		return model.QueueSnapshot{}, false
	}
	return w.snaps[len(w.snaps)-1], true
}

// Recent returns snapshots from the last n hours, oldest first. The slice is
// a copy; callers may mutate it freely.
func (w *Window) Recent(hours int) []model.QueueSnapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if len(w.snaps) == 0 {
		return nil
	}
	cutoff := w.snaps[len(w.snaps)-1].Timestamp.Add(-time.Duration(hours) * time.Hour)
	i := 0
	for i < len(w.snaps) && w.snaps[i].Timestamp.Before(cutoff) {
		i++
	}
	out := make([]model.QueueSnapshot, len(w.snaps)-i)
	copy(out, w.snaps[i:])
	return out
}

// All returns a copy of every retained snapshot, oldest first.
func (w *Window) All() []model.QueueSnapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]model.QueueSnapshot, len(w.snaps))
	copy(out, w.snaps)
	return out
}

// Len reports the number of retained snapshots.
func (w *Window) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.snaps)
}

// Package store provides a thin bbolt wrapper for queue-ai's snapshot archive.
//
// The in-memory history window is authoritative at runtime; the archive
// exists so a restarted service can replay recent snapshots instead of
// booting blind. Writes happen as snapshots are produced, reads happen once
// at startup and on explicit maintenance commands.
//
// Buckets:
//
//	snapshots — queue snapshots keyed by RFC3339Nano timestamp
//	_meta     — internal: schema version, created_at
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/eEQK/queue-ai/internal/model"
)

// Current schema version. Bump when bucket layout or key format changes.
const schemaVersion = 1

var (
	bucketSnapshots = []byte("snapshots")
	bucketInternal  = []byte("_meta")
)

// keyFormat orders keys chronologically under bbolt's byte-wise sort.
const keyFormat = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps a bbolt database.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the bbolt database at path.
// Parent directories are created automatically.
// Runs schema migrations on every open.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating db directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening db %s: %w", path, err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the filesystem path of the open database.
func (s *Store) Path() string {
	return s.db.Path()
}

// migrate ensures all buckets exist and schema is current.
func (s *Store) migrate() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketSnapshots, bucketInternal} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("creating bucket %s: %w", name, err)
			}
		}

		meta := tx.Bucket(bucketInternal)
		if meta.Get([]byte("schema_version")) == nil {
			if err := meta.Put([]byte("schema_version"), []byte(fmt.Sprintf("%d", schemaVersion))); err != nil {
				return err
			}
			if err := meta.Put([]byte("created_at"), []byte(time.Now().UTC().Format(time.RFC3339))); err != nil {
				return err
			}
		}
		return nil
	})
}

// snapshotKey builds the bucket key for a snapshot. Timestamps are normalized
// to UTC and padded to nanosecond width so lexical order equals time order.
func snapshotKey(ts time.Time) []byte {
	return []byte(ts.UTC().Format(keyFormat))
}

// PutSnapshot archives one queue snapshot. A snapshot with the same
// timestamp overwrites the previous entry.
func (s *Store) PutSnapshot(snap model.QueueSnapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSnapshots).Put(snapshotKey(snap.Timestamp), b)
	})
}

// SnapshotsSince returns archived snapshots with timestamps >= cutoff,
// oldest first.
func (s *Store) SnapshotsSince(cutoff time.Time) ([]model.QueueSnapshot, error) {
	var snaps []model.QueueSnapshot
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketSnapshots).Cursor()
		for k, v := c.Seek(snapshotKey(cutoff)); k != nil; k, v = c.Next() {
			var snap model.QueueSnapshot
			if err := json.Unmarshal(v, &snap); err != nil {
				return fmt.Errorf("decoding snapshot %s: %w", k, err)
			}
			snaps = append(snaps, snap)
		}
		return nil
	})
	return snaps, err
}

// LatestSnapshot returns the most recently archived snapshot.
// Returns (snap, true, nil) if found, (zero, false, nil) when empty.
func (s *Store) LatestSnapshot() (model.QueueSnapshot, bool, error) {
	var snap model.QueueSnapshot
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		_, v := tx.Bucket(bucketSnapshots).Cursor().Last()
		if v == nil {
			return nil
		}
		found = true
		return json.Unmarshal(v, &snap)
	})
	if err != nil {
		return model.QueueSnapshot{}, false, err
	}
	return snap, found, nil
}

// Prune deletes archived snapshots older than cutoff and reports how many
// were removed.
func (s *Store) Prune(cutoff time.Time) (int, error) {
	limit := snapshotKey(cutoff)
	var removed int
	err := s.db.Update(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketSnapshots).Cursor()
		for k, _ := c.First(); k != nil && string(k) < string(limit); k, _ = c.Next() {
			if err := c.Delete(); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	return removed, err
}

// Stats holds row count and byte size for the snapshot bucket.
type Stats struct {
	Count int
	Bytes int64
}

// SnapshotStats returns the archived row count and approximate size.
func (s *Store) SnapshotStats() (Stats, error) {
	var st Stats
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSnapshots).ForEach(func(k, v []byte) error {
			st.Count++
			st.Bytes += int64(len(k) + len(v))
			return nil
		})
	})
	return st, err
}

// Clear deletes every archived snapshot.
func (s *Store) Clear() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketSnapshots); err != nil {
			return fmt.Errorf("clearing snapshots: %w", err)
		}
		_, err := tx.CreateBucket(bucketSnapshots)
		return err
	})
}

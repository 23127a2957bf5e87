package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/eEQK/queue-ai/internal/history"
	"github.com/eEQK/queue-ai/internal/render"
	"github.com/eEQK/queue-ai/internal/store"
)

// resolveFormat returns the effective format string, falling back to "table".
func resolveFormat() string {
	if globalFlags.Format != "" {
		return globalFlags.Format
	}
	return render.FormatTable
}

// loadWindow opens the snapshot archive at dbPath and replays the retained
// week into a fresh history window. The store is closed before returning.
func loadWindow(dbPath string) (*history.Window, error) {
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	defer st.Close()

	cutoff := time.Now().Add(-history.DefaultRetention)
	snaps, err := st.SnapshotsSince(cutoff)
	if err != nil {
		return nil, fmt.Errorf("reading archive: %w", err)
	}
	if len(snaps) == 0 {
		return nil, fmt.Errorf("archive at %s holds no snapshots (run `queue-ai serve` or `queue-ai seed` first)", dbPath)
	}

	window := history.New(history.DefaultRetention)
	for _, s := range snaps {
		window.Append(s)
	}
	return window, nil
}

// printKVTable renders a two-column key/value table to w using aligned columns.
func printKVTable(w io.Writer, rows [][]string) {
	maxKey := 0
	for _, r := range rows {
		if len(r[0]) > maxKey {
			maxKey = len(r[0])
		}
	}
	for _, r := range rows {
		padding := strings.Repeat(" ", maxKey-len(r[0]))
		fmt.Fprintf(w, "  %s%s  %s\n", r[0], padding, r[1])
	}
}

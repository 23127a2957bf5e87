package cmd

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"github.com/eEQK/queue-ai/internal/aggregate"
	"github.com/eEQK/queue-ai/internal/store"
)

var (
	seedHours int
	seedSeed  int64
	seedClear bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Generate synthetic snapshot history into the archive",
	Long: `Generate hourly synthetic queue snapshots following a plausible daily load
pattern (busy daytime, quieter nights) and write them to the snapshot archive.

Useful for demos and for exercising the forecast commands without running the
poller for a week.`,
	Example: `  queue-ai seed --hours 168
  queue-ai seed --hours 72 --seed 42 --clear`,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		if seedHours < 1 {
			return fmt.Errorf("--hours must be at least 1")
		}

		st, err := store.Open(deps.Config.DBPath)
		if err != nil {
			return fmt.Errorf("opening archive: %w", err)
		}
		defer st.Close()

		if seedClear {
			if err := st.Clear(); err != nil {
				return fmt.Errorf("clearing archive: %w", err)
			}
		}

		seed := seedSeed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng := rand.New(rand.NewSource(seed))

		snaps := aggregate.Synthetic(rng, time.Now(), seedHours)
		for _, s := range snaps {
			if err := st.PutSnapshot(s); err != nil {
				return fmt.Errorf("writing snapshot: %w", err)
			}
		}

		if !deps.Config.Quiet {
			fmt.Printf("✓ Seeded %d snapshots into %s\n", len(snaps), st.Path())
			if stats, err2 := st.SnapshotStats(); err2 == nil {
				fmt.Printf("  Archive now holds %d snapshots (%.1f KiB)\n",
					stats.Count, float64(stats.Bytes)/1024)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().IntVar(&seedHours, "hours", 168, "hours of history to generate")
	seedCmd.Flags().Int64Var(&seedSeed, "seed", 0, "random seed (0 = time-based)")
	seedCmd.Flags().BoolVar(&seedClear, "clear", false, "clear existing snapshots first")
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/eEQK/queue-ai/internal/aggregate"
	"github.com/eEQK/queue-ai/internal/api"
	"github.com/eEQK/queue-ai/internal/history"
	"github.com/eEQK/queue-ai/internal/metrics"
	"github.com/eEQK/queue-ai/internal/poll"
	"github.com/eEQK/queue-ai/internal/predict"
	"github.com/eEQK/queue-ai/internal/store"
)

var (
	serveHost         string
	servePort         int
	servePollInterval string
	serveNoPoll       bool
	serveNoArchive    bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the queue analytics service",
	Long: `Start the long-running analytics service: sensor polling, snapshot
aggregation, and the HTTP API.

On startup the retained week of snapshots is replayed from the archive into
the in-memory window, so a restart does not lose the rolling history. New
snapshots are appended to the archive as they are accepted.

Shuts down gracefully on SIGINT/SIGTERM.`,
	Example: `  queue-ai serve
  queue-ai serve --port 8080 --poll-interval 15s
  queue-ai serve --no-poll          # serve archived data only
  QUEUEAI_SENSOR_URL=http://iot:3001 queue-ai serve`,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		cfg := deps.Config

		if serveHost != "" {
			cfg.Host = serveHost
		}
		if servePort > 0 {
			cfg.Port = servePort
		}
		if servePollInterval != "" {
			d, err2 := time.ParseDuration(servePollInterval)
			if err2 != nil || d <= 0 {
				return fmt.Errorf("invalid --poll-interval %q", servePollInterval)
			}
			cfg.PollInterval = d
		}

		st, err := store.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("opening archive: %w", err)
		}
		defer st.Close()

		window := history.New(history.DefaultRetention)
		cutoff := time.Now().Add(-history.DefaultRetention)
		snaps, err := st.SnapshotsSince(cutoff)
		if err != nil {
			return fmt.Errorf("replaying archive: %w", err)
		}
		for _, s := range snaps {
			window.Append(s)
		}
		if pruned, err2 := st.Prune(cutoff); err2 == nil && pruned > 0 {
			slog.Info("pruned expired snapshots", "count", pruned)
		}
		slog.Info("archive replayed", "snapshots", len(snaps), "path", st.Path())
		if latest, found, err2 := st.LatestSnapshot(); err2 == nil && found {
			slog.Info("latest archived snapshot", "timestamp", latest.Timestamp, "age", time.Since(latest.Timestamp).Round(time.Second))
		}

		reg := prometheus.NewRegistry()
		m := metrics.New(reg)
		svc := predict.NewService(window, m)

		var archive poll.Archiver
		if !serveNoArchive {
			archive = st
		}
		poller := poll.New(deps.Client, aggregate.New(), window, archive, m, cfg.PollInterval)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if !serveNoPoll {
			poller.Start(ctx)
			defer poller.Stop()
		}

		server := api.New(window, svc, poller, m, reg)
		httpServer := &http.Server{
			Addr:              cfg.Addr(),
			Handler:           server.Router(),
			ReadHeaderTimeout: 5 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			slog.Info("http server listening", "addr", cfg.Addr())
			errCh <- httpServer.ListenAndServe()
		}()

		select {
		case <-ctx.Done():
			slog.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("http shutdown: %w", err)
			}
			return nil
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("http server: %w", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveHost, "host", "",
		"bind address (default: 0.0.0.0, env QUEUEAI_HOST)")
	serveCmd.Flags().IntVar(&servePort, "port", 0,
		"listen port (default: 3000, env QUEUEAI_PORT)")
	serveCmd.Flags().StringVar(&servePollInterval, "poll-interval", "",
		"sensor polling interval (default: 30s, env QUEUEAI_POLL_INTERVAL)")
	serveCmd.Flags().BoolVar(&serveNoPoll, "no-poll", false,
		"skip sensor polling and serve archived data only")
	serveCmd.Flags().BoolVar(&serveNoArchive, "no-archive", false,
		"keep snapshots in memory only, do not persist to the archive")
}

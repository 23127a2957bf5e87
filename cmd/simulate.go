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

	"github.com/spf13/cobra"

	"github.com/eEQK/queue-ai/internal/sensor"
)

var simulatePort int

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the sensor simulator API",
	Long: `Run a standalone sensor gateway that emits hour-of-day shaped readings for
patient arrivals, wait times, room occupancy, and staff availability.

Each stream yields up to 12 readings per hour at 5-minute spacing, then
returns 204 until the next hour. Point queue-ai serve at it:

  queue-ai simulate --port 3001 &
  queue-ai serve --sensor-url http://localhost:3001`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sim := sensor.NewSimulator()

		httpServer := &http.Server{
			Addr:              fmt.Sprintf(":%d", simulatePort),
			Handler:           sim.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			slog.Info("sensor simulator listening", "addr", httpServer.Addr)
			errCh <- httpServer.ListenAndServe()
		}()

		select {
		case <-ctx.Done():
			slog.Info("shutting down simulator")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		}
	},
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().IntVar(&simulatePort, "port", 3001, "simulator listen port")
}

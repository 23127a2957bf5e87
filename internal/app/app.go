// Package app wires together configuration, the sensor client, and other
// dependencies into a single Deps struct that commands receive at runtime.
package app

import (
	"github.com/eEQK/queue-ai/internal/config"
	"github.com/eEQK/queue-ai/internal/sensor"
)

// Deps holds all runtime dependencies injected into command Run functions.
type Deps struct {
	Config *config.Config
	Client *sensor.Client
}

// New builds a Deps from resolved config.
func New(cfg *config.Config) *Deps {
	client := sensor.NewClient(
		cfg.SensorURL,
		cfg.Timeout,
		cfg.Rate,
		cfg.Debug,
	)
	return &Deps{
		Config: cfg,
		Client: client,
	}
}

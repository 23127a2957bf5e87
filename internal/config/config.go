// Package config handles loading and resolving queue-ai configuration.
// Resolution order (first non-empty value wins):
//  1. CLI flags
//  2. QUEUEAI_* environment variables
//  3. config.json in the current working directory
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	DefaultConfigFile   = "config.json"
	DefaultHost         = "0.0.0.0"
	DefaultPort         = 3000
	DefaultSensorURL    = "http://localhost:3001"
	DefaultPollInterval = 30 * time.Second
	DefaultTimeout      = 10 * time.Second
	DefaultRate         = 10.0

	EnvHost         = "QUEUEAI_HOST"
	EnvPort         = "QUEUEAI_PORT"
	EnvSensorURL    = "QUEUEAI_SENSOR_URL"
	EnvPollInterval = "QUEUEAI_POLL_INTERVAL"
	EnvDBPath       = "QUEUEAI_DB_PATH"
)

// File is the on-disk representation of config.json.
type File struct {
	Host         string  `json:"host"`
	Port         int     `json:"port"`
	SensorURL    string  `json:"sensor_url"`
	PollInterval string  `json:"poll_interval"`
	Timeout      string  `json:"timeout"`
	Rate         float64 `json:"rate"`
	DBPath       string  `json:"db_path"`
}

// Config is the fully-resolved runtime configuration.
// All callers use this struct; the File is only read during loading.
type Config struct {
	Host         string
	Port         int
	SensorURL    string
	PollInterval time.Duration
	Timeout      time.Duration
	Rate         float64
	DBPath       string
	ConfigPath   string // path of the config.json that was loaded (empty if none found)

	// Runtime overrides set from CLI flags after Load()
	NoArchive bool
	Quiet     bool
	Verbose   bool
	Debug     bool
}

// Load resolves configuration from config.json and the environment. CLI flag
// overrides are applied by the command layer afterwards.
func Load() (*Config, error) {
	cfg := &Config{
		Host:         DefaultHost,
		Port:         DefaultPort,
		SensorURL:    DefaultSensorURL,
		PollInterval: DefaultPollInterval,
		Timeout:      DefaultTimeout,
		Rate:         DefaultRate,
	}

	// Layer 1: config.json (lowest priority)
	if f, path, err := loadFile(); err == nil {
		applyFile(cfg, f, path)
	}

	// Layer 2: environment variables
	if v := os.Getenv(EnvHost); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p < 1 || p > 65535 {
			return nil, fmt.Errorf("invalid %s: %q", EnvPort, v)
		}
		cfg.Port = p
	}
	if v := os.Getenv(EnvSensorURL); v != "" {
		cfg.SensorURL = v
	}
	if v := os.Getenv(EnvPollInterval); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid %s: %q", EnvPollInterval, v)
		}
		cfg.PollInterval = d
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		cfg.DBPath = v
	}

	// Set default DB path if still unset
	if cfg.DBPath == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			cfg.DBPath = filepath.Join(home, ".queue-ai", "queue-ai.db")
		}
	}

	return cfg, nil
}

// Addr returns the host:port pair the HTTP server binds to.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// loadFile attempts to read config.json from the current working directory.
func loadFile() (*File, string, error) {
	path, err := filepath.Abs(DefaultConfigFile)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", fmt.Errorf("config.json not found at %s", path)
		}
		return nil, "", fmt.Errorf("reading config.json: %w", err)
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, "", fmt.Errorf("parsing config.json: %w", err)
	}
	return &f, path, nil
}

// applyFile copies values from a parsed File into cfg,
// skipping any fields that are zero/empty.
func applyFile(cfg *Config, f *File, path string) {
	cfg.ConfigPath = path
	if f.Host != "" {
		cfg.Host = f.Host
	}
	if f.Port > 0 {
		cfg.Port = f.Port
	}
	if f.SensorURL != "" {
		cfg.SensorURL = f.SensorURL
	}
	if f.PollInterval != "" {
		if d, err := time.ParseDuration(f.PollInterval); err == nil && d > 0 {
			cfg.PollInterval = d
		}
	}
	if f.Timeout != "" {
		if d, err := time.ParseDuration(f.Timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
	if f.Rate > 0 {
		cfg.Rate = f.Rate
	}
	if f.DBPath != "" {
		cfg.DBPath = f.DBPath
	}
}

// Template returns a File populated with sensible defaults, suitable for
// writing an initial config.json via `queue-ai config init`.
func Template() File {
	return File{
		Host:         DefaultHost,
		Port:         DefaultPort,
		SensorURL:    DefaultSensorURL,
		PollInterval: "30s",
		Timeout:      "10s",
		Rate:         DefaultRate,
	}
}

// WriteFile serialises a File to the given path.
func WriteFile(path string, f File) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0600)
}

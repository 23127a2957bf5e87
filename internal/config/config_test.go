package config_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/eEQK/queue-ai/internal/config"
)

// ─── Helpers ──────────────────────────────────────────────────────────────────

// writeConfig writes a config.json into dir and changes the working directory
// to dir for the duration of the test.
func writeConfig(t *testing.T, dir string, f config.File) {
	t.Helper()
	path := filepath.Join(dir, "config.json")
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	// Change working directory so config.Load() finds config.json
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(orig) })
}

// clearEnv unsets all QUEUEAI_* variables for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		config.EnvHost, config.EnvPort, config.EnvSensorURL,
		config.EnvPollInterval, config.EnvDBPath,
	} {
		t.Setenv(key, "")
	}
}

// ─── Defaults ─────────────────────────────────────────────────────────────────

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	clearEnv(t)
	// Change to temp dir so no config.json is found
	orig, _ := os.Getwd()
	_ = os.Chdir(dir)
	t.Cleanup(func() { _ = os.Chdir(orig) })

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Host != config.DefaultHost {
		t.Errorf("Host: expected %q, got %q", config.DefaultHost, cfg.Host)
	}
	if cfg.Port != config.DefaultPort {
		t.Errorf("Port: expected %d, got %d", config.DefaultPort, cfg.Port)
	}
	if cfg.SensorURL != config.DefaultSensorURL {
		t.Errorf("SensorURL: expected %q, got %q", config.DefaultSensorURL, cfg.SensorURL)
	}
	if cfg.PollInterval != config.DefaultPollInterval {
		t.Errorf("PollInterval: expected %v, got %v", config.DefaultPollInterval, cfg.PollInterval)
	}
	if cfg.Rate != config.DefaultRate {
		t.Errorf("Rate: expected %g, got %g", config.DefaultRate, cfg.Rate)
	}
	if cfg.DBPath == "" {
		t.Error("DBPath should have a default (home dir based) value")
	}
}

func TestAddr(t *testing.T) {
	cfg := &config.Config{Host: "127.0.0.1", Port: 8080}
	if cfg.Addr() != "127.0.0.1:8080" {
		t.Errorf("Addr: expected 127.0.0.1:8080, got %q", cfg.Addr())
	}
}

// ─── Config file loading ──────────────────────────────────────────────────────

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	clearEnv(t)
	writeConfig(t, dir, config.File{
		Host:         "127.0.0.1",
		Port:         4000,
		SensorURL:    "http://sensors.example.com",
		PollInterval: "15s",
		Timeout:      "20s",
		Rate:         2.5,
		DBPath:       "/tmp/test.db",
	})

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Host != "127.0.0.1" {
		t.Errorf("Host: expected 127.0.0.1, got %q", cfg.Host)
	}
	if cfg.Port != 4000 {
		t.Errorf("Port: expected 4000, got %d", cfg.Port)
	}
	if cfg.SensorURL != "http://sensors.example.com" {
		t.Errorf("SensorURL: expected custom URL, got %q", cfg.SensorURL)
	}
	if cfg.PollInterval.String() != "15s" {
		t.Errorf("PollInterval: expected 15s, got %q", cfg.PollInterval.String())
	}
	if cfg.Timeout.String() != "20s" {
		t.Errorf("Timeout: expected 20s, got %q", cfg.Timeout.String())
	}
	if cfg.Rate != 2.5 {
		t.Errorf("Rate: expected 2.5, got %g", cfg.Rate)
	}
	if cfg.DBPath != "/tmp/test.db" {
		t.Errorf("DBPath: expected /tmp/test.db, got %q", cfg.DBPath)
	}
}

func TestLoadConfigPathRecorded(t *testing.T) {
	dir := t.TempDir()
	clearEnv(t)
	writeConfig(t, dir, config.File{Port: 4000})

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ConfigPath == "" {
		t.Error("ConfigPath should be set when config.json is found")
	}
	if !strings.Contains(cfg.ConfigPath, "config.json") {
		t.Errorf("ConfigPath should contain config.json, got %q", cfg.ConfigPath)
	}
}

func TestLoadNoConfigFile(t *testing.T) {
	dir := t.TempDir()
	clearEnv(t)
	orig, _ := os.Getwd()
	_ = os.Chdir(dir)
	t.Cleanup(func() { _ = os.Chdir(orig) })

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load without config.json should not error: %v", err)
	}
	if cfg.ConfigPath != "" {
		t.Errorf("ConfigPath should be empty when no file found, got %q", cfg.ConfigPath)
	}
}

func TestLoadInvalidIntervalIgnored(t *testing.T) {
	// Invalid duration strings in the file should be ignored, not error
	dir := t.TempDir()
	clearEnv(t)
	writeConfig(t, dir, config.File{
		PollInterval: "not-a-duration",
		Timeout:      "-5s",
	})

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PollInterval != config.DefaultPollInterval {
		t.Errorf("invalid poll interval should use default %v, got %v", config.DefaultPollInterval, cfg.PollInterval)
	}
	if cfg.Timeout != config.DefaultTimeout {
		t.Errorf("negative timeout should use default %v, got %v", config.DefaultTimeout, cfg.Timeout)
	}
}

// ─── Environment variable priority ───────────────────────────────────────────

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	clearEnv(t)
	writeConfig(t, dir, config.File{SensorURL: "http://from-file", Port: 4000})
	t.Setenv(config.EnvSensorURL, "http://from-env")
	t.Setenv(config.EnvPort, "5000")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SensorURL != "http://from-env" {
		t.Errorf("env QUEUEAI_SENSOR_URL should override file: got %q", cfg.SensorURL)
	}
	if cfg.Port != 5000 {
		t.Errorf("env QUEUEAI_PORT should override file: got %d", cfg.Port)
	}
}

func TestLoadEnvDBPath(t *testing.T) {
	dir := t.TempDir()
	clearEnv(t)
	orig, _ := os.Getwd()
	_ = os.Chdir(dir)
	t.Cleanup(func() { _ = os.Chdir(orig) })
	t.Setenv(config.EnvDBPath, "/custom/path/queue-ai.db")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath != "/custom/path/queue-ai.db" {
		t.Errorf("QUEUEAI_DB_PATH: expected /custom/path/queue-ai.db, got %q", cfg.DBPath)
	}
}

func TestLoadEnvPollInterval(t *testing.T) {
	dir := t.TempDir()
	clearEnv(t)
	orig, _ := os.Getwd()
	_ = os.Chdir(dir)
	t.Cleanup(func() { _ = os.Chdir(orig) })
	t.Setenv(config.EnvPollInterval, "2m")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PollInterval.String() != "2m0s" {
		t.Errorf("QUEUEAI_POLL_INTERVAL: expected 2m0s, got %q", cfg.PollInterval.String())
	}
}

func TestLoadInvalidEnvRejected(t *testing.T) {
	dir := t.TempDir()
	clearEnv(t)
	orig, _ := os.Getwd()
	_ = os.Chdir(dir)
	t.Cleanup(func() { _ = os.Chdir(orig) })

	t.Setenv(config.EnvPort, "not-a-port")
	if _, err := config.Load(); err == nil {
		t.Error("invalid QUEUEAI_PORT should error")
	}
	t.Setenv(config.EnvPort, "70000")
	if _, err := config.Load(); err == nil {
		t.Error("out-of-range QUEUEAI_PORT should error")
	}
	t.Setenv(config.EnvPort, "")

	t.Setenv(config.EnvPollInterval, "bogus")
	if _, err := config.Load(); err == nil {
		t.Error("invalid QUEUEAI_POLL_INTERVAL should error")
	}
}

// ─── WriteFile / Template ─────────────────────────────────────────────────────

func TestWriteFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	f := config.File{
		Host:         "0.0.0.0",
		Port:         3000,
		SensorURL:    "http://localhost:3001",
		PollInterval: "45s",
		Timeout:      "10s",
		Rate:         3.0,
		DBPath:       "/data/queue-ai.db",
	}

	if err := config.WriteFile(path, f); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var got config.File
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}

	if got.Port != f.Port {
		t.Errorf("Port: expected %d, got %d", f.Port, got.Port)
	}
	if got.SensorURL != f.SensorURL {
		t.Errorf("SensorURL: expected %q, got %q", f.SensorURL, got.SensorURL)
	}
	if got.PollInterval != f.PollInterval {
		t.Errorf("PollInterval: expected %q, got %q", f.PollInterval, got.PollInterval)
	}
	if got.Rate != f.Rate {
		t.Errorf("Rate: expected %g, got %g", f.Rate, got.Rate)
	}
	if got.DBPath != f.DBPath {
		t.Errorf("DBPath: expected %q, got %q", f.DBPath, got.DBPath)
	}
}

func TestWriteFilePermissions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	if err := config.WriteFile(path, config.File{Port: 3000}); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	// Should be 0600 — owner read/write only
	if info.Mode().Perm() != 0600 {
		t.Errorf("file permissions: expected 0600, got %04o", info.Mode().Perm())
	}
}

func TestTemplateDefaults(t *testing.T) {
	tmpl := config.Template()

	if tmpl.Host != config.DefaultHost {
		t.Errorf("Template.Host: expected %q, got %q", config.DefaultHost, tmpl.Host)
	}
	if tmpl.Port != config.DefaultPort {
		t.Errorf("Template.Port: expected %d, got %d", config.DefaultPort, tmpl.Port)
	}
	if tmpl.PollInterval != "30s" {
		t.Errorf("Template.PollInterval: expected 30s, got %q", tmpl.PollInterval)
	}
	if tmpl.SensorURL == "" {
		t.Error("Template.SensorURL should have a default value")
	}
	if tmpl.DBPath != "" {
		t.Errorf("Template.DBPath should be empty (resolved at load), got %q", tmpl.DBPath)
	}
}

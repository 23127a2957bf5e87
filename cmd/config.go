package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eEQK/queue-ai/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage queue-ai configuration",
	Long:  `Read and write queue-ai configuration stored in config.json.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a template config.json in the current directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultConfigFile
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config.json already exists at %s (delete it first to re-initialise)", path)
		}
		tmpl := config.Template()
		if err := config.WriteFile(path, tmpl); err != nil {
			return err
		}
		fmt.Printf("✓ Created %s\n", path)
		fmt.Println("  Edit it to point at your sensor gateway and archive path.")
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the current resolved configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		src := "(not found)"
		if cfg.ConfigPath != "" {
			src = cfg.ConfigPath
		}

		switch resolveFormat() {
		case "json":
			type configOut struct {
				Host         string  `json:"host"`
				Port         int     `json:"port"`
				SensorURL    string  `json:"sensor_url"`
				PollInterval string  `json:"poll_interval"`
				Timeout      string  `json:"timeout"`
				Rate         float64 `json:"rate"`
				DBPath       string  `json:"db_path"`
				ConfigFile   string  `json:"config_file"`
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(configOut{
				Host:         cfg.Host,
				Port:         cfg.Port,
				SensorURL:    cfg.SensorURL,
				PollInterval: cfg.PollInterval.String(),
				Timeout:      cfg.Timeout.String(),
				Rate:         cfg.Rate,
				DBPath:       cfg.DBPath,
				ConfigFile:   src,
			})
		default:
			rows := [][]string{
				{"host", cfg.Host},
				{"port", fmt.Sprintf("%d", cfg.Port)},
				{"sensor_url", cfg.SensorURL},
				{"poll_interval", cfg.PollInterval.String()},
				{"timeout", cfg.Timeout.String()},
				{"rate", fmt.Sprintf("%.1f req/s", cfg.Rate)},
				{"db_path", cfg.DBPath},
				{"config_file", src},
			}
			printKVTable(os.Stdout, rows)
			return nil
		}
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value in config.json",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := strings.ToLower(args[0])
		val := args[1]

		// Load existing file or start from template
		var f config.File
		existing, path, err := loadConfigFile()
		if err != nil {
			path = config.DefaultConfigFile
			f = config.Template()
		} else {
			f = *existing
		}

		switch key {
		case "host":
			f.Host = val
		case "port":
			var n int
			if _, err := fmt.Sscanf(val, "%d", &n); err != nil {
				return fmt.Errorf("port must be an integer")
			}
			f.Port = n
		case "sensor_url":
			f.SensorURL = val
		case "poll_interval":
			f.PollInterval = val
		case "timeout":
			f.Timeout = val
		case "rate":
			var r float64
			if _, err := fmt.Sscanf(val, "%f", &r); err != nil {
				return fmt.Errorf("rate must be a number")
			}
			f.Rate = r
		case "db_path":
			f.DBPath = val
		default:
			return fmt.Errorf("unknown config key: %q\n\nValid keys: host, port, sensor_url, poll_interval, timeout, rate, db_path", key)
		}

		if err := config.WriteFile(path, f); err != nil {
			return err
		}
		fmt.Printf("✓ Set %s in %s\n", key, path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
}

// loadConfigFile reads config.json from cwd; used by configSetCmd.
func loadConfigFile() (*config.File, string, error) {
	path := config.DefaultConfigFile
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	var f config.File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, "", err
	}
	return &f, path, nil
}

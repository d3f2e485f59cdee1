// Package config manages the headless core's JSON-backed configuration:
// emulation region/timing and logging preferences. No window, audio, or
// input-mapping configuration ships, since this core has no GUI backend.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// EmulationConfig controls the clock/scheduler's timing behavior.
type EmulationConfig struct {
	Region        string `json:"region"`         // "NTSC" (only NTSC timing is implemented)
	CycleAccuracy bool   `json:"cycle_accuracy"` // reserved for a future interpreter mode
}

// DebugConfig controls diagnostic output.
type DebugConfig struct {
	EnableLogging bool   `json:"enable_logging"`
	LogLevel      string `json:"log_level"` // "DEBUG", "INFO", "WARN", "ERROR"
	CPUTracing    bool   `json:"cpu_tracing"`
}

// PathsConfig locates on-disk resources.
type PathsConfig struct {
	SaveData string `json:"save_data"`
	Logs     string `json:"logs"`
}

// Config is the complete, JSON-serializable configuration for one run of
// the core.
type Config struct {
	Emulation EmulationConfig `json:"emulation"`
	Debug     DebugConfig     `json:"debug"`
	Paths     PathsConfig     `json:"paths"`

	configPath string
	loaded     bool
}

// New returns a Config populated with the core's defaults.
func New() *Config {
	return &Config{
		Emulation: EmulationConfig{
			Region:        "NTSC",
			CycleAccuracy: true,
		},
		Debug: DebugConfig{
			EnableLogging: true,
			LogLevel:      "INFO",
			CPUTracing:    false,
		},
		Paths: PathsConfig{
			SaveData: "./saves",
			Logs:     "./logs",
		},
	}
}

// LoadFromFile reads config as JSON from path. If the file doesn't exist,
// the current (default) configuration is written there instead, so a
// first run always leaves a config file behind.
func (c *Config) LoadFromFile(path string) error {
	c.configPath = path

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return c.SaveToFile(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := c.validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	c.loaded = true
	return nil
}

// SaveToFile writes the configuration as indented JSON to path, creating
// its parent directory if needed.
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	c.configPath = path
	return nil
}

func (c *Config) validate() error {
	if c.Emulation.Region != "NTSC" {
		return fmt.Errorf("unsupported region %q: only NTSC timing is implemented", c.Emulation.Region)
	}
	switch c.Debug.LogLevel {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return fmt.Errorf("unknown log level %q", c.Debug.LogLevel)
	}
	return nil
}

// IsLoaded reports whether LoadFromFile has populated this Config from an
// existing file (as opposed to writing out fresh defaults).
func (c *Config) IsLoaded() bool { return c.loaded }

// DefaultPath returns the conventional config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "nesgo.json"
	}
	return filepath.Join(dir, "nesgo", "config.json")
}

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/example/formcraft/internal/app"
)

// DirName is the per-project directory holding config.json.
const DirName = ".formcraft"

// CurrentVersion is written by Default.
const CurrentVersion = "1"

// Config represents the flat formcraft configuration.
// Durations are Go duration strings ("2s", "300ms"); empty means default.
type Config struct {
	Version               string `json:"version"`
	DatabasePath          string `json:"database_path,omitempty"`           // empty: ~/.formcraft/formcraft.db
	ActiveQuestionnaireID string `json:"active_questionnaire_id,omitempty"` // set by `questionnaire use`
	PollInterval          string `json:"poll_interval,omitempty"`
	RetryDelay            string `json:"retry_delay,omitempty"`
	ResetDelay            string `json:"reset_delay,omitempty"`
	DriftTolerance        int    `json:"drift_tolerance"`
	LogLevel              string `json:"log_level,omitempty"` // logrus level name
}

// Default returns the configuration written by `formcraft init`.
func Default() *Config {
	defaults := app.DefaultSyncSettings()
	return &Config{
		Version:        CurrentVersion,
		PollInterval:   defaults.PollInterval.String(),
		RetryDelay:     defaults.RetryDelay.String(),
		ResetDelay:     defaults.ResetDelay.String(),
		DriftTolerance: 1,
		LogLevel:       "info",
	}
}

// LoadConfig reads .formcraft/config.json from the specified directory.
// Returns error if no config found - caller should handle accordingly.
func LoadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, DirName, "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if _, err := cfg.SyncSettings(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SaveConfig writes config.json to directory
func SaveConfig(dir string, cfg *Config) error {
	cfgDir := filepath.Join(dir, DirName)
	if err := os.MkdirAll(cfgDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s dir: %w", DirName, err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(cfgDir, "config.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// SyncSettings parses the duration fields. Empty fields keep the engine defaults.
func (c *Config) SyncSettings() (app.SyncSettings, error) {
	settings := app.DefaultSyncSettings()
	fields := []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"poll_interval", c.PollInterval, &settings.PollInterval},
		{"retry_delay", c.RetryDelay, &settings.RetryDelay},
		{"reset_delay", c.ResetDelay, &settings.ResetDelay},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		d, err := time.ParseDuration(f.value)
		if err != nil {
			return app.SyncSettings{}, fmt.Errorf("invalid %s %q: %w", f.name, f.value, err)
		}
		if d <= 0 {
			return app.SyncSettings{}, fmt.Errorf("invalid %s %q: must be positive", f.name, f.value)
		}
		*f.dst = d
	}
	return settings, nil
}

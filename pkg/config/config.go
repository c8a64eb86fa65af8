// Package config loads winmem settings from defaults, an optional JSON file
// and WINMEM_ environment variables. Command-line flags are applied on top by
// the caller.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/danpilch/winmem/pkg/output"
	"github.com/danpilch/winmem/pkg/use"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "WINMEM_"

// Config holds every setting.
type Config struct {
	Format     string         `json:"format"`
	Workers    int            `json:"workers"`
	Timeout    Duration       `json:"timeout"`
	TopN       int            `json:"top"`
	SortBy     string         `json:"sort"`
	ShowScore  bool           `json:"score"`
	Thresholds use.Thresholds `json:"thresholds"`

	BaselineDir string `json:"baseline_dir"`
	PprofAddr   string `json:"pprof_addr"`

	Log   LogConfig   `json:"log"`
	Serve ServeConfig `json:"serve"`
	NATS  NATSConfig  `json:"nats"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"` // text or json
	// File enables rotating file output when non-empty.
	File       string `json:"file"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

// ServeConfig controls the Prometheus endpoint.
type ServeConfig struct {
	Addr string `json:"addr"`
	Path string `json:"path"`
}

// NATSConfig controls the one-shot snapshot publication.
type NATSConfig struct {
	URL     string   `json:"url"`
	Subject string   `json:"subject"`
	Timeout Duration `json:"timeout"`
}

// Duration is a time.Duration that reads and writes JSON as "30s".
type Duration struct {
	time.Duration
}

// MarshalJSON encodes the duration as a string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts "30s" style strings.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"30s\": %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Format:     string(output.FormatTable),
		Workers:    runtime.NumCPU(),
		Timeout:    Duration{30 * time.Second},
		TopN:       10,
		SortBy:     string(output.SortWorkingSet),
		Thresholds: use.DefaultThresholds(),
		Log: LogConfig{
			Level:      "warn",
			Format:     "text",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Serve: ServeConfig{
			Addr: ":9182",
			Path: "/metrics",
		},
		NATS: NATSConfig{
			URL:     "nats://127.0.0.1:4222",
			Subject: "winmem.snapshot",
			Timeout: Duration{5 * time.Second},
		},
	}
}

// Load returns the defaults overlaid with the JSON file at path (skipped
// when path is empty) and then the environment. The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, &ConfigError{Field: "config", Reason: err.Error()}
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, &ConfigError{Field: "config", Reason: fmt.Sprintf("parse %s: %v", path, err)}
		}
	}
	ApplyEnv(&cfg)
	return cfg, cfg.Validate()
}

// Validate checks every setting and returns the first problem found.
func (c Config) Validate() error {
	if _, err := output.ParseFormat(c.Format); err != nil {
		return &ConfigError{Field: "format", Reason: err.Error()}
	}
	if _, err := output.ParseSortKey(c.SortBy); err != nil {
		return &ConfigError{Field: "sort", Reason: err.Error()}
	}
	if c.Workers < 1 {
		return &ConfigError{Field: "workers", Reason: "must be at least 1"}
	}
	if c.Timeout.Duration <= 0 {
		return &ConfigError{Field: "timeout", Reason: "must be positive"}
	}
	if c.TopN < 0 {
		return &ConfigError{Field: "top", Reason: "must not be negative"}
	}
	t := c.Thresholds
	if t.WarnUtil < 0 || t.CritUtil > 100 || t.WarnUtil > t.CritUtil {
		return &ConfigError{Field: "thresholds", Reason: "need 0 <= warn_util <= crit_util <= 100"}
	}
	if t.WarnSaturation < 0 || t.WarnProcessShare < 0 {
		return &ConfigError{Field: "thresholds", Reason: "saturation and process share must not be negative"}
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return &ConfigError{Field: "log.format", Reason: fmt.Sprintf("unknown log format %q", c.Log.Format)}
	}
	if c.Serve.Path == "" || c.Serve.Path[0] != '/' {
		return &ConfigError{Field: "serve.path", Reason: "must start with /"}
	}
	return nil
}

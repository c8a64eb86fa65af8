package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "winmem.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Format != "table" || cfg.TopN != 10 || cfg.Timeout.Duration != 30*time.Second {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeConfig(t, `{
		"format": "json",
		"top": 5,
		"timeout": "2s",
		"thresholds": {"warn_util": 60, "crit_util": 80},
		"nats": {"subject": "ops.memory"}
	}`)
	t.Setenv("WINMEM_TOP", "7")
	t.Setenv("WINMEM_CRIT_UTIL", "85")
	t.Setenv("WINMEM_WORKERS", "not-a-number")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		name      string
		got, want any
	}{
		{"format from file", cfg.Format, "json"},
		{"top from env", cfg.TopN, 7},
		{"timeout from file", cfg.Timeout.Duration, 2 * time.Second},
		{"warn from file", cfg.Thresholds.WarnUtil, 60.0},
		{"crit from env", cfg.Thresholds.CritUtil, 85.0},
		{"nats subject from file", cfg.NATS.Subject, "ops.memory"},
		{"nats url default kept", cfg.NATS.URL, "nats://127.0.0.1:4222"},
		{"bad env ignored", cfg.Workers, Default().Workers},
	}
	for _, tc := range tests {
		if tc.got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, tc.got, tc.want)
		}
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"malformed json", `{"format":`, "config"},
		{"bad duration", `{"timeout": 30}`, "config"},
		{"unknown format", `{"format": "xml"}`, "format"},
		{"unknown sort", `{"sort": "cpu"}`, "sort"},
		{"warn above crit", `{"thresholds": {"warn_util": 95, "crit_util": 90}}`, "thresholds"},
		{"zero workers", `{"workers": 0}`, "workers"},
		{"bad log format", `{"log": {"format": "xml"}}`, "log.format"},
		{"relative metrics path", `{"serve": {"path": "metrics"}}`, "serve.path"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			var cerr *ConfigError
			if !errors.As(err, &cerr) {
				t.Fatalf("Load() error = %v, want *ConfigError", err)
			}
			if cerr.Field != tc.field {
				t.Errorf("Field = %q, want %q", cerr.Field, tc.field)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	var cerr *ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("error = %v, want *ConfigError", err)
	}
}

func TestGetEnvBool(t *testing.T) {
	for val, want := range map[string]bool{"YES": true, "1": true, "no": false, "0": false, "maybe": true} {
		t.Setenv("WINMEM_FLAG", val)
		if got := getEnvBool("FLAG", true); got != want {
			t.Errorf("getEnvBool(%q) = %v, want %v", val, got, want)
		}
	}
}

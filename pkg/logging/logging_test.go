package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/danpilch/winmem/pkg/config"
)

func TestNew_RotatingJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "winmem.log")
	logger, closer, err := New(config.LogConfig{Level: "info", Format: "json", File: path, MaxSizeMB: 1})
	if err != nil {
		t.Fatal(err)
	}

	logger.WithField("operation", "GetProcessMemory").Info("collected")
	logger.Debug("dropped below level")
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d log lines, want 1: %q", len(lines), data)
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["operation"] != "GetProcessMemory" || entry["msg"] != "collected" {
		t.Errorf("entry = %v", entry)
	}
}

func TestNew_Stderr(t *testing.T) {
	logger, closer, err := New(config.LogConfig{Level: "debug", Format: "text"})
	if err != nil {
		t.Fatal(err)
	}
	defer closer.Close()
	if logger.GetLevel() != logrus.DebugLevel {
		t.Errorf("level = %s", logger.GetLevel())
	}
	if _, ok := logger.Formatter.(*logrus.TextFormatter); !ok {
		t.Errorf("formatter = %T", logger.Formatter)
	}
}

func TestNew_BadLevel(t *testing.T) {
	if _, _, err := New(config.LogConfig{Level: "loud"}); err == nil {
		t.Error("New() accepted an unknown level")
	}
}

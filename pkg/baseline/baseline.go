// Package baseline saves check results and detects drift against them.
package baseline

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/danpilch/winmem/pkg/use"
	"github.com/danpilch/winmem/pkg/winmem"
)

// Baseline is a saved set of checks plus the global memory status they were
// derived from.
type Baseline struct {
	Name      string                     `json:"name"`
	Timestamp time.Time                  `json:"timestamp"`
	Hostname  string                     `json:"hostname"`
	Checks    []use.Check                `json:"checks"`
	Global    *winmem.GlobalMemoryStatus `json:"global,omitempty"`
	Metadata  map[string]string          `json:"metadata,omitempty"`
}

// ErrInvalidName is returned for names that cannot be used as a file name.
var ErrInvalidName = errors.New("baseline name must be non-empty and contain no path separators")

// DefaultDir returns the default baseline storage directory.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".winmem", "baselines")
	}
	return filepath.Join(home, ".winmem", "baselines")
}

func pathFor(name, dir string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\:`) {
		return "", ErrInvalidName
	}
	if dir == "" {
		dir = DefaultDir()
	}
	return filepath.Join(dir, name+".json"), nil
}

// Save writes a baseline to a JSON file in dir.
func (b *Baseline) Save(dir string) error {
	path, err := pathFor(b.Name, dir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create baseline directory: %w", err)
	}

	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot marshal baseline: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write baseline: %w", err)
	}
	return nil
}

// Load reads a baseline from a JSON file in dir.
func Load(name, dir string) (*Baseline, error) {
	path, err := pathFor(name, dir)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read baseline %q: %w", name, err)
	}

	var b Baseline
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("cannot parse baseline %q: %w", name, err)
	}
	return &b, nil
}

// List returns all saved baseline names in sorted order.
func List(dir string) ([]string, error) {
	if dir == "" {
		dir = DefaultDir()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".json" {
			names = append(names, strings.TrimSuffix(e.Name(), ".json"))
		}
	}
	sort.Strings(names)
	return names, nil
}

// NewBaseline creates a new baseline from current checks.
func NewBaseline(name string, checks []use.Check, global *winmem.GlobalMemoryStatus) *Baseline {
	hostname, _ := os.Hostname()
	return &Baseline{
		Name:      name,
		Timestamp: time.Now(),
		Hostname:  hostname,
		Checks:    checks,
		Global:    global,
	}
}

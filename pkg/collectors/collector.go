// Package collectors turns the winmem reports into USE checks.
package collectors

import (
	"context"

	"github.com/danpilch/winmem/pkg/collectors/commit"
	"github.com/danpilch/winmem/pkg/collectors/memory"
	"github.com/danpilch/winmem/pkg/collectors/processes"
	"github.com/danpilch/winmem/pkg/deferred"
	"github.com/danpilch/winmem/pkg/use"
	"github.com/danpilch/winmem/pkg/winmem"
)

// Collector is the interface that all resource collectors must implement.
type Collector interface {
	// Name returns the name of the resource being collected (e.g., "Memory", "Commit").
	Name() string

	// Collect gathers USE metrics and returns a slice of checks.
	Collect(ctx context.Context, thresholds use.Thresholds) ([]use.Check, error)
}

// Source is the set of collections the built-in collectors draw on.
// *winmem.Client satisfies it.
type Source interface {
	GetPerformanceInfo(ctx context.Context) *deferred.Future[winmem.PerformanceInfo]
	GlobalMemoryStatus(ctx context.Context) *deferred.Future[winmem.GlobalMemoryStatus]
	GetProcessMemory(ctx context.Context) *deferred.Future[winmem.ProcessMemoryReport]
}

// Registry holds all registered collectors.
type Registry struct {
	collectors []Collector
}

// NewRegistry creates a new collector registry.
func NewRegistry() *Registry {
	return &Registry{
		collectors: make([]Collector, 0),
	}
}

// NewDefaultRegistry registers the memory, commit and process collectors
// against src.
func NewDefaultRegistry(src Source) *Registry {
	r := NewRegistry()
	r.Register(memory.New(src))
	r.Register(commit.New(src))
	r.Register(processes.New(src))
	return r
}

// Register adds a collector to the registry.
func (r *Registry) Register(c Collector) {
	r.collectors = append(r.collectors, c)
}

// Collectors returns all registered collectors as use.Collector values.
func (r *Registry) Collectors() []use.Collector {
	out := make([]use.Collector, len(r.collectors))
	for i, c := range r.collectors {
		out[i] = c
	}
	return out
}

// GetByName returns a collector by name, or nil if not found.
func (r *Registry) GetByName(name string) Collector {
	for _, c := range r.collectors {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

// Names returns the registered collector names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.collectors))
	for i, c := range r.collectors {
		names[i] = c.Name()
	}
	return names
}

// Package memory derives physical memory and page-file checks from the
// global memory status.
package memory

import (
	"context"
	"fmt"

	"github.com/danpilch/winmem/pkg/deferred"
	"github.com/danpilch/winmem/pkg/output"
	"github.com/danpilch/winmem/pkg/use"
	"github.com/danpilch/winmem/pkg/winmem"
)

const source = "GlobalMemoryStatusEx"

// StatusSource provides the global memory status.
type StatusSource interface {
	GlobalMemoryStatus(ctx context.Context) *deferred.Future[winmem.GlobalMemoryStatus]
}

// Collector gathers memory-related USE metrics.
type Collector struct {
	src StatusSource
}

// New creates a new memory collector.
func New(src StatusSource) *Collector {
	return &Collector{src: src}
}

// Name returns the collector name.
func (c *Collector) Name() string {
	return "Memory"
}

// Collect reports memory load as utilization and page-file use as saturation.
func (c *Collector) Collect(ctx context.Context, thresholds use.Thresholds) ([]use.Check, error) {
	gms, err := c.src.GlobalMemoryStatus(ctx).Await(ctx)
	if err != nil {
		return nil, err
	}

	load := float64(gms.MemoryLoad)
	checks := []use.Check{{
		Resource:    "Memory",
		Type:        use.Utilization,
		Value:       fmt.Sprintf("%d%% (%s free)", gms.MemoryLoad, output.FormatBytes(gms.AvailPhys)),
		RawValue:    load,
		Status:      thresholds.EvaluateUtilization(load),
		Description: "Physical memory load",
		Source:      source,
	}}

	var used uint64
	if gms.TotalPageFile > gms.AvailPageFile {
		used = gms.TotalPageFile - gms.AvailPageFile
	}
	pagefile := use.Percent(used, gms.TotalPageFile)
	checks = append(checks, use.Check{
		Resource:    "Memory",
		Type:        use.Saturation,
		Value:       fmt.Sprintf("%.1f%% of %s", pagefile, output.FormatBytes(gms.TotalPageFile)),
		RawValue:    pagefile,
		Status:      use.EvaluateSaturation(pagefile, thresholds.WarnSaturation),
		Description: "Page file (commit backing) in use",
		Source:      source,
	})

	return checks, nil
}

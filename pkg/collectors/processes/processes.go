// Package processes derives per-process memory checks from the process
// memory report.
package processes

import (
	"context"
	"fmt"

	"github.com/danpilch/winmem/pkg/deferred"
	"github.com/danpilch/winmem/pkg/use"
	"github.com/danpilch/winmem/pkg/winmem"
)

const source = "GetProcessMemoryInfo"

// ReportSource provides the process report and the physical memory size it
// is measured against.
type ReportSource interface {
	GlobalMemoryStatus(ctx context.Context) *deferred.Future[winmem.GlobalMemoryStatus]
	GetProcessMemory(ctx context.Context) *deferred.Future[winmem.ProcessMemoryReport]
}

// Collector gathers process memory USE metrics.
type Collector struct {
	src ReportSource
}

// New creates a new process collector.
func New(src ReportSource) *Collector {
	return &Collector{src: src}
}

// Name returns the collector name.
func (c *Collector) Name() string {
	return "Processes"
}

// Collect reports the largest working set as a share of physical memory and
// the number of processes that could not be queried.
func (c *Collector) Collect(ctx context.Context, thresholds use.Thresholds) ([]use.Check, error) {
	gmsF := c.src.GlobalMemoryStatus(ctx)
	reportF := c.src.GetProcessMemory(ctx)

	gms, err := gmsF.Await(ctx)
	if err != nil {
		return nil, err
	}
	report, err := reportF.Await(ctx)
	if err != nil {
		return nil, err
	}

	top, topName := uint64(0), "-"
	for _, name := range report.Names() {
		if ws := report[name].WorkingSetSize; ws > top {
			top, topName = ws, name
		}
	}
	share := use.Percent(top, gms.TotalPhys)

	checks := []use.Check{{
		Resource:    "Processes",
		Type:        use.Utilization,
		Value:       fmt.Sprintf("%s %.1f%%", topName, share),
		RawValue:    share,
		Status:      use.EvaluateSaturation(share, thresholds.WarnProcessShare),
		Description: "Largest working set as a share of physical memory",
		Source:      source,
	}}

	failed := report.FailedCount()
	status := use.StatusOK
	if len(report) > 0 && failed == len(report) {
		status = use.StatusError
	}
	checks = append(checks, use.Check{
		Resource:    "Processes",
		Type:        use.Errors,
		Value:       fmt.Sprintf("%d of %d inaccessible", failed, len(report)),
		RawValue:    float64(failed),
		Status:      status,
		Description: "Processes whose counters could not be read",
		Source:      source,
	})

	return checks, nil
}

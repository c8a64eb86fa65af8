// Package commit derives commit-charge checks from the performance counters.
package commit

import (
	"context"
	"fmt"

	"github.com/danpilch/winmem/pkg/deferred"
	"github.com/danpilch/winmem/pkg/output"
	"github.com/danpilch/winmem/pkg/use"
	"github.com/danpilch/winmem/pkg/winmem"
)

const source = "GetPerformanceInfo"

// PerformanceSource provides the system performance counters.
type PerformanceSource interface {
	GetPerformanceInfo(ctx context.Context) *deferred.Future[winmem.PerformanceInfo]
}

// Collector gathers commit charge USE metrics.
type Collector struct {
	src PerformanceSource
}

// New creates a new commit collector.
func New(src PerformanceSource) *Collector {
	return &Collector{src: src}
}

// Name returns the collector name.
func (c *Collector) Name() string {
	return "Commit"
}

// Collect reports commit charge against the commit limit, and the peak
// commit as saturation.
func (c *Collector) Collect(ctx context.Context, thresholds use.Thresholds) ([]use.Check, error) {
	pi, err := c.src.GetPerformanceInfo(ctx).Await(ctx)
	if err != nil {
		return nil, err
	}
	if pi.CommitLimit == 0 {
		return nil, fmt.Errorf("commit limit reported as zero")
	}

	util := use.Percent(pi.CommitTotal, pi.CommitLimit)
	peak := use.Percent(pi.CommitPeak, pi.CommitLimit)

	return []use.Check{
		{
			Resource: "Commit",
			Type:     use.Utilization,
			Value: fmt.Sprintf("%.1f%% (%s of %s)", util,
				output.FormatBytes(pi.Bytes(pi.CommitTotal)), output.FormatBytes(pi.Bytes(pi.CommitLimit))),
			RawValue:    util,
			Status:      thresholds.EvaluateUtilization(util),
			Description: "Committed pages against the commit limit",
			Source:      source,
		},
		{
			Resource:    "Commit",
			Type:        use.Saturation,
			Value:       fmt.Sprintf("%.1f%% peak", peak),
			RawValue:    peak,
			Status:      thresholds.EvaluateUtilization(peak),
			Description: "Peak commit since boot against the commit limit",
			Source:      source,
		},
	}, nil
}

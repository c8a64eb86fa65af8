package crosscheck

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/danpilch/winmem/pkg/deferred"
	"github.com/danpilch/winmem/pkg/use"
	"github.com/danpilch/winmem/pkg/winmem"
)

// Collections is the winmem surface cross-checks read from.
// *winmem.Client satisfies it.
type Collections interface {
	GetPerformanceInfo(ctx context.Context) *deferred.Future[winmem.PerformanceInfo]
	GlobalMemoryStatus(ctx context.Context) *deferred.Future[winmem.GlobalMemoryStatus]
	GetProcessMemory(ctx context.Context) *deferred.Future[winmem.ProcessMemoryReport]
	ListProcesses(ctx context.Context) *deferred.Future[[]winmem.ProcessIdentity]
}

// Independent reads the same quantities through a second implementation.
type Independent interface {
	VirtualMemory(ctx context.Context) (*mem.VirtualMemoryStat, error)
	Pids(ctx context.Context) ([]int32, error)
}

// Gopsutil is the Independent source backed by gopsutil.
type Gopsutil struct{}

// VirtualMemory returns gopsutil's view of physical memory.
func (Gopsutil) VirtualMemory(ctx context.Context) (*mem.VirtualMemoryStat, error) {
	return mem.VirtualMemoryWithContext(ctx)
}

// Pids returns gopsutil's process id list.
func (Gopsutil) Pids(ctx context.Context) ([]int32, error) {
	return process.PidsWithContext(ctx)
}

// Snapshot holds one reading of every source. A nil pointer or a nil
// slice means that source failed.
type Snapshot struct {
	Global  *winmem.GlobalMemoryStatus
	Perf    *winmem.PerformanceInfo
	Report  winmem.ProcessMemoryReport
	Listed  []winmem.ProcessIdentity
	Virtual *mem.VirtualMemoryStat
	Pids    []int32
}

// Gather reads every source concurrently. Individual source failures are
// logged and leave the corresponding field empty; an error is returned only
// when every winmem source failed.
func Gather(ctx context.Context, c Collections, alt Independent, logger *logrus.Logger) (Snapshot, error) {
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.WarnLevel)
	}

	var snap Snapshot
	warn := func(source string, err error) {
		logger.WithFields(logrus.Fields{"source": source, "error": err}).Warn("Cross-check source failed")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		gms, err := c.GlobalMemoryStatus(gctx).Await(gctx)
		if err != nil {
			warn("GlobalMemoryStatusEx", err)
			return nil
		}
		snap.Global = &gms
		return nil
	})
	g.Go(func() error {
		pi, err := c.GetPerformanceInfo(gctx).Await(gctx)
		if err != nil {
			warn("GetPerformanceInfo", err)
			return nil
		}
		snap.Perf = &pi
		return nil
	})
	g.Go(func() error {
		report, err := c.GetProcessMemory(gctx).Await(gctx)
		if err != nil {
			warn("GetProcessMemory", err)
			return nil
		}
		snap.Report = report
		return nil
	})
	g.Go(func() error {
		listed, err := c.ListProcesses(gctx).Await(gctx)
		if err != nil {
			warn("Toolhelp32", err)
			return nil
		}
		snap.Listed = listed
		return nil
	})
	if alt != nil {
		g.Go(func() error {
			vm, err := alt.VirtualMemory(gctx)
			if err != nil {
				warn("gopsutil/mem", err)
				return nil
			}
			snap.Virtual = vm
			return nil
		})
		g.Go(func() error {
			pids, err := alt.Pids(gctx)
			if err != nil {
				warn("gopsutil/process", err)
				return nil
			}
			snap.Pids = pids
			return nil
		})
	}
	_ = g.Wait()

	if snap.Global == nil && snap.Perf == nil && snap.Report == nil && snap.Listed == nil {
		return snap, fmt.Errorf("cross-check: no winmem source could be read")
	}
	return snap, nil
}

// MemorySources returns physical memory utilization as seen by each source.
func MemorySources(s Snapshot) []Source {
	var sources []Source
	if s.Global != nil {
		sources = append(sources, Source{
			Name:  "GlobalMemoryStatusEx",
			Value: float64(s.Global.MemoryLoad),
			Unit:  "%",
		})
	}
	if s.Perf != nil && s.Perf.PhysicalTotal > 0 {
		sources = append(sources, Source{
			Name:    "GetPerformanceInfo",
			Value:   use.Percent(s.Perf.PhysicalTotal-min(s.Perf.PhysicalAvailable, s.Perf.PhysicalTotal), s.Perf.PhysicalTotal),
			Unit:    "%",
			RawData: "1 - PhysicalAvailable/PhysicalTotal",
		})
	}
	if s.Virtual != nil {
		sources = append(sources, Source{
			Name:  "gopsutil",
			Value: s.Virtual.UsedPercent,
			Unit:  "%",
		})
	}
	return sources
}

// PhysicalTotalSources returns installed physical memory in MiB per source.
func PhysicalTotalSources(s Snapshot) []Source {
	const mib = 1 << 20
	var sources []Source
	if s.Global != nil {
		sources = append(sources, Source{Name: "GlobalMemoryStatusEx", Value: float64(s.Global.TotalPhys) / mib, Unit: "MiB"})
	}
	if s.Perf != nil {
		sources = append(sources, Source{Name: "GetPerformanceInfo", Value: float64(s.Perf.Bytes(s.Perf.PhysicalTotal)) / mib, Unit: "MiB"})
	}
	if s.Virtual != nil {
		sources = append(sources, Source{Name: "gopsutil", Value: float64(s.Virtual.Total) / mib, Unit: "MiB"})
	}
	return sources
}

// ProcessCountSources returns the number of running processes per source.
func ProcessCountSources(s Snapshot) []Source {
	var sources []Source
	if s.Perf != nil {
		sources = append(sources, Source{Name: "GetPerformanceInfo", Value: float64(s.Perf.ProcessCount)})
	}
	if s.Listed != nil {
		sources = append(sources, Source{Name: "Toolhelp32", Value: float64(len(s.Listed))})
	}
	if s.Pids != nil {
		sources = append(sources, Source{Name: "gopsutil", Value: float64(len(s.Pids))})
	}
	return sources
}

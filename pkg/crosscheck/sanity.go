package crosscheck

import (
	"fmt"

	"github.com/danpilch/winmem/pkg/use"
)

// SanityResult holds the outcome of a physical constraint check.
type SanityResult struct {
	Check   string `json:"check"`
	Passed  bool   `json:"passed"`
	Details string `json:"details"`
}

func bounded(name string, part, whole uint64) SanityResult {
	return SanityResult{
		Check:   name,
		Passed:  part <= whole,
		Details: fmt.Sprintf("%d <= %d", part, whole),
	}
}

// RunSanityChecks validates derived checks: utilizations lie in [0, 100]
// and no value is negative.
func RunSanityChecks(checks []use.Check) []SanityResult {
	var results []SanityResult

	for _, c := range checks {
		if c.Status == use.StatusUnknown {
			continue
		}
		name := fmt.Sprintf("%s %s", c.Resource, c.Type)
		switch {
		case c.RawValue < 0:
			results = append(results, SanityResult{name, false, fmt.Sprintf("negative value: %.2f", c.RawValue)})
		case c.Type == use.Utilization && c.RawValue > 100:
			results = append(results, SanityResult{name, false, fmt.Sprintf("utilization exceeds 100%%: %.2f", c.RawValue)})
		case c.Type == use.Utilization:
			results = append(results, SanityResult{name, true, fmt.Sprintf("%.2f%% within [0, 100]", c.RawValue)})
		}
	}

	return results
}

// SnapshotSanity validates the raw reports against the constraints the OS
// guarantees.
func SnapshotSanity(s Snapshot) []SanityResult {
	var results []SanityResult

	if g := s.Global; g != nil {
		results = append(results,
			SanityResult{
				Check:   "memory load within [0, 100]",
				Passed:  g.MemoryLoad <= 100,
				Details: fmt.Sprintf("%d%%", g.MemoryLoad),
			},
			bounded("available physical <= total physical", g.AvailPhys, g.TotalPhys),
			bounded("available page file <= total page file", g.AvailPageFile, g.TotalPageFile),
			bounded("available virtual <= total virtual", g.AvailVirtual, g.TotalVirtual),
		)
	}

	if p := s.Perf; p != nil {
		results = append(results,
			bounded("commit total <= commit limit", p.CommitTotal, p.CommitLimit),
			bounded("commit total <= commit peak", p.CommitTotal, p.CommitPeak),
			bounded("physical available <= physical total", p.PhysicalAvailable, p.PhysicalTotal),
			bounded("kernel paged + nonpaged <= kernel total", p.KernelPaged+p.KernelNonpaged, p.KernelTotal),
		)
	}

	if s.Report != nil {
		var badFailed, emptyNames, peakBelow int
		for name, e := range s.Report {
			if name == "" {
				emptyNames++
			}
			if e.Failed() && !e.MemoryCounters.IsZero() {
				badFailed++
			}
			if !e.Failed() && e.PeakWorkingSetSize < e.WorkingSetSize {
				peakBelow++
			}
		}
		results = append(results,
			SanityResult{
				Check:   "failed entries carry zero counters",
				Passed:  badFailed == 0,
				Details: fmt.Sprintf("%d of %d failed entries with counters", badFailed, s.Report.FailedCount()),
			},
			SanityResult{
				Check:   "process names non-empty",
				Passed:  emptyNames == 0,
				Details: fmt.Sprintf("%d empty names", emptyNames),
			},
			SanityResult{
				Check:   "peak working set >= working set",
				Passed:  peakBelow == 0,
				Details: fmt.Sprintf("%d entries above their peak", peakBelow),
			},
		)
	}

	return results
}

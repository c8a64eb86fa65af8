package output

import (
	"fmt"
	"strconv"

	"github.com/danpilch/winmem/pkg/use"
	"github.com/danpilch/winmem/pkg/winmem"
)

// RenderPerformanceInfo outputs the system performance counters.
func (f *Formatter) RenderPerformanceInfo(pi winmem.PerformanceInfo) error {
	if f.format == FormatJSON {
		return f.encodeJSON(pi)
	}

	rows := [][]string{
		{"Commit total", pages(pi, pi.CommitTotal)},
		{"Commit limit", pages(pi, pi.CommitLimit)},
		{"Commit peak", pages(pi, pi.CommitPeak)},
		{"Physical total", pages(pi, pi.PhysicalTotal)},
		{"Physical available", pages(pi, pi.PhysicalAvailable)},
		{"System cache", pages(pi, pi.SystemCache)},
		{"Kernel total", pages(pi, pi.KernelTotal)},
		{"Kernel paged", pages(pi, pi.KernelPaged)},
		{"Kernel nonpaged", pages(pi, pi.KernelNonpaged)},
		{"Page size", FormatBytes(pi.PageSize)},
		{"Handles", strconv.FormatUint(uint64(pi.HandleCount), 10)},
		{"Processes", strconv.FormatUint(uint64(pi.ProcessCount), 10)},
		{"Threads", strconv.FormatUint(uint64(pi.ThreadCount), 10)},
	}
	return f.renderKeyValues("Performance Information", rows)
}

// RenderGlobalMemoryStatus outputs the global memory status.
func (f *Formatter) RenderGlobalMemoryStatus(gms winmem.GlobalMemoryStatus) error {
	if f.format == FormatJSON {
		return f.encodeJSON(gms)
	}

	rows := [][]string{
		{"Memory load", fmt.Sprintf("%d%%", gms.MemoryLoad)},
		{"Total physical", FormatBytes(gms.TotalPhys)},
		{"Available physical", FormatBytes(gms.AvailPhys)},
		{"Total page file", FormatBytes(gms.TotalPageFile)},
		{"Available page file", FormatBytes(gms.AvailPageFile)},
		{"Total virtual", FormatBytes(gms.TotalVirtual)},
		{"Available virtual", FormatBytes(gms.AvailVirtual)},
		{"Available extended virtual", FormatBytes(gms.AvailExtendedVirtual)},
	}
	return f.renderKeyValues("Global Memory Status", rows)
}

// RenderProcessMemory outputs the entries of report selected by view. JSON
// output keeps the name-keyed report shape.
func (f *Formatter) RenderProcessMemory(report winmem.ProcessMemoryReport, view ProcessView) error {
	entries := view.Select(report)

	switch f.format {
	case FormatJSON:
		out := make(winmem.ProcessMemoryReport, len(entries))
		for _, e := range entries {
			out[e.Name] = e.ProcessMemoryEntry
		}
		return f.encodeJSON(out)

	case FormatTSV:
		fmt.Fprintln(f.writer, "NAME\tPID\tWORKING_SET\tPEAK_WORKING_SET\tPRIVATE\tPAGEFILE\tPAGE_FAULTS\tERROR")
		for _, e := range entries {
			fmt.Fprintf(f.writer, "%s\t%d\t%d\t%d\t%d\t%d\t%d\t%s\n",
				e.Name, e.ProcessID, e.WorkingSetSize, e.PeakWorkingSetSize,
				e.PrivateUsage, e.PagefileUsage, e.PageFaultCount, e.ErrorString())
		}
		return nil

	case FormatAI:
		fmt.Fprintf(f.writer, "# Process Memory (%d of %d processes, %d inaccessible)\n\n",
			len(entries), len(report), report.FailedCount())
		fmt.Fprintln(f.writer, "| Process | PID | Working set | Private | Page file | Error |")
		fmt.Fprintln(f.writer, "|---------|-----|-------------|---------|-----------|-------|")
		for _, e := range entries {
			if e.Failed() {
				fmt.Fprintf(f.writer, "| %s | %d | - | - | - | %s |\n", e.Name, e.ProcessID, e.ErrorString())
				continue
			}
			fmt.Fprintf(f.writer, "| %s | %d | %s | %s | %s | |\n", e.Name, e.ProcessID,
				FormatBytes(e.WorkingSetSize), FormatBytes(e.PrivateUsage), FormatBytes(e.PagefileUsage))
		}
		return nil
	}

	f.title("Process Memory")
	rows := make([][]string, len(entries))
	for i, e := range entries {
		if e.Failed() {
			rows[i] = []string{e.Name, strconv.FormatUint(uint64(e.ProcessID), 10), "-", "-", "-", "-",
				statusStyles[use.StatusUnknown].Render(e.ErrorString())}
			continue
		}
		rows[i] = []string{
			e.Name,
			strconv.FormatUint(uint64(e.ProcessID), 10),
			FormatBytes(e.WorkingSetSize),
			FormatBytes(e.PrivateUsage),
			FormatBytes(e.PagefileUsage),
			strconv.FormatUint(uint64(e.PageFaultCount), 10),
			"",
		}
	}
	fmt.Fprintln(f.writer, newTable([]string{"NAME", "PID", "WORKING SET", "PRIVATE", "PAGE FILE", "FAULTS", "ERROR"}, rows))
	fmt.Fprintln(f.writer, dimStyle.Render(fmt.Sprintf("%d of %d processes shown, %d inaccessible",
		len(entries), len(report), report.FailedCount())))
	return nil
}

func (f *Formatter) renderKeyValues(heading string, rows [][]string) error {
	switch f.format {
	case FormatTSV:
		fmt.Fprintln(f.writer, "FIELD\tVALUE")
		for _, r := range rows {
			fmt.Fprintf(f.writer, "%s\t%s\n", r[0], r[1])
		}
	case FormatAI:
		fmt.Fprintf(f.writer, "# %s\n\n| Field | Value |\n|-------|-------|\n", heading)
		for _, r := range rows {
			fmt.Fprintf(f.writer, "| %s | %s |\n", r[0], r[1])
		}
	default:
		f.title(heading)
		fmt.Fprintln(f.writer, newTable([]string{"FIELD", "VALUE"}, rows))
	}
	return nil
}

func pages(pi winmem.PerformanceInfo, n uint64) string {
	return fmt.Sprintf("%s (%d pages)", FormatBytes(pi.Bytes(n)), n)
}

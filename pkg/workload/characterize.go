// Package workload characterizes what is holding memory: the largest
// processes by working set, private bytes and page-file usage.
package workload

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/danpilch/winmem/pkg/collectors/processes"
	"github.com/danpilch/winmem/pkg/output"
	"github.com/danpilch/winmem/pkg/winmem"
)

// ProcessInfo holds the memory figures of one process.
type ProcessInfo struct {
	Name       string  `json:"name"`
	PID        uint32  `json:"pid"`
	WorkingSet uint64  `json:"working_set"`
	Private    uint64  `json:"private"`
	Pagefile   uint64  `json:"pagefile"`
	PhysPct    float64 `json:"phys_pct"`
}

// Report holds the complete workload characterization.
type Report struct {
	TopWorkingSet   []ProcessInfo `json:"top_working_set"`
	TopPrivate      []ProcessInfo `json:"top_private"`
	TopPagefile     []ProcessInfo `json:"top_pagefile"`
	Accessible      int           `json:"accessible"`
	Inaccessible    int           `json:"inaccessible"`
	TotalWorkingSet uint64        `json:"total_working_set"`
	TotalPrivate    uint64        `json:"total_private"`
	PhysicalTotal   uint64        `json:"physical_total"`
	Summary         string        `json:"summary"`
}

// Collect reads the process report and physical memory size from src and
// characterizes them.
func Collect(ctx context.Context, src processes.ReportSource, topN int) (*Report, error) {
	gmsF := src.GlobalMemoryStatus(ctx)
	reportF := src.GetProcessMemory(ctx)

	gms, err := gmsF.Await(ctx)
	if err != nil {
		return nil, err
	}
	report, err := reportF.Await(ctx)
	if err != nil {
		return nil, err
	}
	return Characterize(report, gms.TotalPhys, topN), nil
}

// Characterize ranks the accessible processes of report, topN per list
// (all when topN <= 0). Inaccessible processes are counted but never ranked.
func Characterize(report winmem.ProcessMemoryReport, physicalTotal uint64, topN int) *Report {
	r := &Report{PhysicalTotal: physicalTotal}

	for _, e := range report {
		if e.Failed() {
			r.Inaccessible++
			continue
		}
		r.Accessible++
		r.TotalWorkingSet += e.WorkingSetSize
		r.TotalPrivate += e.PrivateUsage
	}

	top := func(key output.SortKey) []ProcessInfo {
		var infos []ProcessInfo
		for _, e := range output.SortEntries(report, key) {
			if e.Failed() || (topN > 0 && len(infos) == topN) {
				break
			}
			infos = append(infos, ProcessInfo{
				Name:       e.Name,
				PID:        e.ProcessID,
				WorkingSet: e.WorkingSetSize,
				Private:    e.PrivateUsage,
				Pagefile:   e.PagefileUsage,
				PhysPct:    percentOf(e.WorkingSetSize, physicalTotal),
			})
		}
		return infos
	}
	r.TopWorkingSet = top(output.SortWorkingSet)
	r.TopPrivate = top(output.SortPrivate)
	r.TopPagefile = top(output.SortPagefile)
	r.Summary = r.summarize()
	return r
}

func (r *Report) summarize() string {
	if r.Accessible == 0 {
		return fmt.Sprintf("No readable processes (%d inaccessible).", r.Inaccessible)
	}
	parts := []string{fmt.Sprintf("%d processes read, %d inaccessible.", r.Accessible, r.Inaccessible)}
	if len(r.TopWorkingSet) > 0 {
		lead := r.TopWorkingSet[0]
		parts = append(parts, fmt.Sprintf("%s has the largest working set (%s, %.1f%% of RAM).",
			lead.Name, output.FormatBytes(lead.WorkingSet), lead.PhysPct))
	}
	if r.TotalWorkingSet > r.PhysicalTotal && r.PhysicalTotal > 0 {
		parts = append(parts, "Working sets exceed RAM; shared pages are counted once per process.")
	}
	return strings.Join(parts, " ")
}

func percentOf(part, whole uint64) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

var (
	wlTitle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	wlHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62")).Padding(0, 1)
	wlDim    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	wlWarn   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	wlOK     = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
)

// Render outputs the workload report with lipgloss styling.
func (r *Report) Render(w io.Writer) {
	fmt.Fprintln(w, wlTitle.Render("Workload Characterization Report"))
	fmt.Fprintln(w, wlDim.Render(strings.Repeat("═", 60)))
	fmt.Fprintln(w)

	accessStyle := wlOK
	if r.Inaccessible > 0 {
		accessStyle = wlWarn
	}
	fmt.Fprintf(w, "%s  %d readable, %s\n", wlTitle.Render("Processes:"),
		r.Accessible, accessStyle.Render(fmt.Sprintf("%d inaccessible", r.Inaccessible)))
	fmt.Fprintf(w, "%s  working set %s, private %s, RAM %s\n\n", wlTitle.Render("Totals:"),
		output.FormatBytes(r.TotalWorkingSet), output.FormatBytes(r.TotalPrivate), output.FormatBytes(r.PhysicalTotal))

	section := func(heading, column string, infos []ProcessInfo, value func(ProcessInfo) uint64) {
		if len(infos) == 0 {
			return
		}
		fmt.Fprintln(w, wlTitle.Render(heading))
		fmt.Fprintf(w, "  %s %s %s %s\n",
			wlHeader.Render("PID     "),
			wlHeader.Render(fmt.Sprintf("%-11s", column)),
			wlHeader.Render("RAM%   "),
			wlHeader.Render("PROCESS"))
		fmt.Fprintln(w, "  "+wlDim.Render(strings.Repeat("─", 60)))
		for _, p := range infos {
			fmt.Fprintf(w, "  %-8d %-12s %-8.1f %s\n", p.PID, output.FormatBytes(value(p)), p.PhysPct, p.Name)
		}
		fmt.Fprintln(w)
	}
	section("Top Working Sets", "WORKING SET", r.TopWorkingSet, func(p ProcessInfo) uint64 { return p.WorkingSet })
	section("Top Private Bytes", "PRIVATE", r.TopPrivate, func(p ProcessInfo) uint64 { return p.Private })
	section("Top Page File Usage", "PAGE FILE", r.TopPagefile, func(p ProcessInfo) uint64 { return p.Pagefile })

	if r.Summary != "" {
		fmt.Fprintf(w, "%s %s\n", wlTitle.Render("Summary:"), r.Summary)
	}
}

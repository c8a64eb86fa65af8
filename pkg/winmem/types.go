// Package winmem collects point-in-time memory telemetry from Windows: system
// performance counters, global memory status and per-process memory counters.
package winmem

import "sort"

// ProcessIdentity names a process found during enumeration.
type ProcessIdentity struct {
	PID  uint32 `json:"pid"`
	Name string `json:"name"`
}

// MemoryCounters mirrors PROCESS_MEMORY_COUNTERS_EX. Sizes are in bytes.
// The zero value means "no data".
type MemoryCounters struct {
	PageFaultCount             uint32 `json:"pageFaultCount"`
	PeakWorkingSetSize         uint64 `json:"peakWorkingSetSize"`
	WorkingSetSize             uint64 `json:"workingSetSize"`
	QuotaPeakPagedPoolUsage    uint64 `json:"quotaPeakPagedPoolUsage"`
	QuotaPagedPoolUsage        uint64 `json:"quotaPagedPoolUsage"`
	QuotaPeakNonPagedPoolUsage uint64 `json:"quotaPeakNonPagedPoolUsage"`
	QuotaNonPagedPoolUsage     uint64 `json:"quotaNonPagedPoolUsage"`
	PagefileUsage              uint64 `json:"pagefileUsage"`
	PeakPagefileUsage          uint64 `json:"peakPagefileUsage"`
	PrivateUsage               uint64 `json:"privateUsage"`
}

// IsZero reports whether every counter is zero.
func (c MemoryCounters) IsZero() bool {
	return c == MemoryCounters{}
}

// ProcessMemoryEntry is the outcome of querying one process. Error is non-nil
// exactly when the query failed, in which case the counters are all zero.
type ProcessMemoryEntry struct {
	ProcessID uint32  `json:"processId"`
	Error     *string `json:"error"`
	MemoryCounters
}

// NewProcessMemoryEntry returns a successful entry.
func NewProcessMemoryEntry(pid uint32, counters MemoryCounters) ProcessMemoryEntry {
	return ProcessMemoryEntry{ProcessID: pid, MemoryCounters: counters}
}

// NewFailedProcessMemoryEntry returns an entry carrying err's description and
// zeroed counters.
func NewFailedProcessMemoryEntry(pid uint32, err error) ProcessMemoryEntry {
	desc := "unknown error"
	if err != nil && err.Error() != "" {
		desc = err.Error()
	}
	return ProcessMemoryEntry{ProcessID: pid, Error: &desc}
}

// Failed reports whether the process could not be queried.
func (e ProcessMemoryEntry) Failed() bool {
	return e.Error != nil
}

// ErrorString returns the failure description, or "" for a successful entry.
func (e ProcessMemoryEntry) ErrorString() string {
	if e.Error == nil {
		return ""
	}
	return *e.Error
}

// ProcessMemoryReport maps a process display name to its entry. Display names
// are not unique; when two processes share one, the later-listed process wins.
type ProcessMemoryReport map[string]ProcessMemoryEntry

// Names returns the report keys in sorted order.
func (r ProcessMemoryReport) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FailedCount returns the number of entries whose query failed.
func (r ProcessMemoryReport) FailedCount() int {
	n := 0
	for _, e := range r {
		if e.Failed() {
			n++
		}
	}
	return n
}

// GlobalMemoryStatus mirrors MEMORYSTATUSEX. MemoryLoad is a percentage, the
// remaining fields are bytes.
type GlobalMemoryStatus struct {
	MemoryLoad           uint32 `json:"dwMemoryLoad"`
	TotalPhys            uint64 `json:"ullTotalPhys"`
	AvailPhys            uint64 `json:"ullAvailPhys"`
	TotalPageFile        uint64 `json:"ullTotalPageFile"`
	AvailPageFile        uint64 `json:"ullAvailPageFile"`
	TotalVirtual         uint64 `json:"ullTotalVirtual"`
	AvailVirtual         uint64 `json:"ullAvailVirtual"`
	AvailExtendedVirtual uint64 `json:"ullAvailExtendedVirtual"`
}

// PerformanceInfo mirrors PERFORMANCE_INFORMATION. Commit, physical, cache
// and kernel values are in pages of PageSize bytes.
type PerformanceInfo struct {
	CommitTotal       uint64 `json:"commitTotal"`
	CommitLimit       uint64 `json:"commitLimit"`
	CommitPeak        uint64 `json:"commitPeak"`
	PhysicalTotal     uint64 `json:"physicalTotal"`
	PhysicalAvailable uint64 `json:"physicalAvailable"`
	SystemCache       uint64 `json:"systemCache"`
	KernelTotal       uint64 `json:"kernelTotal"`
	KernelPaged       uint64 `json:"kernelPaged"`
	KernelNonpaged    uint64 `json:"kernelNonpaged"`
	PageSize          uint64 `json:"pageSize"`
	HandleCount       uint32 `json:"handleCount"`
	ProcessCount      uint32 `json:"processCount"`
	ThreadCount       uint32 `json:"threadCount"`
}

// Bytes converts a page count from this snapshot to bytes.
func (p PerformanceInfo) Bytes(pages uint64) uint64 {
	return pages * p.PageSize
}

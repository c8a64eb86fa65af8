package output

import (
	"fmt"
	"sort"
	"strings"

	"github.com/danpilch/winmem/pkg/winmem"
)

// SortKey selects the counter a process listing is ordered by.
type SortKey string

const (
	SortWorkingSet SortKey = "working-set"
	SortPrivate    SortKey = "private"
	SortPagefile   SortKey = "pagefile"
	SortFaults     SortKey = "faults"
	SortName       SortKey = "name"
	SortPID        SortKey = "pid"
)

// ParseSortKey validates a sort key name.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(s)); k {
	case SortWorkingSet, SortPrivate, SortPagefile, SortFaults, SortName, SortPID:
		return k, nil
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

// NamedEntry pairs a report entry with its display name.
type NamedEntry struct {
	Name string `json:"name"`
	winmem.ProcessMemoryEntry
}

// ProcessView controls which report entries are shown and in what order.
type ProcessView struct {
	SortBy SortKey
	// TopN limits the listing; zero or less shows every entry.
	TopN       int
	FailedOnly bool
}

// SortEntries orders the report by key. Counter keys sort descending with
// failed entries last; name and pid sort ascending. Ties break on name.
func SortEntries(report winmem.ProcessMemoryReport, key SortKey) []NamedEntry {
	entries := make([]NamedEntry, 0, len(report))
	for _, name := range report.Names() {
		entries = append(entries, NamedEntry{Name: name, ProcessMemoryEntry: report[name]})
	}

	counter := func(e NamedEntry) uint64 {
		switch key {
		case SortPrivate:
			return e.PrivateUsage
		case SortPagefile:
			return e.PagefileUsage
		case SortFaults:
			return uint64(e.PageFaultCount)
		default:
			return e.WorkingSetSize
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		switch key {
		case SortName:
			return a.Name < b.Name
		case SortPID:
			return a.ProcessID < b.ProcessID
		}
		if a.Failed() != b.Failed() {
			return !a.Failed()
		}
		return counter(a) > counter(b)
	})
	return entries
}

// Select applies the view to a report.
func (v ProcessView) Select(report winmem.ProcessMemoryReport) []NamedEntry {
	key := v.SortBy
	if key == "" {
		key = SortWorkingSet
	}
	entries := SortEntries(report, key)
	if v.FailedOnly {
		failed := entries[:0]
		for _, e := range entries {
			if e.Failed() {
				failed = append(failed, e)
			}
		}
		entries = failed
	}
	if v.TopN > 0 && len(entries) > v.TopN {
		entries = entries[:v.TopN]
	}
	return entries
}

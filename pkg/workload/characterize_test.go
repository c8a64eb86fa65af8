package workload

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/danpilch/winmem/pkg/winmem"
)

func report() winmem.ProcessMemoryReport {
	return winmem.ProcessMemoryReport{
		"System":      winmem.NewFailedProcessMemoryEntry(4, errors.New("Access is denied.")),
		"Registry":    winmem.NewFailedProcessMemoryEntry(120, errors.New("Access is denied.")),
		"sqlservr":    winmem.NewProcessMemoryEntry(3000, winmem.MemoryCounters{WorkingSetSize: 4 << 30, PrivateUsage: 5 << 30, PagefileUsage: 5 << 30}),
		"chrome.exe":  winmem.NewProcessMemoryEntry(5000, winmem.MemoryCounters{WorkingSetSize: 1 << 30, PrivateUsage: 512 << 20, PagefileUsage: 512 << 20}),
		"svchost.exe": winmem.NewProcessMemoryEntry(900, winmem.MemoryCounters{WorkingSetSize: 64 << 20, PrivateUsage: 2 << 30, PagefileUsage: 2 << 30}),
	}
}

func TestCharacterize(t *testing.T) {
	r := Characterize(report(), 16<<30, 2)

	if r.Accessible != 3 || r.Inaccessible != 2 {
		t.Errorf("accessible/inaccessible = %d/%d, want 3/2", r.Accessible, r.Inaccessible)
	}
	if len(r.TopWorkingSet) != 2 || r.TopWorkingSet[0].Name != "sqlservr" || r.TopWorkingSet[1].Name != "chrome.exe" {
		t.Errorf("TopWorkingSet = %+v", r.TopWorkingSet)
	}
	if r.TopPrivate[1].Name != "svchost.exe" {
		t.Errorf("TopPrivate[1] = %s, want svchost.exe", r.TopPrivate[1].Name)
	}
	if got := r.TopWorkingSet[0].PhysPct; got != 25 {
		t.Errorf("PhysPct = %v, want 25", got)
	}
	if r.TotalWorkingSet != 4<<30+1<<30+64<<20 {
		t.Errorf("TotalWorkingSet = %d", r.TotalWorkingSet)
	}
	if !strings.Contains(r.Summary, "sqlservr has the largest working set") {
		t.Errorf("Summary = %q", r.Summary)
	}
}

func TestCharacterize_NeverRanksFailedEntries(t *testing.T) {
	r := Characterize(report(), 16<<30, 10)
	for _, p := range append(append(r.TopWorkingSet, r.TopPrivate...), r.TopPagefile...) {
		if p.Name == "System" || p.Name == "Registry" {
			t.Errorf("inaccessible process %s was ranked", p.Name)
		}
	}
	if len(r.TopWorkingSet) != 3 {
		t.Errorf("len(TopWorkingSet) = %d, want 3", len(r.TopWorkingSet))
	}
}

func TestCharacterize_EmptyReport(t *testing.T) {
	r := Characterize(winmem.ProcessMemoryReport{}, 8<<30, 5)
	if r.TopWorkingSet != nil || r.Summary == "" {
		t.Errorf("report = %+v", r)
	}

	var buf bytes.Buffer
	r.Render(&buf)
	if !strings.Contains(buf.String(), "No readable processes") {
		t.Errorf("render = %q", buf.String())
	}
}

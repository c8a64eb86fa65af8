//go:build windows

package winmem

import (
	"context"
	"os"
	"testing"
)

func TestSystem_GlobalMemoryStatus(t *testing.T) {
	gms, err := NewSystem().GlobalMemoryStatus()
	if err != nil {
		t.Fatalf("GlobalMemoryStatus() error = %v", err)
	}
	if gms.MemoryLoad > 100 {
		t.Errorf("MemoryLoad = %d, want <= 100", gms.MemoryLoad)
	}
	if gms.TotalPhys == 0 {
		t.Error("TotalPhys = 0")
	}
	if gms.AvailPhys > gms.TotalPhys {
		t.Errorf("AvailPhys %d > TotalPhys %d", gms.AvailPhys, gms.TotalPhys)
	}
	if gms.AvailPageFile > gms.TotalPageFile {
		t.Errorf("AvailPageFile %d > TotalPageFile %d", gms.AvailPageFile, gms.TotalPageFile)
	}
	if gms.AvailVirtual > gms.TotalVirtual {
		t.Errorf("AvailVirtual %d > TotalVirtual %d", gms.AvailVirtual, gms.TotalVirtual)
	}
}

func TestSystem_PerformanceInfo(t *testing.T) {
	pi, err := NewSystem().PerformanceInfo()
	if err != nil {
		t.Fatalf("PerformanceInfo() error = %v", err)
	}
	if pi.PageSize == 0 || pi.PhysicalTotal == 0 || pi.ProcessCount == 0 {
		t.Errorf("PerformanceInfo has empty core fields: %+v", pi)
	}
	if pi.PhysicalAvailable > pi.PhysicalTotal {
		t.Errorf("PhysicalAvailable %d > PhysicalTotal %d", pi.PhysicalAvailable, pi.PhysicalTotal)
	}
}

func TestSystem_ReadsOwnProcess(t *testing.T) {
	sys := NewSystem()
	procs, err := sys.ListProcesses()
	if err != nil {
		t.Fatalf("ListProcesses() error = %v", err)
	}

	self := uint32(os.Getpid())
	var me *ProcessIdentity
	for i := range procs {
		if procs[i].PID == self {
			me = &procs[i]
			break
		}
	}
	if me == nil {
		t.Fatalf("own pid %d not in %d listed processes", self, len(procs))
	}

	counters, err := sys.ReadCounters(*me)
	if err != nil {
		t.Fatalf("ReadCounters(self) error = %v", err)
	}
	if counters.WorkingSetSize == 0 || counters.PrivateUsage == 0 {
		t.Errorf("own counters look empty: %+v", counters)
	}
}

func TestSystem_CollectEveryProcess(t *testing.T) {
	report, err := NewClient().GetProcessMemory(context.Background()).Wait()
	if err != nil {
		t.Fatalf("GetProcessMemory() error = %v", err)
	}
	if len(report) == 0 {
		t.Fatal("empty report on a running system")
	}
	for name, e := range report {
		if e.Failed() && !e.MemoryCounters.IsZero() {
			t.Errorf("%s: failed entry has counters %+v", name, e.MemoryCounters)
		}
	}
}

func TestSystem_ReadCountersOfMissingProcess(t *testing.T) {
	// PIDs are multiples of four; an odd pid never names a live process.
	_, err := NewSystem().ReadCounters(ProcessIdentity{PID: 0xFFFFFFF1, Name: "gone.exe"})
	if err == nil {
		t.Fatal("ReadCounters() of a missing process returned no error")
	}
	if _, ok := err.(*ProcessQueryError); !ok {
		t.Errorf("error type = %T, want *ProcessQueryError", err)
	}
}

package crosscheck

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shirou/gopsutil/v3/mem"

	"github.com/danpilch/winmem/pkg/deferred"
	"github.com/danpilch/winmem/pkg/use"
	"github.com/danpilch/winmem/pkg/winmem"
)

type fakeCollections struct {
	global  winmem.GlobalMemoryStatus
	perf    winmem.PerformanceInfo
	report  winmem.ProcessMemoryReport
	listed  []winmem.ProcessIdentity
	failAll bool
}

func (f fakeCollections) GetPerformanceInfo(context.Context) *deferred.Future[winmem.PerformanceInfo] {
	if f.failAll {
		return deferred.Rejected[winmem.PerformanceInfo](winmem.ErrUnsupported)
	}
	return deferred.Resolved(f.perf)
}

func (f fakeCollections) GlobalMemoryStatus(context.Context) *deferred.Future[winmem.GlobalMemoryStatus] {
	if f.failAll {
		return deferred.Rejected[winmem.GlobalMemoryStatus](winmem.ErrUnsupported)
	}
	return deferred.Resolved(f.global)
}

func (f fakeCollections) GetProcessMemory(context.Context) *deferred.Future[winmem.ProcessMemoryReport] {
	if f.failAll {
		return deferred.Rejected[winmem.ProcessMemoryReport](winmem.ErrUnsupported)
	}
	return deferred.Resolved(f.report)
}

func (f fakeCollections) ListProcesses(context.Context) *deferred.Future[[]winmem.ProcessIdentity] {
	if f.failAll {
		return deferred.Rejected[[]winmem.ProcessIdentity](winmem.ErrUnsupported)
	}
	return deferred.Resolved(f.listed)
}

type fakeIndependent struct {
	vm   *mem.VirtualMemoryStat
	pids []int32
	err  error
}

func (f fakeIndependent) VirtualMemory(context.Context) (*mem.VirtualMemoryStat, error) {
	return f.vm, f.err
}

func (f fakeIndependent) Pids(context.Context) ([]int32, error) {
	return f.pids, f.err
}

func consistent() (fakeCollections, fakeIndependent) {
	c := fakeCollections{
		global: winmem.GlobalMemoryStatus{
			MemoryLoad: 50, TotalPhys: 8 << 30, AvailPhys: 4 << 30,
			TotalPageFile: 12 << 30, AvailPageFile: 6 << 30,
			TotalVirtual: 128 << 40, AvailVirtual: 127 << 40,
		},
		perf: winmem.PerformanceInfo{
			CommitTotal: 1000, CommitLimit: 3000, CommitPeak: 1500,
			PhysicalTotal: 2 << 20, PhysicalAvailable: 1 << 20, PageSize: 4096,
			KernelTotal: 100, KernelPaged: 60, KernelNonpaged: 40, ProcessCount: 3,
		},
		report: winmem.ProcessMemoryReport{
			"System":      winmem.NewFailedProcessMemoryEntry(4, errors.New("Access is denied.")),
			"svchost.exe": winmem.NewProcessMemoryEntry(900, winmem.MemoryCounters{WorkingSetSize: 10, PeakWorkingSetSize: 20}),
		},
		listed: []winmem.ProcessIdentity{{PID: 4, Name: "System"}, {PID: 900, Name: "svchost.exe"}, {PID: 901, Name: "svchost.exe"}},
	}
	alt := fakeIndependent{
		vm:   &mem.VirtualMemoryStat{Total: 8 << 30, UsedPercent: 50},
		pids: []int32{4, 900, 901},
	}
	return c, alt
}

func TestCrossCheck(t *testing.T) {
	v := NewValidator()
	tests := []struct {
		name          string
		values        []float64
		wantConsensus float64
		wantStatus    ValidationStatus
	}{
		{"no sources", nil, 0, StatusValid},
		{"single source", []float64{42}, 42, StatusValid},
		{"agreement", []float64{50, 50, 51}, 50, StatusValid},
		{"suspect", []float64{50, 53, 50}, 50, StatusSuspect},
		{"conflict", []float64{50, 50, 80}, 50, StatusConflict},
		{"even count median", []float64{40, 60}, 50, StatusConflict},
		{"zero consensus", []float64{0, 0, 3}, 0, StatusConflict},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sources := make([]Source, len(tc.values))
			for i, val := range tc.values {
				sources[i] = Source{Name: "s", Value: val}
			}
			got := v.CrossCheck("m", sources)
			if got.Consensus != tc.wantConsensus || got.Status != tc.wantStatus {
				t.Errorf("CrossCheck = consensus %v status %s, want %v %s",
					got.Consensus, got.Status, tc.wantConsensus, tc.wantStatus)
			}
		})
	}
}

func TestRunCrossChecks_ConsistentSnapshot(t *testing.T) {
	c, alt := consistent()
	res, err := RunCrossChecks(context.Background(), c, alt, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Failed() {
		var buf bytes.Buffer
		Report(&buf, res)
		t.Fatalf("consistent snapshot failed cross-checks:\n%s", buf.String())
	}
	if len(res.Validations) != 3 {
		t.Errorf("len(Validations) = %d, want 3", len(res.Validations))
	}
	for _, v := range res.Validations {
		if len(v.Sources) != 3 {
			t.Errorf("%s has %d sources, want 3", v.Metric, len(v.Sources))
		}
	}
}

func TestSnapshotSanity_DetectsViolations(t *testing.T) {
	c, _ := consistent()
	bad := winmem.NewFailedProcessMemoryEntry(8, errors.New("denied"))
	bad.WorkingSetSize = 4096
	snap := Snapshot{
		Global: &winmem.GlobalMemoryStatus{MemoryLoad: 120, TotalPhys: 1, AvailPhys: 2},
		Perf:   &c.perf,
		Report: winmem.ProcessMemoryReport{"": bad},
	}

	failed := map[string]bool{}
	for _, r := range SnapshotSanity(snap) {
		if !r.Passed {
			failed[r.Check] = true
		}
	}
	for _, want := range []string{
		"memory load within [0, 100]",
		"available physical <= total physical",
		"failed entries carry zero counters",
		"process names non-empty",
	} {
		if !failed[want] {
			t.Errorf("%q did not fail", want)
		}
	}
	if failed["commit total <= commit limit"] {
		t.Error("commit check failed on a consistent PerformanceInfo")
	}
}

func TestRunSanityChecks(t *testing.T) {
	results := RunSanityChecks([]use.Check{
		{Resource: "Memory", Type: use.Utilization, RawValue: 140, Status: use.StatusError},
		{Resource: "Commit", Type: use.Utilization, RawValue: 40, Status: use.StatusOK},
		{Resource: "Processes", Type: use.Errors, RawValue: -1, Status: use.StatusOK},
		{Resource: "Broken", Type: use.Utilization, RawValue: -5, Status: use.StatusUnknown},
	})
	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}
	if results[0].Passed || !results[1].Passed || results[2].Passed {
		t.Errorf("results = %+v", results)
	}
}

func TestGather_PartialFailure(t *testing.T) {
	c, _ := consistent()
	snap, err := Gather(context.Background(), c, fakeIndependent{err: errors.New("wmi unavailable")}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Virtual != nil || snap.Pids != nil {
		t.Error("failed independent source left data in the snapshot")
	}
	if got := len(MemorySources(snap)); got != 2 {
		t.Errorf("len(MemorySources) = %d, want 2", got)
	}
}

func TestGather_AllWinmemSourcesFail(t *testing.T) {
	_, alt := consistent()
	if _, err := Gather(context.Background(), fakeCollections{failAll: true}, alt, nil); err == nil {
		t.Fatal("Gather() returned no error with every winmem source failing")
	}
}

func TestReportJSON(t *testing.T) {
	var buf bytes.Buffer
	res := Result{Sanity: []SanityResult{{Check: "x", Passed: true}}}
	if err := ReportJSON(&buf, res); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"passed": true`) {
		t.Errorf("JSON = %s", buf.String())
	}
}

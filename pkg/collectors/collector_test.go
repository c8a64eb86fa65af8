package collectors_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/danpilch/winmem/pkg/collectors"
	"github.com/danpilch/winmem/pkg/deferred"
	"github.com/danpilch/winmem/pkg/use"
	"github.com/danpilch/winmem/pkg/winmem"
)

type fakeSource struct {
	perf    winmem.PerformanceInfo
	global  winmem.GlobalMemoryStatus
	report  winmem.ProcessMemoryReport
	perfErr error
}

func (f fakeSource) GetPerformanceInfo(context.Context) *deferred.Future[winmem.PerformanceInfo] {
	if f.perfErr != nil {
		return deferred.Rejected[winmem.PerformanceInfo](f.perfErr)
	}
	return deferred.Resolved(f.perf)
}

func (f fakeSource) GlobalMemoryStatus(context.Context) *deferred.Future[winmem.GlobalMemoryStatus] {
	return deferred.Resolved(f.global)
}

func (f fakeSource) GetProcessMemory(context.Context) *deferred.Future[winmem.ProcessMemoryReport] {
	return deferred.Resolved(f.report)
}

func healthy() fakeSource {
	return fakeSource{
		perf: winmem.PerformanceInfo{CommitTotal: 400, CommitLimit: 1000, CommitPeak: 500, PageSize: 4096},
		global: winmem.GlobalMemoryStatus{
			MemoryLoad: 40, TotalPhys: 16 << 30, AvailPhys: 9 << 30,
			TotalPageFile: 20 << 30, AvailPageFile: 15 << 30,
		},
		report: winmem.ProcessMemoryReport{
			"System":       winmem.NewFailedProcessMemoryEntry(4, errors.New("Access is denied.")),
			"explorer.exe": winmem.NewProcessMemoryEntry(800, winmem.MemoryCounters{WorkingSetSize: 1 << 30}),
			"chrome.exe":   winmem.NewProcessMemoryEntry(900, winmem.MemoryCounters{WorkingSetSize: 2 << 30}),
		},
	}
}

func find(t *testing.T, checks []use.Check, resource string, typ use.MetricType) use.Check {
	t.Helper()
	for _, c := range checks {
		if c.Resource == resource && c.Type == typ {
			return c
		}
	}
	t.Fatalf("no %s %s check in %+v", resource, typ, checks)
	return use.Check{}
}

func TestDefaultRegistry_HealthySystem(t *testing.T) {
	reg := collectors.NewDefaultRegistry(healthy())
	if got := strings.Join(reg.Names(), ","); got != "Memory,Commit,Processes" {
		t.Fatalf("Names() = %s", got)
	}

	checks := use.NewChecker(use.DefaultThresholds(), nil).RunAll(context.Background(), reg.Collectors())
	if len(checks) != 6 {
		t.Fatalf("len(checks) = %d, want 6", len(checks))
	}
	for _, c := range checks {
		if c.Status != use.StatusOK {
			t.Errorf("%s %s = %s (%s), want ok", c.Resource, c.Type, c.Status, c.Value)
		}
	}

	if c := find(t, checks, "Memory", use.Saturation); c.RawValue != 25 {
		t.Errorf("page file use = %v, want 25", c.RawValue)
	}
	if c := find(t, checks, "Commit", use.Utilization); c.RawValue != 40 {
		t.Errorf("commit utilization = %v, want 40", c.RawValue)
	}
	top := find(t, checks, "Processes", use.Utilization)
	if !strings.HasPrefix(top.Value, "chrome.exe") || top.RawValue != 12.5 {
		t.Errorf("top process = %q (%v), want chrome.exe at 12.5", top.Value, top.RawValue)
	}
	if c := find(t, checks, "Processes", use.Errors); c.Value != "1 of 3 inaccessible" {
		t.Errorf("inaccessible = %q", c.Value)
	}
}

func TestMemoryCollector_Thresholds(t *testing.T) {
	src := healthy()
	src.global.MemoryLoad = 93
	src.global.AvailPageFile = 2 << 30

	checks, err := collectors.NewDefaultRegistry(src).GetByName("Memory").Collect(context.Background(), use.DefaultThresholds())
	if err != nil {
		t.Fatal(err)
	}
	if c := find(t, checks, "Memory", use.Utilization); c.Status != use.StatusError {
		t.Errorf("load 93%% status = %s, want error", c.Status)
	}
	if c := find(t, checks, "Memory", use.Saturation); c.Status != use.StatusWarning {
		t.Errorf("page file 90%% status = %s, want warning", c.Status)
	}
}

func TestCommitCollector_FailureBecomesUnknown(t *testing.T) {
	src := healthy()
	src.perfErr = &winmem.FatalCollectionError{Op: "GetPerformanceInfo", Cause: winmem.ErrUnsupported}

	reg := collectors.NewDefaultRegistry(src)
	checks := use.NewChecker(use.DefaultThresholds(), nil).RunAll(context.Background(), reg.Collectors())

	c := find(t, checks, "Commit", use.Utilization)
	if c.Status != use.StatusUnknown {
		t.Errorf("status = %s, want unknown", c.Status)
	}
	if !strings.Contains(c.Description, "GetPerformanceInfo") {
		t.Errorf("description %q does not name the operation", c.Description)
	}
}

func TestProcessCollector_AllInaccessible(t *testing.T) {
	src := healthy()
	src.report = winmem.ProcessMemoryReport{
		"System": winmem.NewFailedProcessMemoryEntry(4, errors.New("Access is denied.")),
		"csrss":  winmem.NewFailedProcessMemoryEntry(600, errors.New("Access is denied.")),
	}

	checks, err := collectors.NewDefaultRegistry(src).GetByName("Processes").Collect(context.Background(), use.DefaultThresholds())
	if err != nil {
		t.Fatal(err)
	}
	if c := find(t, checks, "Processes", use.Errors); c.Status != use.StatusError {
		t.Errorf("status = %s, want error", c.Status)
	}
	if c := find(t, checks, "Processes", use.Utilization); c.Value != "- 0.0%" {
		t.Errorf("top process value = %q", c.Value)
	}
}

func TestClientSatisfiesSource(t *testing.T) {
	var _ collectors.Source = winmem.NewClient()
}

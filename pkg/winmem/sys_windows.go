//go:build windows

package winmem

import (
	"errors"
	"fmt"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	modKernel32              = windows.NewLazySystemDLL("kernel32.dll")
	procGlobalMemoryStatusEx = modKernel32.NewProc("GlobalMemoryStatusEx")

	modPsapi                 = windows.NewLazySystemDLL("psapi.dll")
	procGetProcessMemoryInfo = modPsapi.NewProc("GetProcessMemoryInfo")
	procGetPerformanceInfo   = modPsapi.NewProc("GetPerformanceInfo")
)

// snapshotAttempts bounds retries of CreateToolhelp32Snapshot on ERROR_BAD_LENGTH.
const snapshotAttempts = 8

// SIZE_T fields are uintptr so the layouts hold on both 386 and amd64.
type processMemoryCountersEx struct {
	Cb                         uint32
	PageFaultCount             uint32
	PeakWorkingSetSize         uintptr
	WorkingSetSize             uintptr
	QuotaPeakPagedPoolUsage    uintptr
	QuotaPagedPoolUsage        uintptr
	QuotaPeakNonPagedPoolUsage uintptr
	QuotaNonPagedPoolUsage     uintptr
	PagefileUsage              uintptr
	PeakPagefileUsage          uintptr
	PrivateUsage               uintptr
}

type performanceInformation struct {
	Cb                uint32
	CommitTotal       uintptr
	CommitLimit       uintptr
	CommitPeak        uintptr
	PhysicalTotal     uintptr
	PhysicalAvailable uintptr
	SystemCache       uintptr
	KernelTotal       uintptr
	KernelPaged       uintptr
	KernelNonpaged    uintptr
	PageSize          uintptr
	HandleCount       uint32
	ProcessCount      uint32
	ThreadCount       uint32
}

type memoryStatusEx struct {
	Length               uint32
	MemoryLoad           uint32
	TotalPhys            uint64
	AvailPhys            uint64
	TotalPageFile        uint64
	AvailPageFile        uint64
	TotalVirtual         uint64
	AvailVirtual         uint64
	AvailExtendedVirtual uint64
}

// ListProcesses walks a Toolhelp32 process snapshot.
func (s *System) ListProcesses() ([]ProcessIdentity, error) {
	snap, err := createProcessSnapshot()
	if err != nil {
		return nil, err
	}
	defer windows.CloseHandle(snap)

	var entry windows.ProcessEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))

	if err := windows.Process32First(snap, &entry); err != nil {
		if errors.Is(err, windows.ERROR_NO_MORE_FILES) {
			return []ProcessIdentity{}, nil
		}
		return nil, fmt.Errorf("Process32First: %w", err)
	}

	var procs []ProcessIdentity
	for {
		procs = append(procs, ProcessIdentity{
			PID:  entry.ProcessID,
			Name: windows.UTF16ToString(entry.ExeFile[:]),
		})

		if err := windows.Process32Next(snap, &entry); err != nil {
			if errors.Is(err, windows.ERROR_NO_MORE_FILES) {
				break
			}
			return nil, fmt.Errorf("Process32Next: %w", err)
		}
	}
	return procs, nil
}

// createProcessSnapshot retries while the process list changes faster than
// the kernel can size the snapshot buffer.
func createProcessSnapshot() (windows.Handle, error) {
	var err error
	for i := 0; i < snapshotAttempts; i++ {
		var snap windows.Handle
		snap, err = windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
		if err == nil {
			return snap, nil
		}
		if !errors.Is(err, windows.ERROR_BAD_LENGTH) {
			break
		}
	}
	return 0, fmt.Errorf("CreateToolhelp32Snapshot: %w", err)
}

// ReadCounters opens p for query and reads its PROCESS_MEMORY_COUNTERS_EX.
func (s *System) ReadCounters(p ProcessIdentity) (MemoryCounters, error) {
	h, err := openForQuery(p.PID)
	if err != nil {
		return MemoryCounters{}, &ProcessQueryError{PID: p.PID, Name: p.Name, Op: "OpenProcess", Cause: err}
	}
	defer windows.CloseHandle(h)

	var pmc processMemoryCountersEx
	pmc.Cb = uint32(unsafe.Sizeof(pmc))
	r, _, callErr := procGetProcessMemoryInfo.Call(
		uintptr(h),
		uintptr(unsafe.Pointer(&pmc)),
		uintptr(pmc.Cb),
	)
	if r == 0 {
		return MemoryCounters{}, &ProcessQueryError{PID: p.PID, Name: p.Name, Op: "GetProcessMemoryInfo", Cause: lastError(callErr)}
	}

	return MemoryCounters{
		PageFaultCount:             pmc.PageFaultCount,
		PeakWorkingSetSize:         uint64(pmc.PeakWorkingSetSize),
		WorkingSetSize:             uint64(pmc.WorkingSetSize),
		QuotaPeakPagedPoolUsage:    uint64(pmc.QuotaPeakPagedPoolUsage),
		QuotaPagedPoolUsage:        uint64(pmc.QuotaPagedPoolUsage),
		QuotaPeakNonPagedPoolUsage: uint64(pmc.QuotaPeakNonPagedPoolUsage),
		QuotaNonPagedPoolUsage:     uint64(pmc.QuotaNonPagedPoolUsage),
		PagefileUsage:              uint64(pmc.PagefileUsage),
		PeakPagefileUsage:          uint64(pmc.PeakPagefileUsage),
		PrivateUsage:               uint64(pmc.PrivateUsage),
	}, nil
}

func openForQuery(pid uint32) (windows.Handle, error) {
	const access = windows.PROCESS_QUERY_INFORMATION | windows.PROCESS_VM_READ
	h, err := windows.OpenProcess(access, false, pid)
	if err == nil {
		return h, nil
	}
	h, limitedErr := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, pid)
	if limitedErr == nil {
		return h, nil
	}
	return 0, err
}

// PerformanceInfo calls GetPerformanceInfo.
func (s *System) PerformanceInfo() (PerformanceInfo, error) {
	var pi performanceInformation
	pi.Cb = uint32(unsafe.Sizeof(pi))
	r, _, callErr := procGetPerformanceInfo.Call(uintptr(unsafe.Pointer(&pi)), uintptr(pi.Cb))
	if r == 0 {
		return PerformanceInfo{}, fmt.Errorf("GetPerformanceInfo: %w", lastError(callErr))
	}

	return PerformanceInfo{
		CommitTotal:       uint64(pi.CommitTotal),
		CommitLimit:       uint64(pi.CommitLimit),
		CommitPeak:        uint64(pi.CommitPeak),
		PhysicalTotal:     uint64(pi.PhysicalTotal),
		PhysicalAvailable: uint64(pi.PhysicalAvailable),
		SystemCache:       uint64(pi.SystemCache),
		KernelTotal:       uint64(pi.KernelTotal),
		KernelPaged:       uint64(pi.KernelPaged),
		KernelNonpaged:    uint64(pi.KernelNonpaged),
		PageSize:          uint64(pi.PageSize),
		HandleCount:       pi.HandleCount,
		ProcessCount:      pi.ProcessCount,
		ThreadCount:       pi.ThreadCount,
	}, nil
}

// GlobalMemoryStatus calls GlobalMemoryStatusEx.
func (s *System) GlobalMemoryStatus() (GlobalMemoryStatus, error) {
	var ms memoryStatusEx
	ms.Length = uint32(unsafe.Sizeof(ms))
	r, _, callErr := procGlobalMemoryStatusEx.Call(uintptr(unsafe.Pointer(&ms)))
	if r == 0 {
		return GlobalMemoryStatus{}, fmt.Errorf("GlobalMemoryStatusEx: %w", lastError(callErr))
	}

	return GlobalMemoryStatus{
		MemoryLoad:           ms.MemoryLoad,
		TotalPhys:            ms.TotalPhys,
		AvailPhys:            ms.AvailPhys,
		TotalPageFile:        ms.TotalPageFile,
		AvailPageFile:        ms.AvailPageFile,
		TotalVirtual:         ms.TotalVirtual,
		AvailVirtual:         ms.AvailVirtual,
		AvailExtendedVirtual: ms.AvailExtendedVirtual,
	}, nil
}

// lastError normalizes the error returned by LazyProc.Call, which is always
// non-nil and may be a zero Errno when the API did not set one.
func lastError(err error) error {
	var errno syscall.Errno
	if errors.As(err, &errno) && errno == 0 {
		return syscall.EINVAL
	}
	if err == nil {
		return syscall.EINVAL
	}
	return err
}

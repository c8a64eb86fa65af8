//go:build !windows

package winmem

// ListProcesses is not available off Windows.
func (s *System) ListProcesses() ([]ProcessIdentity, error) {
	return nil, ErrUnsupported
}

// ReadCounters is not available off Windows.
func (s *System) ReadCounters(p ProcessIdentity) (MemoryCounters, error) {
	return MemoryCounters{}, &ProcessQueryError{PID: p.PID, Name: p.Name, Op: "ReadCounters", Cause: ErrUnsupported}
}

// PerformanceInfo is not available off Windows.
func (s *System) PerformanceInfo() (PerformanceInfo, error) {
	return PerformanceInfo{}, ErrUnsupported
}

// GlobalMemoryStatus is not available off Windows.
func (s *System) GlobalMemoryStatus() (GlobalMemoryStatus, error) {
	return GlobalMemoryStatus{}, ErrUnsupported
}

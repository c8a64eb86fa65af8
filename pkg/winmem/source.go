package winmem

// ProcessLister enumerates the processes visible to the caller.
type ProcessLister interface {
	ListProcesses() ([]ProcessIdentity, error)
}

// CounterReader queries the memory counters of one process. A failure is
// returned as an error value; implementations must not panic on an
// unreachable process.
type CounterReader interface {
	ReadCounters(p ProcessIdentity) (MemoryCounters, error)
}

// SnapshotSource provides the single-shot system reports.
type SnapshotSource interface {
	PerformanceInfo() (PerformanceInfo, error)
	GlobalMemoryStatus() (GlobalMemoryStatus, error)
}

// ProcessListerFunc adapts a function to ProcessLister.
type ProcessListerFunc func() ([]ProcessIdentity, error)

// ListProcesses calls f.
func (f ProcessListerFunc) ListProcesses() ([]ProcessIdentity, error) { return f() }

// CounterReaderFunc adapts a function to CounterReader.
type CounterReaderFunc func(p ProcessIdentity) (MemoryCounters, error)

// ReadCounters calls f.
func (f CounterReaderFunc) ReadCounters(p ProcessIdentity) (MemoryCounters, error) { return f(p) }

// System is the native implementation of ProcessLister, CounterReader and
// SnapshotSource. Platform-specific implementation in sys_windows.go and sys_other.go.
type System struct{}

// NewSystem returns the native source.
func NewSystem() *System {
	return &System{}
}

var (
	_ ProcessLister  = (*System)(nil)
	_ CounterReader  = (*System)(nil)
	_ SnapshotSource = (*System)(nil)
)

//go:generate mockgen -destination=winmemmock/mock_source.go -package=winmemmock github.com/danpilch/winmem/pkg/winmem ProcessLister,CounterReader,SnapshotSource

// Package use applies the USE method (utilization, saturation, errors) to
// Windows memory telemetry.
package use

// MetricType represents the type of USE metric being measured.
type MetricType string

const (
	Utilization MetricType = "utilization"
	Saturation  MetricType = "saturation"
	Errors      MetricType = "errors"
)

// Status represents the health status of a check.
type Status string

const (
	StatusOK      Status = "ok"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
	StatusUnknown Status = "unknown"
)

// Severity orders statuses from healthy to critical. Unknown sorts between
// warning and error.
func (s Status) Severity() int {
	switch s {
	case StatusOK:
		return 0
	case StatusWarning:
		return 1
	case StatusUnknown:
		return 2
	case StatusError:
		return 3
	}
	return 2
}

// Check is a single USE result derived from one of the memory reports.
type Check struct {
	Resource    string     `json:"resource"`
	Type        MetricType `json:"type"`
	Value       string     `json:"value"`
	RawValue    float64    `json:"raw_value"`
	Status      Status     `json:"status"`
	Description string     `json:"description"`
	// Source names the native call the value came from, e.g. "GlobalMemoryStatusEx".
	Source string `json:"source"`
}

// Thresholds holds the percentages at which checks degrade.
type Thresholds struct {
	WarnUtil float64 `json:"warn_util"`
	CritUtil float64 `json:"crit_util"`
	// WarnSaturation applies to page-file use and peak commit.
	WarnSaturation float64 `json:"warn_saturation"`
	// WarnProcessShare is the share of physical memory a single process
	// working set may hold before warning.
	WarnProcessShare float64 `json:"warn_process_share"`
}

// DefaultThresholds returns the default threshold values.
func DefaultThresholds() Thresholds {
	return Thresholds{
		WarnUtil:         70.0,
		CritUtil:         90.0,
		WarnSaturation:   50.0,
		WarnProcessShare: 25.0,
	}
}

// EvaluateUtilization returns the appropriate status based on utilization percentage.
func (t Thresholds) EvaluateUtilization(percent float64) Status {
	if percent >= t.CritUtil {
		return StatusError
	}
	if percent >= t.WarnUtil {
		return StatusWarning
	}
	return StatusOK
}

// EvaluateErrors returns status based on error count.
func EvaluateErrors(count int64) Status {
	if count > 0 {
		return StatusWarning
	}
	return StatusOK
}

// EvaluateSaturation returns status based on saturation value and threshold.
func EvaluateSaturation(value, threshold float64) Status {
	if value > threshold {
		return StatusWarning
	}
	return StatusOK
}

// Percent returns part as a percentage of whole, or 0 when whole is zero.
func Percent(part, whole uint64) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

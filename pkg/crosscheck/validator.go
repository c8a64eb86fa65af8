// Package crosscheck compares memory readings from independent sources and
// checks the reports against OS-guaranteed constraints.
package crosscheck

import (
	"math"
	"sort"
)

// ValidationStatus indicates the confidence level of a cross-checked metric.
type ValidationStatus string

const (
	StatusValid    ValidationStatus = "valid"
	StatusSuspect  ValidationStatus = "suspect"
	StatusConflict ValidationStatus = "conflict"
)

// Source is a single reading of a metric.
type Source struct {
	Name    string  `json:"name"`
	Value   float64 `json:"value"`
	Unit    string  `json:"unit,omitempty"`
	RawData string  `json:"raw_data,omitempty"`
}

// ValidationResult holds the cross-check outcome for a metric.
type ValidationResult struct {
	Metric       string           `json:"metric"`
	Sources      []Source         `json:"sources"`
	Consensus    float64          `json:"consensus"`
	MaxDeviation float64          `json:"max_deviation"`
	Status       ValidationStatus `json:"status"`
}

// Validator cross-checks metrics from multiple sources.
type Validator struct {
	SuspectThreshold  float64 // deviation % to mark suspect
	ConflictThreshold float64 // deviation % to mark conflict
}

// NewValidator creates a validator with default thresholds.
func NewValidator() *Validator {
	return &Validator{
		SuspectThreshold:  5.0,
		ConflictThreshold: 20.0,
	}
}

// CrossCheck compares sources against their median and classifies the
// largest relative deviation.
func (v *Validator) CrossCheck(metric string, sources []Source) ValidationResult {
	result := ValidationResult{
		Metric:  metric,
		Sources: sources,
		Status:  StatusValid,
	}

	switch len(sources) {
	case 0:
		return result
	case 1:
		result.Consensus = sources[0].Value
		return result
	}

	values := make([]float64, len(sources))
	for i, s := range sources {
		values[i] = s.Value
	}
	result.Consensus = median(values)

	for _, val := range values {
		var dev float64
		switch {
		case result.Consensus != 0:
			dev = math.Abs(val-result.Consensus) / result.Consensus * 100
		case val != 0:
			dev = 100
		}
		result.MaxDeviation = math.Max(result.MaxDeviation, dev)
	}

	switch {
	case result.MaxDeviation >= v.ConflictThreshold:
		result.Status = StatusConflict
	case result.MaxDeviation >= v.SuspectThreshold:
		result.Status = StatusSuspect
	}
	return result
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

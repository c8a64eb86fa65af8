package use

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubCollector struct {
	name   string
	delay  time.Duration
	checks []Check
	err    error
}

func (s stubCollector) Name() string { return s.name }

func (s stubCollector) Collect(ctx context.Context, _ Thresholds) ([]Check, error) {
	time.Sleep(s.delay)
	return s.checks, s.err
}

func TestRunAll_KeepsCollectorOrder(t *testing.T) {
	checker := NewChecker(DefaultThresholds(), nil)
	collectors := []Collector{
		stubCollector{name: "Memory", delay: 20 * time.Millisecond, checks: []Check{{Resource: "Memory", Status: StatusOK}}},
		stubCollector{name: "Commit", checks: []Check{{Resource: "Commit", Status: StatusWarning}}},
		stubCollector{name: "Processes", err: errors.New("GetProcessMemory: access denied")},
	}

	checks := checker.RunAll(context.Background(), collectors)
	if len(checks) != 3 {
		t.Fatalf("len(checks) = %d, want 3", len(checks))
	}
	want := []string{"Memory", "Commit", "Processes"}
	for i, c := range checks {
		if c.Resource != want[i] {
			t.Errorf("checks[%d].Resource = %q, want %q", i, c.Resource, want[i])
		}
	}
	if checks[2].Status != StatusUnknown || checks[2].Description != "GetProcessMemory: access denied" {
		t.Errorf("failed collector check = %+v", checks[2])
	}
}

func TestEvaluateUtilization(t *testing.T) {
	th := DefaultThresholds()
	tests := []struct {
		percent float64
		want    Status
	}{
		{0, StatusOK},
		{69.9, StatusOK},
		{70, StatusWarning},
		{89.9, StatusWarning},
		{90, StatusError},
		{100, StatusError},
	}
	for _, tc := range tests {
		if got := th.EvaluateUtilization(tc.percent); got != tc.want {
			t.Errorf("EvaluateUtilization(%v) = %s, want %s", tc.percent, got, tc.want)
		}
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     int
	}{
		{"empty", nil, ExitOK},
		{"all ok", []Status{StatusOK, StatusOK}, ExitOK},
		{"warning", []Status{StatusOK, StatusWarning}, ExitWarning},
		{"error beats warning", []Status{StatusWarning, StatusError}, ExitCritical},
		{"only unknown", []Status{StatusOK, StatusUnknown}, ExitToolError},
		{"unknown with warning", []Status{StatusUnknown, StatusWarning}, ExitWarning},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			checks := make([]Check, len(tc.statuses))
			for i, s := range tc.statuses {
				checks[i].Status = s
			}
			if got := ExitCode(checks); got != tc.want {
				t.Errorf("ExitCode() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestPercent(t *testing.T) {
	if got := Percent(1, 0); got != 0 {
		t.Errorf("Percent(1, 0) = %v, want 0", got)
	}
	if got := Percent(25, 100); got != 25 {
		t.Errorf("Percent(25, 100) = %v, want 25", got)
	}
}

func TestStatusSeverity(t *testing.T) {
	if !(StatusOK.Severity() < StatusWarning.Severity() &&
		StatusWarning.Severity() < StatusUnknown.Severity() &&
		StatusUnknown.Severity() < StatusError.Severity()) {
		t.Error("severity order is not ok < warning < unknown < error")
	}
}

func TestRunOne(t *testing.T) {
	checker := NewChecker(DefaultThresholds(), nil)

	checks, err := checker.RunOne(context.Background(), stubCollector{
		name:   "Commit",
		checks: []Check{{Resource: "Commit", Type: Utilization, Status: StatusOK}},
	})
	if err != nil || len(checks) != 1 || checks[0].Resource != "Commit" {
		t.Errorf("RunOne() = %+v, %v", checks, err)
	}

	cause := errors.New("GetPerformanceInfo: unsupported")
	if _, err := checker.RunOne(context.Background(), stubCollector{name: "Commit", err: cause}); !errors.Is(err, cause) {
		t.Errorf("RunOne() error = %v, want %v", err, cause)
	}
}

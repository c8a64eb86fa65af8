package use

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Checker runs collectors concurrently and gathers their checks.
type Checker struct {
	thresholds Thresholds
	logger     *logrus.Logger
}

// Collector derives checks from one memory report.
type Collector interface {
	Name() string
	Collect(ctx context.Context, thresholds Thresholds) ([]Check, error)
}

// NewChecker creates a new USE method checker.
func NewChecker(thresholds Thresholds, logger *logrus.Logger) *Checker {
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.WarnLevel)
	}
	return &Checker{
		thresholds: thresholds,
		logger:     logger,
	}
}

// Thresholds returns the thresholds the checker evaluates against.
func (c *Checker) Thresholds() Thresholds {
	return c.thresholds
}

// RunAll executes all collectors and returns their checks in collector order.
// A failing collector contributes a single unknown check.
func (c *Checker) RunAll(ctx context.Context, collectors []Collector) []Check {
	results := make([][]Check, len(collectors))
	var wg sync.WaitGroup

	for i, collector := range collectors {
		wg.Add(1)
		go func(i int, col Collector) {
			defer wg.Done()
			results[i] = c.run(ctx, col)
		}(i, collector)
	}
	wg.Wait()

	var all []Check
	for _, checks := range results {
		all = append(all, checks...)
	}
	return all
}

// RunOne executes a single collector.
func (c *Checker) RunOne(ctx context.Context, collector Collector) ([]Check, error) {
	c.logger.WithField("collector", collector.Name()).Debug("Running collector")
	return collector.Collect(ctx, c.thresholds)
}

func (c *Checker) run(ctx context.Context, col Collector) []Check {
	c.logger.WithField("collector", col.Name()).Debug("Running collector")

	checks, err := col.Collect(ctx, c.thresholds)
	if err != nil {
		c.logger.WithFields(logrus.Fields{
			"collector": col.Name(),
			"error":     err,
		}).Warn("Collector failed")
		return []Check{UnknownCheck(col.Name(), err)}
	}
	return checks
}

// UnknownCheck reports a resource that could not be measured.
func UnknownCheck(resource string, err error) Check {
	return Check{
		Resource:    resource,
		Type:        Utilization,
		Value:       "unknown",
		Status:      StatusUnknown,
		Description: err.Error(),
	}
}

// Summary counts checks by status.
type Summary struct {
	Total    int
	OK       int
	Warnings int
	Errors   int
	Unknown  int
}

// Summarize calculates summary statistics from check results.
func Summarize(checks []Check) Summary {
	s := Summary{Total: len(checks)}
	for _, check := range checks {
		switch check.Status {
		case StatusOK:
			s.OK++
		case StatusWarning:
			s.Warnings++
		case StatusError:
			s.Errors++
		case StatusUnknown:
			s.Unknown++
		}
	}
	return s
}

// Exit codes returned by the CLI.
const (
	ExitOK        = 0
	ExitWarning   = 1
	ExitCritical  = 2
	ExitToolError = 3
)

// ExitCode returns the appropriate exit code based on check results.
func ExitCode(checks []Check) int {
	summary := Summarize(checks)
	if summary.Unknown > 0 && summary.Errors == 0 && summary.Warnings == 0 {
		return ExitToolError
	}
	if summary.Errors > 0 {
		return ExitCritical
	}
	if summary.Warnings > 0 {
		return ExitWarning
	}
	return ExitOK
}

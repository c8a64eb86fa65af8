package debug

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/danpilch/winmem/pkg/use"
)

var (
	debugTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	debugDim   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// CollectorTiming records the duration of a collector's Collect call.
type CollectorTiming struct {
	Name     string
	Duration time.Duration
	Err      error
}

// TimedCollector wraps a use.Collector to record collection duration.
type TimedCollector struct {
	inner use.Collector

	mu     sync.Mutex
	timing CollectorTiming
}

// NewTimedCollector wraps a collector with timing instrumentation.
func NewTimedCollector(c use.Collector) *TimedCollector {
	return &TimedCollector{inner: c}
}

// WrapAll wraps every collector.
func WrapAll(cols []use.Collector) []*TimedCollector {
	timed := make([]*TimedCollector, len(cols))
	for i, c := range cols {
		timed[i] = NewTimedCollector(c)
	}
	return timed
}

// Name returns the wrapped collector's name.
func (t *TimedCollector) Name() string {
	return t.inner.Name()
}

// Collect runs the wrapped collector and records duration.
func (t *TimedCollector) Collect(ctx context.Context, thresholds use.Thresholds) ([]use.Check, error) {
	start := time.Now()
	checks, err := t.inner.Collect(ctx, thresholds)

	t.mu.Lock()
	t.timing = CollectorTiming{Name: t.inner.Name(), Duration: time.Since(start), Err: err}
	t.mu.Unlock()
	return checks, err
}

// Timing returns the most recent measurement.
func (t *TimedCollector) Timing() CollectorTiming {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timing
}

// TimingReport prints a styled timing summary for all timed collectors.
func TimingReport(w io.Writer, timed []*TimedCollector) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, debugTitle.Render("Collector Timing Report"))
	fmt.Fprintln(w, debugDim.Render(strings.Repeat("═", 40)))
	fmt.Fprintf(w, "  %-20s %s\n", "COLLECTOR", "DURATION")
	fmt.Fprintln(w, "  "+debugDim.Render(strings.Repeat("─", 40)))

	var total time.Duration
	for _, tc := range timed {
		t := tc.Timing()
		suffix := ""
		if t.Err != nil {
			suffix = debugDim.Render(" (failed)")
		}
		fmt.Fprintf(w, "  %-20s %v%s\n", t.Name, t.Duration, suffix)
		total += t.Duration
	}
	fmt.Fprintln(w, "  "+debugDim.Render(strings.Repeat("─", 40)))
	fmt.Fprintf(w, "  %-20s %v\n", "TOTAL", total)
}

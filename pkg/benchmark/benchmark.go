// Package benchmark measures the latency of each collection and the tool's
// own allocation overhead.
package benchmark

import (
	"context"
	"fmt"
	"io"
	"math"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/danpilch/winmem/pkg/collectors"
	"github.com/danpilch/winmem/pkg/output"
	"github.com/danpilch/winmem/pkg/use"
)

// Options configures a benchmark run.
type Options struct {
	Iterations int
	Warmup     int
}

// DefaultOptions returns sensible benchmark defaults.
func DefaultOptions() Options {
	return Options{
		Iterations: 20,
		Warmup:     3,
	}
}

// Target is one measured operation. Run returns a representative value so
// the stability of the reading can be reported alongside its latency.
type Target struct {
	Name string
	Run  func(ctx context.Context) (float64, error)
}

// Result holds benchmark results for a single target.
type Result struct {
	Target      string          `json:"target"`
	Latencies   []time.Duration `json:"-"`
	P50         time.Duration   `json:"p50"`
	P95         time.Duration   `json:"p95"`
	P99         time.Duration   `json:"p99"`
	Errors      int             `json:"errors"`
	ValueStdDev float64         `json:"value_stddev"`
}

// Overhead holds the tool's own resource usage.
type Overhead struct {
	AllocBytes uint64 `json:"alloc_bytes"`
	AllocCount uint64 `json:"alloc_count"`
	GCPauses   uint32 `json:"gc_pauses"`
}

// OperationTargets measures the three public operations of src.
func OperationTargets(src collectors.Source) []Target {
	return []Target{
		{"GetPerformanceInfo", func(ctx context.Context) (float64, error) {
			pi, err := src.GetPerformanceInfo(ctx).Await(ctx)
			return float64(pi.CommitTotal), err
		}},
		{"GlobalMemoryStatus", func(ctx context.Context) (float64, error) {
			gms, err := src.GlobalMemoryStatus(ctx).Await(ctx)
			return float64(gms.MemoryLoad), err
		}},
		{"GetProcessMemory", func(ctx context.Context) (float64, error) {
			report, err := src.GetProcessMemory(ctx).Await(ctx)
			return float64(len(report)), err
		}},
	}
}

// CollectorTargets measures each collector; its value is the sum of its
// checks' raw values.
func CollectorTargets(cols []use.Collector, thresholds use.Thresholds) []Target {
	targets := make([]Target, len(cols))
	for i, col := range cols {
		col := col
		targets[i] = Target{Name: col.Name(), Run: func(ctx context.Context) (float64, error) {
			checks, err := col.Collect(ctx, thresholds)
			var sum float64
			for _, c := range checks {
				sum += c.RawValue
			}
			return sum, err
		}}
	}
	return targets
}

// Run benchmarks each target sequentially. It stops early when ctx is done.
func Run(ctx context.Context, targets []Target, opts Options) []Result {
	var results []Result

	for _, target := range targets {
		for i := 0; i < opts.Warmup && ctx.Err() == nil; i++ {
			_, _ = target.Run(ctx)
		}

		latencies := make([]time.Duration, 0, opts.Iterations)
		var values []float64
		errs := 0
		for i := 0; i < opts.Iterations && ctx.Err() == nil; i++ {
			start := time.Now()
			v, err := target.Run(ctx)
			latencies = append(latencies, time.Since(start))
			if err != nil {
				errs++
				continue
			}
			values = append(values, v)
		}

		sort.Slice(latencies, func(i, j int) bool {
			return latencies[i] < latencies[j]
		})

		results = append(results, Result{
			Target:      target.Name,
			Latencies:   latencies,
			P50:         percentile(latencies, 0.50),
			P95:         percentile(latencies, 0.95),
			P99:         percentile(latencies, 0.99),
			Errors:      errs,
			ValueStdDev: stddev(values),
		})
	}
	return results
}

// MeasureOverhead returns the tool's cumulative allocation statistics.
func MeasureOverhead() Overhead {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return Overhead{
		AllocBytes: m.TotalAlloc,
		AllocCount: m.Mallocs,
		GCPauses:   m.NumGC,
	}
}

var (
	bmTitle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	bmHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62")).Padding(0, 1)
	bmCell   = lipgloss.NewStyle().Padding(0, 1)
	bmDim    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	bmBold   = lipgloss.NewStyle().Bold(true)
)

// RenderResults outputs styled benchmark results.
func RenderResults(w io.Writer, results []Result, overhead Overhead) {
	fmt.Fprintln(w, bmTitle.Render("Self-Benchmark Results"))
	fmt.Fprintln(w, bmDim.Render(strings.Repeat("═", 70)))
	fmt.Fprintln(w)

	rows := make([][]string, len(results))
	for i, r := range results {
		rows[i] = []string{
			r.Target,
			r.P50.String(),
			r.P95.String(),
			r.P99.String(),
			fmt.Sprintf("%d", r.Errors),
			fmt.Sprintf("%.4f", r.ValueStdDev),
		}
	}
	fmt.Fprintln(w, table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(bmDim).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return bmHeader
			}
			return bmCell
		}).
		Headers("TARGET", "P50", "P95", "P99", "ERRORS", "VALUE STDDEV").
		Rows(rows...))

	fmt.Fprintln(w)
	fmt.Fprintln(w, bmTitle.Render("Tool Overhead"))
	fmt.Fprintln(w, bmDim.Render(strings.Repeat("─", 40)))
	fmt.Fprintf(w, "  Memory allocated: %s\n", bmBold.Render(output.FormatBytes(overhead.AllocBytes)))
	fmt.Fprintf(w, "  Allocations:      %s\n", bmBold.Render(fmt.Sprintf("%d", overhead.AllocCount)))
	fmt.Fprintf(w, "  GC cycles:        %s\n", bmBold.Render(fmt.Sprintf("%d", overhead.GCPauses)))
}

// percentile uses the nearest-rank method on an ascending slice.
func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p*float64(len(sorted)))) - 1
	idx = max(0, min(idx, len(sorted)-1))
	return sorted[idx]
}

// stddev is the population standard deviation.
func stddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	var sq float64
	for _, v := range values {
		sq += (v - mean) * (v - mean)
	}
	return math.Sqrt(sq / float64(len(values)))
}

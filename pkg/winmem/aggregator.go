package winmem

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

const tracerName = "github.com/danpilch/winmem/pkg/winmem"

// Aggregator builds a ProcessMemoryReport from a ProcessLister and a CounterReader.
type Aggregator struct {
	lister  ProcessLister
	reader  CounterReader
	workers int
	logger  *logrus.Logger
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithWorkers bounds the number of concurrent counter reads. Values below 1
// mean sequential reads.
func WithWorkers(n int) AggregatorOption {
	return func(a *Aggregator) {
		if n < 1 {
			n = 1
		}
		a.workers = n
	}
}

// WithAggregatorLogger sets the logger used for per-process diagnostics.
func WithAggregatorLogger(logger *logrus.Logger) AggregatorOption {
	return func(a *Aggregator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAggregator creates an aggregator. By default reads run on up to
// runtime.NumCPU() goroutines.
func NewAggregator(lister ProcessLister, reader CounterReader, opts ...AggregatorOption) *Aggregator {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	a := &Aggregator{
		lister:  lister,
		reader:  reader,
		workers: runtime.NumCPU(),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// outcome is the result of one counter read, kept at its listing index.
type outcome struct {
	counters MemoryCounters
	err      error
}

// Collect enumerates processes and reads each one's counters. Only a listing
// failure is returned as an error; per-process failures are recorded in the
// report. Reads may run concurrently, but outcomes are merged in listing order,
// so for a duplicated display name the process listed last always wins.
//
// ctx carries tracing only: a started collection is not interrupted.
func (a *Aggregator) Collect(ctx context.Context) (ProcessMemoryReport, error) {
	_, span := otel.Tracer(tracerName).Start(ctx, "winmem.Aggregator.Collect")
	defer span.End()

	start := time.Now()
	procs, err := a.lister.ListProcesses()
	if err != nil {
		span.RecordError(err)
		a.logger.WithField("error", err).Warn("Process enumeration failed")
		return nil, fatal("GetProcessMemory", err)
	}

	outcomes := make([]outcome, len(procs))
	var g errgroup.Group
	g.SetLimit(a.workers)
	for i, p := range procs {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					outcomes[i] = outcome{err: &ProcessQueryError{
						PID: p.PID, Name: p.Name, Op: "ReadCounters", Cause: fmt.Errorf("panic: %v", r),
					}}
				}
			}()
			counters, err := a.reader.ReadCounters(p)
			outcomes[i] = outcome{counters: counters, err: err}
			return nil
		})
	}
	_ = g.Wait()

	report := make(ProcessMemoryReport, len(procs))
	failed := 0
	for i, p := range procs {
		o := outcomes[i]
		if o.err != nil {
			failed++
			a.logger.WithFields(logrus.Fields{
				"pid":     p.PID,
				"process": p.Name,
				"error":   o.err,
			}).Debug("Process query failed")
			report[p.Name] = NewFailedProcessMemoryEntry(p.PID, o.err)
			continue
		}
		report[p.Name] = NewProcessMemoryEntry(p.PID, o.counters)
	}

	span.SetAttributes(
		attribute.Int("winmem.processes", len(procs)),
		attribute.Int("winmem.failed", failed),
		attribute.Int("winmem.entries", len(report)),
	)
	a.logger.WithFields(logrus.Fields{
		"processes": len(procs),
		"failed":    failed,
		"entries":   len(report),
		"duration":  time.Since(start),
	}).Debug("Process memory collected")

	return report, nil
}

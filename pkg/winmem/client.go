package winmem

import (
	"context"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/danpilch/winmem/pkg/deferred"
)

// Client exposes the three public operations. Each call starts a fresh
// collection off the caller's goroutine and returns a future that settles once.
type Client struct {
	snapshots  SnapshotSource
	lister     ProcessLister
	reader     CounterReader
	aggregator *Aggregator
	logger     *logrus.Logger
	workers    int
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithSnapshotSource replaces the native snapshot source.
func WithSnapshotSource(s SnapshotSource) ClientOption {
	return func(c *Client) { c.snapshots = s }
}

// WithProcessLister replaces the native process lister.
func WithProcessLister(l ProcessLister) ClientOption {
	return func(c *Client) { c.lister = l }
}

// WithCounterReader replaces the native counter reader.
func WithCounterReader(r CounterReader) ClientOption {
	return func(c *Client) { c.reader = r }
}

// WithLogger sets the client's logger.
func WithLogger(logger *logrus.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// WithConcurrency bounds concurrent per-process reads.
func WithConcurrency(n int) ClientOption {
	return func(c *Client) { c.workers = n }
}

// NewClient creates a client backed by the native System unless overridden.
func NewClient(opts ...ClientOption) *Client {
	sys := NewSystem()
	c := &Client{
		snapshots: sys,
		lister:    sys,
		reader:    sys,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logrus.New()
		c.logger.SetLevel(logrus.WarnLevel)
	}

	aggOpts := []AggregatorOption{WithAggregatorLogger(c.logger)}
	if c.workers > 0 {
		aggOpts = append(aggOpts, WithWorkers(c.workers))
	}
	c.aggregator = NewAggregator(c.lister, c.reader, aggOpts...)
	return c
}

// GetPerformanceInfo collects system performance counters.
func (c *Client) GetPerformanceInfo(ctx context.Context) *deferred.Future[PerformanceInfo] {
	return run(ctx, c.logger, "GetPerformanceInfo", func(context.Context) (PerformanceInfo, error) {
		return c.snapshots.PerformanceInfo()
	})
}

// GlobalMemoryStatus collects the global memory status.
func (c *Client) GlobalMemoryStatus(ctx context.Context) *deferred.Future[GlobalMemoryStatus] {
	return run(ctx, c.logger, "GlobalMemoryStatus", func(context.Context) (GlobalMemoryStatus, error) {
		return c.snapshots.GlobalMemoryStatus()
	})
}

// GetProcessMemory collects memory counters for every visible process. The
// future rejects only when enumeration itself fails.
func (c *Client) GetProcessMemory(ctx context.Context) *deferred.Future[ProcessMemoryReport] {
	return run(ctx, c.logger, "GetProcessMemory", c.aggregator.Collect)
}

// ListProcesses enumerates processes without reading their counters.
func (c *Client) ListProcesses(ctx context.Context) *deferred.Future[[]ProcessIdentity] {
	return run(ctx, c.logger, "ListProcesses", func(context.Context) ([]ProcessIdentity, error) {
		return c.lister.ListProcesses()
	})
}

// run executes collect on its own goroutine and adapts its (value, error)
// completion into a future. Errors are wrapped as FatalCollectionError.
func run[T any](ctx context.Context, logger *logrus.Logger, op string, collect func(context.Context) (T, error)) *deferred.Future[T] {
	return deferred.FromSyncCallback(func(done func(T, error)) {
		ctx, span := otel.Tracer(tracerName).Start(ctx, "winmem."+op, trace.WithSpanKind(trace.SpanKindInternal))
		defer span.End()

		value, err := collect(ctx)
		if err != nil {
			err = fatal(op, err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			logger.WithFields(logrus.Fields{
				"operation": op,
				"error":     err,
			}).Warn("Collection failed")
			var zero T
			done(zero, err)
			return
		}
		done(value, nil)
	})
}

var defaultClient = NewClient()

// GetPerformanceInfo collects system performance counters with the default client.
func GetPerformanceInfo(ctx context.Context) (PerformanceInfo, error) {
	return defaultClient.GetPerformanceInfo(ctx).Await(ctx)
}

// GetGlobalMemoryStatus collects the global memory status with the default client.
func GetGlobalMemoryStatus(ctx context.Context) (GlobalMemoryStatus, error) {
	return defaultClient.GlobalMemoryStatus(ctx).Await(ctx)
}

// GetProcessMemory collects per-process memory with the default client.
func GetProcessMemory(ctx context.Context) (ProcessMemoryReport, error) {
	return defaultClient.GetProcessMemory(ctx).Await(ctx)
}

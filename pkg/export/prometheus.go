// Package export exposes winmem collections to Prometheus scrapes and
// publishes one-shot snapshots to NATS JetStream.
package export

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/danpilch/winmem/pkg/collectors"
	"github.com/danpilch/winmem/pkg/deferred"
	"github.com/danpilch/winmem/pkg/winmem"
)

const namespace = "winmem"

// Collector is a prometheus.Collector that performs one point-in-time
// collection of every report per scrape. Nothing is cached between scrapes.
type Collector struct {
	src       collectors.Source
	timeout   time.Duration
	processes bool
	logger    *logrus.Logger

	memoryLoad   *prometheus.Desc
	physical     *prometheus.Desc
	pagefile     *prometheus.Desc
	virtual      *prometheus.Desc
	commit       *prometheus.Desc
	systemCache  *prometheus.Desc
	kernelPool   *prometheus.Desc
	handles      *prometheus.Desc
	processCount *prometheus.Desc
	threads      *prometheus.Desc

	workingSet   *prometheus.Desc
	private      *prometheus.Desc
	pageFaults   *prometheus.Desc
	inaccessible *prometheus.Desc

	success  *prometheus.Desc
	duration *prometheus.Desc
}

// CollectorOption configures a Collector.
type CollectorOption func(*Collector)

// WithScrapeTimeout bounds how long a scrape waits for each collection.
func WithScrapeTimeout(d time.Duration) CollectorOption {
	return func(c *Collector) { c.timeout = d }
}

// WithProcessMetrics toggles the per-process series.
func WithProcessMetrics(enabled bool) CollectorOption {
	return func(c *Collector) { c.processes = enabled }
}

// WithCollectorLogger sets the logger used for failed collections.
func WithCollectorLogger(logger *logrus.Logger) CollectorOption {
	return func(c *Collector) { c.logger = logger }
}

// NewCollector creates a Collector reading from src.
func NewCollector(src collectors.Source, opts ...CollectorOption) *Collector {
	desc := func(name, help string, labels ...string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, labels, nil)
	}
	c := &Collector{
		src:       src,
		timeout:   10 * time.Second,
		processes: true,

		memoryLoad:   desc("memory_load_percent", "Approximate percentage of physical memory in use."),
		physical:     desc("physical_bytes", "Physical memory in bytes.", "state"),
		pagefile:     desc("pagefile_bytes", "Commit limit backed by RAM and page files, in bytes.", "state"),
		virtual:      desc("virtual_bytes", "User-mode virtual address space of the collecting process, in bytes.", "state"),
		commit:       desc("commit_bytes", "System commit charge in bytes.", "kind"),
		systemCache:  desc("system_cache_bytes", "System cache size in bytes."),
		kernelPool:   desc("kernel_pool_bytes", "Kernel pool size in bytes.", "pool"),
		handles:      desc("handles", "Open handles."),
		processCount: desc("processes", "Running processes."),
		threads:      desc("threads", "Running threads."),

		workingSet:   desc("process_working_set_bytes", "Process working set in bytes.", "process", "pid"),
		private:      desc("process_private_bytes", "Process private commit in bytes.", "process", "pid"),
		pageFaults:   desc("process_page_faults_total", "Process page faults since start.", "process", "pid"),
		inaccessible: desc("process_inaccessible", "Processes whose counters could not be read."),

		success:  desc("collection_success", "Whether the last collection succeeded.", "collection"),
		duration: desc("collection_duration_seconds", "Duration of the last collection.", "collection"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logrus.New()
		c.logger.SetLevel(logrus.WarnLevel)
	}
	return c
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{
		c.memoryLoad, c.physical, c.pagefile, c.virtual, c.commit,
		c.systemCache, c.kernelPool, c.handles, c.processCount, c.threads,
		c.workingSet, c.private, c.pageFaults, c.inaccessible,
		c.success, c.duration,
	} {
		ch <- d
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	start := time.Now()
	gmsF := c.src.GlobalMemoryStatus(ctx)
	perfF := c.src.GetPerformanceInfo(ctx)
	var reportF *deferred.Future[winmem.ProcessMemoryReport]
	if c.processes {
		reportF = c.src.GetProcessMemory(ctx)
	}

	if gms, err := gmsF.Await(ctx); c.outcome(ch, "GlobalMemoryStatus", start, err) {
		c.collectGlobal(ch, gms)
	}
	if pi, err := perfF.Await(ctx); c.outcome(ch, "GetPerformanceInfo", start, err) {
		c.collectPerformance(ch, pi)
	}
	if reportF != nil {
		if report, err := reportF.Await(ctx); c.outcome(ch, "GetProcessMemory", start, err) {
			c.collectProcesses(ch, report)
		}
	}
}

// outcome emits the success and duration series for one collection and
// reports whether its values should be emitted.
func (c *Collector) outcome(ch chan<- prometheus.Metric, collection string, start time.Time, err error) bool {
	ok := 1.0
	if err != nil {
		ok = 0
		c.logger.WithFields(logrus.Fields{"collection": collection, "error": err}).Warn("Scrape collection failed")
	}
	ch <- prometheus.MustNewConstMetric(c.success, prometheus.GaugeValue, ok, collection)
	ch <- prometheus.MustNewConstMetric(c.duration, prometheus.GaugeValue, time.Since(start).Seconds(), collection)
	return err == nil
}

func (c *Collector) collectGlobal(ch chan<- prometheus.Metric, gms winmem.GlobalMemoryStatus) {
	gauge := func(d *prometheus.Desc, v uint64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, float64(v), labels...)
	}
	gauge(c.memoryLoad, uint64(gms.MemoryLoad))
	gauge(c.physical, gms.TotalPhys, "total")
	gauge(c.physical, gms.AvailPhys, "available")
	gauge(c.pagefile, gms.TotalPageFile, "total")
	gauge(c.pagefile, gms.AvailPageFile, "available")
	gauge(c.virtual, gms.TotalVirtual, "total")
	gauge(c.virtual, gms.AvailVirtual, "available")
}

func (c *Collector) collectPerformance(ch chan<- prometheus.Metric, pi winmem.PerformanceInfo) {
	gauge := func(d *prometheus.Desc, v uint64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, float64(v), labels...)
	}
	gauge(c.commit, pi.Bytes(pi.CommitTotal), "total")
	gauge(c.commit, pi.Bytes(pi.CommitLimit), "limit")
	gauge(c.commit, pi.Bytes(pi.CommitPeak), "peak")
	gauge(c.systemCache, pi.Bytes(pi.SystemCache))
	gauge(c.kernelPool, pi.Bytes(pi.KernelPaged), "paged")
	gauge(c.kernelPool, pi.Bytes(pi.KernelNonpaged), "nonpaged")
	gauge(c.handles, uint64(pi.HandleCount))
	gauge(c.processCount, uint64(pi.ProcessCount))
	gauge(c.threads, uint64(pi.ThreadCount))
}

func (c *Collector) collectProcesses(ch chan<- prometheus.Metric, report winmem.ProcessMemoryReport) {
	for _, name := range report.Names() {
		e := report[name]
		if e.Failed() {
			continue
		}
		pid := strconv.FormatUint(uint64(e.ProcessID), 10)
		ch <- prometheus.MustNewConstMetric(c.workingSet, prometheus.GaugeValue, float64(e.WorkingSetSize), name, pid)
		ch <- prometheus.MustNewConstMetric(c.private, prometheus.GaugeValue, float64(e.PrivateUsage), name, pid)
		ch <- prometheus.MustNewConstMetric(c.pageFaults, prometheus.CounterValue, float64(e.PageFaultCount), name, pid)
	}
	ch <- prometheus.MustNewConstMetric(c.inaccessible, prometheus.GaugeValue, float64(report.FailedCount()))
}

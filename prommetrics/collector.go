// Package prommetrics exports blockpool metrics to Prometheus.
//
//	c, _ := prommetrics.New(prometheus.DefaultRegisterer, prommetrics.Opts{Namespace: "app"})
//	pool, _ := blockpool.NewInline(buf, 64, blockpool.Align8,
//	    blockpool.WithName("rx"),
//	    blockpool.WithMetricsCollector(c.Pool("rx")),
//	)
package prommetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/blockpool"
)

// DefaultBuckets covers 100ns to roughly 26ms; uncontended operations land in
// the first buckets, lock waits further up.
var DefaultBuckets = prometheus.ExponentialBuckets(100e-9, 4, 10)

// Opts configures a Collector.
type Opts struct {
	// Namespace prefixes every metric name.
	Namespace string

	// Buckets overrides DefaultBuckets for the latency histogram.
	Buckets []float64
}

// Collector owns the metric vectors shared by all pools reporting to one registry.
type Collector struct {
	ops      *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	blocks   *prometheus.GaugeVec
	capacity *prometheus.GaugeVec
}

// New creates the metric vectors and registers them with reg.
func New(reg prometheus.Registerer, opts Opts) (*Collector, error) {
	buckets := opts.Buckets
	if len(buckets) == 0 {
		buckets = DefaultBuckets
	}

	c := &Collector{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: opts.Namespace,
			Subsystem: "blockpool",
			Name:      "operations_total",
			Help:      "Alloc and free attempts by result kind.",
		}, []string{"pool", "op", "kind"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: opts.Namespace,
			Subsystem: "blockpool",
			Name:      "operation_duration_seconds",
			Help:      "Latency of alloc and free, including lock and permit waits.",
			Buckets:   buckets,
		}, []string{"pool", "op"}),
		blocks: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: opts.Namespace,
			Subsystem: "blockpool",
			Name:      "blocks",
			Help:      "Blocks by state.",
		}, []string{"pool", "state"}),
		capacity: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: opts.Namespace,
			Subsystem: "blockpool",
			Name:      "capacity_blocks",
			Help:      "Total number of blocks in the pool.",
		}, []string{"pool"}),
	}

	for _, col := range []prometheus.Collector{c.ops, c.latency, c.blocks, c.capacity} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Pool returns a blockpool.MetricsCollector that reports under the given pool label.
func (c *Collector) Pool(name string) *PoolCollector {
	return &PoolCollector{
		allocLatency: c.latency.WithLabelValues(name, "alloc"),
		freeLatency:  c.latency.WithLabelValues(name, "free"),
		ops:          c.ops.MustCurryWith(prometheus.Labels{"pool": name}),
		free:         c.blocks.WithLabelValues(name, "free"),
		busy:         c.blocks.WithLabelValues(name, "busy"),
		capacity:     c.capacity.WithLabelValues(name),
	}
}

// Forget drops every series of the named pool, typically after Delete.
func (c *Collector) Forget(name string) {
	labels := prometheus.Labels{"pool": name}
	c.ops.DeletePartialMatch(labels)
	c.latency.DeletePartialMatch(labels)
	c.blocks.DeletePartialMatch(labels)
	c.capacity.DeletePartialMatch(labels)
}

// PoolCollector implements blockpool.MetricsCollector for one pool.
type PoolCollector struct {
	allocLatency prometheus.Observer
	freeLatency  prometheus.Observer
	ops          *prometheus.CounterVec
	free         prometheus.Gauge
	busy         prometheus.Gauge
	capacity     prometheus.Gauge
}

// RecordAlloc implements blockpool.MetricsCollector.
func (p *PoolCollector) RecordAlloc(d time.Duration, err error) {
	p.allocLatency.Observe(d.Seconds())
	p.ops.WithLabelValues("alloc", blockpool.KindOf(err).String()).Inc()
}

// RecordFree implements blockpool.MetricsCollector.
func (p *PoolCollector) RecordFree(d time.Duration, err error) {
	p.freeLatency.Observe(d.Seconds())
	p.ops.WithLabelValues("free", blockpool.KindOf(err).String()).Inc()
}

// RecordOccupancy implements blockpool.MetricsCollector.
func (p *PoolCollector) RecordOccupancy(total, free int) {
	p.capacity.Set(float64(total))
	p.free.Set(float64(free))
	p.busy.Set(float64(total - free))
}

var _ blockpool.MetricsCollector = (*PoolCollector)(nil)

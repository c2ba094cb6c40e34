package blockpool

import (
	"context"
	"sync/atomic"
	"time"
)

// Info is a snapshot of a pool's occupancy.
type Info struct {
	Total uint32
	Free  uint32
}

// Busy returns the number of outstanding blocks.
func (i Info) Busy() uint32 { return i.Total - i.Free }

// Perf is a snapshot of a pool's operation counters.
//
// Allocs counts alloc attempts, including failed ones. Frees counts successful
// frees only. Timeouts counts lock acquisitions that ran out of budget.
type Perf struct {
	Allocs   uint32
	Frees    uint32
	Timeouts uint32
}

type perfCounters struct {
	enabled  bool
	allocs   atomic.Uint32
	frees    atomic.Uint32
	timeouts atomic.Uint32
}

func (c *perfCounters) alloc() {
	if c.enabled {
		c.allocs.Add(1)
	}
}

func (c *perfCounters) free() {
	if c.enabled {
		c.frees.Add(1)
	}
}

func (c *perfCounters) timeout() uint32 {
	return c.timeouts.Add(1)
}

func (c *perfCounters) snapshot() Perf {
	return Perf{
		Allocs:   c.allocs.Load(),
		Frees:    c.frees.Load(),
		Timeouts: c.timeouts.Load(),
	}
}

func (c *perfCounters) reset() {
	c.allocs.Store(0)
	c.frees.Store(0)
	c.timeouts.Store(0)
}

// instruments bundles the per-pool observability state both engines share.
type instruments struct {
	name        string
	lockTimeout time.Duration
	logger      *Logger
	metrics     MetricsCollector
	timed       bool
	perf        perfCounters
}

func newInstruments(o options, engine string) *instruments {
	_, noop := o.metricsCollector.(NoopMetricsCollector)
	in := &instruments{
		name:        o.name,
		lockTimeout: o.lockTimeout,
		logger:      o.logger.WithPool(o.name, engine),
		metrics:     o.metricsCollector,
		timed:       !noop,
	}
	in.perf.enabled = o.perf
	return in
}

func (in *instruments) start() time.Time {
	if !in.timed {
		return time.Time{}
	}
	return time.Now()
}

func (in *instruments) observeAlloc(start time.Time, err error, info Info) {
	if !in.timed {
		return
	}
	in.metrics.RecordAlloc(time.Since(start), err)
	in.metrics.RecordOccupancy(int(info.Total), int(info.Free))
}

func (in *instruments) observeFree(start time.Time, err error, info Info) {
	if err != nil {
		in.logger.LogRejectedFree(context.Background(), err)
	}
	if !in.timed {
		return
	}
	in.metrics.RecordFree(time.Since(start), err)
	in.metrics.RecordOccupancy(int(info.Total), int(info.Free))
}

func (in *instruments) timedOut(op string) {
	n := in.perf.timeout()
	in.logger.LogTimeout(context.Background(), op, in.lockTimeout, n)
}

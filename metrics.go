package blockpool

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus;
// the prommetrics package ships one.
//
// Durations are only measured when a collector other than
// NoopMetricsCollector is configured.
type MetricsCollector interface {
	// RecordAlloc is called after each alloc attempt.
	// duration is the total time taken, err is nil if a block was returned.
	RecordAlloc(duration time.Duration, err error)

	// RecordFree is called after each free attempt.
	RecordFree(duration time.Duration, err error)

	// RecordOccupancy is called after each alloc or free attempt with the
	// pool's block counts at that point.
	RecordOccupancy(total, free int)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAlloc(time.Duration, error) {}
func (NoopMetricsCollector) RecordFree(time.Duration, error)  {}
func (NoopMetricsCollector) RecordOccupancy(int, int)         {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	AllocCount      atomic.Int64
	AllocErrors     atomic.Int64
	AllocTotalNanos atomic.Int64
	FreeCount       atomic.Int64
	FreeErrors      atomic.Int64
	FreeTotalNanos  atomic.Int64
	Total           atomic.Int64
	Free            atomic.Int64
	MinFree         atomic.Int64
	minFreeSet      atomic.Bool
}

// RecordAlloc implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAlloc(duration time.Duration, err error) {
	b.AllocCount.Add(1)
	b.AllocTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.AllocErrors.Add(1)
	}
}

// RecordFree implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFree(duration time.Duration, err error) {
	b.FreeCount.Add(1)
	b.FreeTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.FreeErrors.Add(1)
	}
}

// RecordOccupancy implements MetricsCollector. It also tracks the low-water
// mark of free blocks.
func (b *BasicMetricsCollector) RecordOccupancy(total, free int) {
	b.Total.Store(int64(total))
	b.Free.Store(int64(free))
	f := int64(free)
	if b.minFreeSet.CompareAndSwap(false, true) {
		b.MinFree.Store(f)
		return
	}
	for {
		cur := b.MinFree.Load()
		if f >= cur || b.MinFree.CompareAndSwap(cur, f) {
			return
		}
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		AllocCount:    b.AllocCount.Load(),
		AllocErrors:   b.AllocErrors.Load(),
		AllocAvgNanos: avgNanos(b.AllocTotalNanos.Load(), b.AllocCount.Load()),
		FreeCount:     b.FreeCount.Load(),
		FreeErrors:    b.FreeErrors.Load(),
		FreeAvgNanos:  avgNanos(b.FreeTotalNanos.Load(), b.FreeCount.Load()),
		Total:         b.Total.Load(),
		Free:          b.Free.Load(),
		MinFree:       b.MinFree.Load(),
	}
}

func avgNanos(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	AllocCount    int64
	AllocErrors   int64
	AllocAvgNanos int64
	FreeCount     int64
	FreeErrors    int64
	FreeAvgNanos  int64
	Total         int64
	Free          int64
	MinFree       int64
}

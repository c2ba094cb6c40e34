package blockpool

import (
	"log/slog"
	"time"

	"github.com/hupe1980/blockpool/syncport"
)

const (
	// DefaultInlineLockTimeout is the lock budget of an inline pool when none is configured.
	DefaultInlineLockTimeout = 100 * time.Millisecond

	// DefaultNodeLockTimeout is the lock budget of a node-list pool when none is configured.
	DefaultNodeLockTimeout = time.Second
)

type options struct {
	checks             bool
	lockTimeout        time.Duration
	lockTimeoutSet     bool
	logger             *Logger
	metricsCollector   MetricsCollector
	name               string
	perf               bool
	tracking           bool
	port               syncport.Port
	timeoutLogInterval time.Duration
	timeoutLogSet      bool
}

// Option configures pool construction.
type Option func(*options)

// WithChecks toggles precondition checking. Checks are on by default.
//
// With checks disabled the pool trusts its caller: misaligned buffers are
// accepted, nil blocks are not rejected up front and interior pointers passed
// to Free are rounded down to their block. Preconditions whose violation would
// make the pool index outside its buffer are always enforced.
func WithChecks(enabled bool) Option {
	return func(o *options) {
		o.checks = enabled
	}
}

// WithLockTimeout sets how long Alloc and Free wait for the pool lock.
// syncport.WaitForever blocks without bound; syncport.NoWait tries once.
func WithLockTimeout(d time.Duration) Option {
	return func(o *options) {
		o.lockTimeout = d
		o.lockTimeoutSet = true
	}
}

// WithMetricsCollector configures a metrics collector for alloc/free operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &blockpool.BasicMetricsCollector{}
//	pool, _ := blockpool.NewInline(buf, 64, blockpool.Align8, blockpool.WithMetricsCollector(metrics))
//	// ... use pool ...
//	stats := metrics.GetStats()
//	fmt.Printf("Allocs: %d, Avg latency: %dns\n", stats.AllocCount, stats.AllocAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for pool lifecycle events.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := blockpool.NewJSONLogger(slog.LevelInfo)
//	pool, _ := blockpool.NewInline(buf, 64, blockpool.Align8, blockpool.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithName labels the pool in log records and metrics.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithPerfCounters toggles the alloc/free counters reported by Perf.
// The timeout counter is always maintained.
func WithPerfCounters(enabled bool) Option {
	return func(o *options) {
		o.perf = enabled
	}
}

// WithOwnershipTracking makes an inline pool remember which blocks are
// outstanding, so that double frees and frees of never-issued blocks fail with
// ErrNotOwned instead of corrupting the free list. Ignored by node-list pools,
// whose busy list already provides this.
func WithOwnershipTracking(enabled bool) Option {
	return func(o *options) {
		o.tracking = enabled
	}
}

// WithPort puts a node-list pool into multi-threaded mode: a counting semaphore
// sized to the block count and a mutex are created through port and closed
// again by Delete. Ignored by inline pools, which take their hooks through
// SetLock and SetPermit.
func WithPort(port syncport.Port) Option {
	return func(o *options) {
		o.port = port
	}
}

// WithTimeoutLogRate limits lock-timeout warnings to one per interval.
// A non-positive interval logs every timeout.
func WithTimeoutLogRate(interval time.Duration) Option {
	return func(o *options) {
		o.timeoutLogInterval = interval
		o.timeoutLogSet = true
	}
}

func applyOptions(optFns []Option, lockTimeout time.Duration) options {
	o := options{
		checks:           true,
		lockTimeout:      lockTimeout,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		perf:             true,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.timeoutLogSet {
		o.logger = o.logger.WithTimeoutSampling(o.timeoutLogInterval)
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	return o
}

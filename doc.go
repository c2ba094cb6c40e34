// Package blockpool provides fixed-size block allocators over caller-supplied
// memory, for code that needs predictable latency and no fragmentation.
//
// Two engines are available:
//
//   - InlinePool keeps its free list inside the buffer it manages. Alloc and
//     Free are O(1). The buffer must be ordinary writable memory.
//   - NodePool keeps free and busy lists in a separate []Node and never touches
//     block memory. Alloc is O(1), Free scans the outstanding blocks.
//
// Neither engine allocates memory of its own or starts goroutines.
//
// # Quick Start
//
//	buf := membuf.Aligned(4096, 64)
//	pool, _ := blockpool.NewInline(buf, 64, blockpool.Align64)
//	block, _ := pool.TryAlloc()
//	// ... use block ...
//	_ = pool.Free(block)
//
// # Concurrency
//
// Pools are unsynchronized unless told otherwise. An InlinePool takes a Lock
// and a Permit through SetLock and SetPermit; a NodePool creates its own mutex
// and counting semaphore through a syncport.Port given with WithPort.
//
//	host := syncport.NewHost(syncport.HostConfig{})
//	nodes := make([]blockpool.Node, 32)
//	blocks := make([]byte, 32*256)
//	pool, _ := blockpool.NewNodePool(nodes, blocks, 32, 256, blockpool.WithPort(host))
//	block, err := pool.Alloc(10 * time.Millisecond) // waits for a free block
//
// Every lock acquisition is bounded by the pool's lock timeout (WithLockTimeout).
// A timed-out Alloc hands back any permit it already holds, so the pool looks
// exactly as it did before the call.
//
// # Errors
//
// Failures are returned as errors wrapping one of the sentinels (ErrNoBlock,
// ErrTimeout, ...). Use errors.Is, or KindOf for a compact classification.
//
// # Observability
//
// Pools log lifecycle events through a *Logger (silent by default) and report
// alloc/free latency and occupancy to a MetricsCollector. The prommetrics
// package exports these to Prometheus.
package blockpool

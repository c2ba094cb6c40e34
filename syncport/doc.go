// Package syncport defines the synchronization contracts consumed by the
// blockpool engines and ships a host-backed implementation of them.
//
// # Contracts
//
// A Lock guards list mutation and is acquired with a bounded timeout. A Permit
// is one unit of a counting semaphore whose capacity equals the number of
// blocks in a pool. Both share the same shape:
//
//	Acquire(wait time.Duration) error
//	Release()
//
// The wait budget follows real-time OS conventions: NoWait tries exactly once,
// WaitForever blocks until the primitive becomes available, and any positive
// duration bounds the wait.
//
// A Port creates and destroys owned primitives. The node-list engine uses it to
// build its semaphore and mutex at create time and tear them down on delete.
//
// # Host Implementation
//
// Host, TimedMutex and CountingSemaphore are built on golang.org/x/sync/semaphore.
// Bounded waits are expressed as context deadlines:
//
//	host := syncport.NewHost(syncport.HostConfig{MaxPrimitives: 16})
//	sem, _ := host.NewSemaphore(32)
//	if err := sem.Acquire(10 * time.Millisecond); err != nil {
//	    // syncport.ErrTimeout
//	}
//	defer sem.Release()
//
// # Thread Safety
//
// All types in this package are safe for concurrent use.
package syncport

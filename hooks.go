package blockpool

import (
	"time"

	"github.com/hupe1980/blockpool/syncport"
)

type (
	// Lock is the mutual-exclusion hook of a pool.
	Lock = syncport.Lock

	// Permit is the counting-permit hook of a pool.
	Permit = syncport.Permit
)

// Wait budgets accepted by Alloc.
const (
	NoWait      = syncport.NoWait
	WaitForever = syncport.WaitForever
)

type funcHook struct {
	acquire func(time.Duration) error
	release func()
}

func (h funcHook) Acquire(wait time.Duration) error { return h.acquire(wait) }
func (h funcHook) Release()                         { h.release() }

// HookFuncs adapts an acquire/release closure pair to a hook usable with
// SetLock or SetPermit. If either closure is nil the result is nil, which
// detaches the hook.
func HookFuncs(acquire func(wait time.Duration) error, release func()) Lock {
	if acquire == nil || release == nil {
		return nil
	}
	return funcHook{acquire: acquire, release: release}
}

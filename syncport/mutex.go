package syncport

import (
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// TimedMutex is a mutex whose Acquire gives up after a timeout.
type TimedMutex struct {
	w       *semaphore.Weighted
	locked  atomic.Bool
	closed  atomic.Bool
	onClose func()
}

// NewMutex creates an unlocked TimedMutex.
func NewMutex() *TimedMutex {
	return &TimedMutex{w: semaphore.NewWeighted(1)}
}

// Acquire locks the mutex within timeout.
func (m *TimedMutex) Acquire(timeout time.Duration) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if err := acquireOne(m.w, timeout); err != nil {
		return err
	}
	m.locked.Store(true)
	return nil
}

// Release unlocks the mutex. Releasing an unlocked mutex is a no-op.
func (m *TimedMutex) Release() {
	if m.locked.CompareAndSwap(true, false) {
		m.w.Release(1)
	}
}

// Locked reports whether the mutex is currently held.
func (m *TimedMutex) Locked() bool {
	return m.locked.Load()
}

// Close marks the mutex closed. It is idempotent.
func (m *TimedMutex) Close() error {
	if m.closed.Swap(true) {
		return nil
	}
	if m.onClose != nil {
		m.onClose()
	}
	return nil
}

var _ Mutex = (*TimedMutex)(nil)

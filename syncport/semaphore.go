package syncport

import (
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// CountingSemaphore is a counting semaphore created with all permits available.
type CountingSemaphore struct {
	w        *semaphore.Weighted
	capacity int64
	held     atomic.Int64
	closed   atomic.Bool
	onClose  func()
}

// NewSemaphore creates a CountingSemaphore with capacity permits.
func NewSemaphore(capacity int) (*CountingSemaphore, error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	return &CountingSemaphore{
		w:        semaphore.NewWeighted(int64(capacity)),
		capacity: int64(capacity),
	}, nil
}

// Acquire takes one permit within wait.
func (s *CountingSemaphore) Acquire(wait time.Duration) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if err := acquireOne(s.w, wait); err != nil {
		return err
	}
	s.held.Add(1)
	return nil
}

// Release returns one permit. Releasing with no permit outstanding is a no-op,
// the same way giving a counting semaphore that is already full fails quietly.
func (s *CountingSemaphore) Release() {
	for {
		n := s.held.Load()
		if n <= 0 {
			return
		}
		if s.held.CompareAndSwap(n, n-1) {
			s.w.Release(1)
			return
		}
	}
}

// Available returns the number of permits that can currently be acquired.
func (s *CountingSemaphore) Available() int {
	return int(s.capacity - s.held.Load())
}

// Capacity returns the total number of permits.
func (s *CountingSemaphore) Capacity() int {
	return int(s.capacity)
}

// Close marks the semaphore closed. It is idempotent.
func (s *CountingSemaphore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	if s.onClose != nil {
		s.onClose()
	}
	return nil
}

var _ Semaphore = (*CountingSemaphore)(nil)

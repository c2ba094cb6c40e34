package syncport

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/semaphore"
)

const (
	// NoWait makes Acquire try exactly once without blocking.
	NoWait time.Duration = 0

	// WaitForever makes Acquire block until the primitive becomes available.
	// Any negative duration has the same meaning.
	WaitForever time.Duration = -1
)

var (
	// ErrTimeout is returned when a primitive could not be acquired within the wait budget.
	ErrTimeout = errors.New("syncport: acquire timed out")

	// ErrClosed is returned when acquiring a primitive that has been closed.
	ErrClosed = errors.New("syncport: primitive is closed")

	// ErrInvalidCapacity is returned when a semaphore is created with capacity <= 0.
	ErrInvalidCapacity = errors.New("syncport: capacity must be positive")

	// ErrLimitExceeded is returned when a Host has no budget left for another primitive.
	ErrLimitExceeded = errors.New("syncport: primitive limit exceeded")
)

// Lock is a mutual-exclusion capability with a bounded acquire.
type Lock interface {
	// Acquire takes the lock within timeout. A non-nil error means the lock is not held.
	Acquire(timeout time.Duration) error
	// Release gives the lock back.
	Release()
}

// Permit is one unit of a counting semaphore.
type Permit interface {
	// Acquire takes one permit within wait. A non-nil error means no permit was taken.
	Acquire(wait time.Duration) error
	// Release returns one permit.
	Release()
}

// Mutex is a Lock owned by a pool and destroyed with it.
type Mutex interface {
	Lock
	Close() error
}

// Semaphore is a counting Permit owned by a pool and destroyed with it.
type Semaphore interface {
	Permit
	Close() error
}

// Port creates the primitives a pool owns.
type Port interface {
	// NewSemaphore creates a counting semaphore with capacity permits, all available.
	NewSemaphore(capacity int) (Semaphore, error)
	// NewMutex creates an unlocked mutex.
	NewMutex() (Mutex, error)
}

// acquireOne takes a single unit from w within the wait budget.
func acquireOne(w *semaphore.Weighted, wait time.Duration) error {
	switch {
	case wait == NoWait:
		if !w.TryAcquire(1) {
			return ErrTimeout
		}
		return nil
	case wait < 0:
		return w.Acquire(context.Background(), 1)
	default:
		ctx, cancel := context.WithTimeout(context.Background(), wait)
		defer cancel()
		if err := w.Acquire(ctx, 1); err != nil {
			return ErrTimeout
		}
		return nil
	}
}

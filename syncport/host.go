package syncport

import (
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// HostConfig holds limits for a Host.
type HostConfig struct {
	// MaxPrimitives caps the number of live primitives created by the Host.
	// If 0, no limit is enforced (only tracking).
	MaxPrimitives int64
}

// Host is a Port backed by TimedMutex and CountingSemaphore.
type Host struct {
	cfg HostConfig

	budget *semaphore.Weighted // nil if unlimited
	live   atomic.Int64
}

// NewHost creates a new Host.
func NewHost(cfg HostConfig) *Host {
	h := &Host{cfg: cfg}
	if cfg.MaxPrimitives > 0 {
		h.budget = semaphore.NewWeighted(cfg.MaxPrimitives)
	}
	return h
}

// NewSemaphore implements Port.
func (h *Host) NewSemaphore(capacity int) (Semaphore, error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	if err := h.reserve(); err != nil {
		return nil, err
	}
	s, err := NewSemaphore(capacity)
	if err != nil {
		h.release()
		return nil, err
	}
	s.onClose = h.release
	return s, nil
}

// NewMutex implements Port.
func (h *Host) NewMutex() (Mutex, error) {
	if err := h.reserve(); err != nil {
		return nil, err
	}
	m := NewMutex()
	m.onClose = h.release
	return m, nil
}

// Live returns the number of primitives created and not yet closed.
func (h *Host) Live() int64 {
	return h.live.Load()
}

// Limit returns the configured primitive limit (0 if unlimited).
func (h *Host) Limit() int64 {
	return h.cfg.MaxPrimitives
}

func (h *Host) reserve() error {
	if h.budget != nil && !h.budget.TryAcquire(1) {
		return ErrLimitExceeded
	}
	h.live.Add(1)
	return nil
}

func (h *Host) release() {
	if h.budget != nil {
		h.budget.Release(1)
	}
	h.live.Add(-1)
}

var _ Port = (*Host)(nil)

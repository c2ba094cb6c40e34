package blockpool

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
)

// InlinePool hands out fixed-size blocks from a single caller-supplied buffer.
// The free list lives in an index region at the front of that buffer, so the
// buffer must be writable memory that the caller does not touch except through
// issued blocks. Alloc and Free are O(1).
//
// Without hooks the pool is not synchronized and callers must serialize
// access. SetLock attaches mutual exclusion; SetPermit attaches a counting
// permit (capacity equal to the block count) that bounds concurrent
// allocations and lets Alloc wait for a block.
type InlinePool struct {
	arena  arena
	layout Layout
	head   int
	total  atomic.Uint32
	free   atomic.Uint32
	lock   Lock
	permit Permit
	checks bool
	owned  *roaring.Bitmap
	in     *instruments
}

// NewInline creates an inline pool over buf. blockSize is rounded up to align.
func NewInline(buf []byte, blockSize int, align Alignment, opts ...Option) (*InlinePool, error) {
	o := applyOptions(opts, DefaultInlineLockTimeout)
	in := newInstruments(o, "inline")

	if o.checks && buf == nil {
		err := fmt.Errorf("%w: nil buffer", ErrInvalidArgument)
		in.logger.LogCreate(context.Background(), 0, blockSize, err)
		return nil, err
	}
	layout, err := computeLayout(addrOf(buf), len(buf), blockSize, align, o.checks)
	if err != nil {
		in.logger.LogCreate(context.Background(), 0, blockSize, err)
		return nil, err
	}

	p := &InlinePool{
		arena:  newArena(buf, layout),
		layout: layout,
		checks: o.checks,
		in:     in,
	}
	p.head = p.arena.format()
	p.total.Store(uint32(layout.Count))
	p.free.Store(uint32(layout.Count))
	if o.tracking {
		p.owned = roaring.New()
	}

	in.logger.LogCreate(context.Background(), layout.Count, layout.BlockSize, nil)
	return p, nil
}

// Layout returns the partition of the buffer chosen at creation.
func (p *InlinePool) Layout() Layout { return p.layout }

// SetLock attaches l as the pool's lock; nil detaches it.
// It must not race with Alloc or Free.
func (p *InlinePool) SetLock(l Lock) error {
	if p.checks && p.total.Load() == 0 {
		return fmt.Errorf("%w: pool deleted", ErrInvalidArgument)
	}
	p.lock = l
	return nil
}

// SetPermit attaches pm as the pool's counting permit; nil detaches it.
// The permit's capacity should equal the number of free blocks.
// It must not race with Alloc or Free.
func (p *InlinePool) SetPermit(pm Permit) error {
	if p.checks && p.total.Load() == 0 {
		return fmt.Errorf("%w: pool deleted", ErrInvalidArgument)
	}
	p.permit = pm
	return nil
}

// Alloc returns a free block. With a permit attached it waits at most wait for
// one; otherwise it fails immediately with ErrNoBlock when the pool is empty.
// A lock timeout leaves the pool and the permit count unchanged.
func (p *InlinePool) Alloc(wait time.Duration) ([]byte, error) {
	start := p.in.start()
	block, err := p.alloc(wait)
	p.in.observeAlloc(start, err, p.Info())
	return block, err
}

// TryAlloc is Alloc(NoWait).
func (p *InlinePool) TryAlloc() ([]byte, error) {
	return p.Alloc(NoWait)
}

func (p *InlinePool) alloc(wait time.Duration) ([]byte, error) {
	p.in.perf.alloc()

	permitted := false
	if p.permit != nil {
		if err := p.permit.Acquire(wait); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNoBlock, err)
		}
		permitted = true
	}
	if p.free.Load() == 0 {
		p.releasePermit(permitted)
		return nil, ErrNoBlock
	}
	if p.lock != nil {
		if err := p.lock.Acquire(p.in.lockTimeout); err != nil {
			p.releasePermit(permitted)
			p.in.timedOut("alloc")
			return nil, fmt.Errorf("%w: alloc: %w", ErrTimeout, err)
		}
	}

	idx := p.head
	if idx == endOfList {
		p.unlock()
		p.releasePermit(permitted)
		return nil, ErrNoBlock
	}
	p.head = p.arena.next(idx)
	p.free.Add(^uint32(0))
	if p.owned != nil {
		p.owned.Add(uint32(idx))
	}
	p.unlock()

	return p.arena.block(idx), nil
}

// Free returns block to the pool. Blocks outside the block region are rejected
// with ErrOutOfRange. Freeing into a pool with nothing outstanding fails with
// ErrNotOwned, as do interior pointers in checked mode and, with ownership
// tracking, blocks that are not currently issued.
func (p *InlinePool) Free(block []byte) error {
	start := p.in.start()
	err := p.release(block)
	p.in.observeFree(start, err, p.Info())
	return err
}

func (p *InlinePool) release(block []byte) error {
	if p.checks && block == nil {
		return fmt.Errorf("%w: nil block", ErrInvalidArgument)
	}
	if p.lock != nil {
		if err := p.lock.Acquire(p.in.lockTimeout); err != nil {
			p.in.timedOut("free")
			return fmt.Errorf("%w: free: %w", ErrTimeout, err)
		}
	}

	if p.free.Load() == p.total.Load() {
		p.unlock()
		return ErrNotOwned
	}
	idx, err := p.arena.indexOf(block, p.checks)
	if err != nil {
		p.unlock()
		return err
	}
	if p.owned != nil {
		if !p.owned.Contains(uint32(idx)) {
			p.unlock()
			return fmt.Errorf("%w: block %d is not outstanding", ErrNotOwned, idx)
		}
		p.owned.Remove(uint32(idx))
	}

	p.arena.setNext(idx, p.head)
	p.head = idx
	p.free.Add(1)
	p.unlock()

	if p.permit != nil {
		p.permit.Release()
	}
	p.in.perf.free()
	return nil
}

func (p *InlinePool) unlock() {
	if p.lock != nil {
		p.lock.Release()
	}
}

func (p *InlinePool) releasePermit(taken bool) {
	if taken && p.permit != nil {
		p.permit.Release()
	}
}

// Delete tears the pool down. It fails with ErrOccupancy while blocks are
// outstanding. Afterwards the pool reports no blocks, Alloc fails with
// ErrNoBlock and the hooks are detached. The buffer is not modified.
func (p *InlinePool) Delete() error {
	info := p.Info()
	if info.Free != info.Total {
		p.in.logger.LogDelete(context.Background(), info, ErrOccupancy)
		return ErrOccupancy
	}

	p.arena = arena{}
	p.layout = Layout{}
	p.head = endOfList
	p.total.Store(0)
	p.free.Store(0)
	p.lock = nil
	p.permit = nil
	p.owned = nil
	p.in.perf.reset()

	p.in.logger.LogDelete(context.Background(), info, nil)
	return nil
}

// Info returns the pool's block counts. It takes no lock; under concurrent
// Alloc and Free the two fields may be observed at different instants.
func (p *InlinePool) Info() Info {
	return Info{Total: p.total.Load(), Free: p.free.Load()}
}

// Perf returns the pool's operation counters.
func (p *InlinePool) Perf() Perf { return p.in.perf.snapshot() }

// Timeouts returns the number of lock acquisitions that timed out.
func (p *InlinePool) Timeouts() uint32 { return p.in.perf.timeouts.Load() }

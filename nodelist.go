package blockpool

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/hupe1980/blockpool/internal/conv"
	"github.com/hupe1980/blockpool/syncport"
)

// nilNode terminates the node lists.
const nilNode = -1

// Node is the bookkeeping record for one block of a NodePool. Callers allocate
// a []Node with one element per block and hand it to NewNodePool; the zero
// value is ready for use.
type Node struct {
	next  int
	block []byte
}

// NodePool hands out fixed-size blocks whose bookkeeping lives in a separate
// node array. The pool never reads or writes block memory, so blocks may be
// backed by memory the allocator must not touch. Alloc is O(1); Free scans the
// busy list and is O(outstanding blocks).
//
// Without a port the pool is not synchronized and callers must serialize access.
type NodePool struct {
	nodes    []Node
	total    int
	size     int
	freeHead int
	busyHead int
	freeLen  atomic.Uint32
	checks   bool
	sem      syncport.Semaphore
	mu       syncport.Mutex
	in       *instruments
}

// NewNodePool binds nodes[i] to the i-th size-byte block of blocks and links all
// of them into the free list. With WithPort the pool creates its semaphore and
// mutex through the port; if either cannot be created nothing is left behind.
func NewNodePool(nodes []Node, blocks []byte, count, size int, opts ...Option) (*NodePool, error) {
	o := applyOptions(opts, DefaultNodeLockTimeout)
	in := newInstruments(o, "nodelist")

	if err := checkNodeArgs(nodes, blocks, count, size, o.checks); err != nil {
		in.logger.LogCreate(context.Background(), 0, size, err)
		return nil, err
	}

	p := &NodePool{
		nodes:    nodes[:count:count],
		total:    count,
		size:     size,
		busyHead: nilNode,
		checks:   o.checks,
		in:       in,
	}
	for i := range p.nodes {
		off := i * size
		p.nodes[i] = Node{next: i + 1, block: blocks[off : off+size : off+size]}
	}
	p.nodes[count-1].next = nilNode
	p.freeHead = 0
	p.freeLen.Store(uint32(count))

	if o.port != nil {
		sem, err := o.port.NewSemaphore(count)
		if err != nil {
			err = fmt.Errorf("%w: semaphore: %w", ErrPort, err)
			in.logger.LogCreate(context.Background(), count, size, err)
			return nil, err
		}
		mu, err := o.port.NewMutex()
		if err != nil {
			err = fmt.Errorf("%w: mutex: %w", ErrPort, err)
			if cerr := sem.Close(); cerr != nil {
				err = errors.Join(err, cerr)
			}
			in.logger.LogCreate(context.Background(), count, size, err)
			return nil, err
		}
		p.sem, p.mu = sem, mu
	}

	in.logger.LogCreate(context.Background(), count, size, nil)
	return p, nil
}

func checkNodeArgs(nodes []Node, blocks []byte, count, size int, checked bool) error {
	if checked && (nodes == nil || blocks == nil) {
		return fmt.Errorf("%w: nil node array or block buffer", ErrInvalidArgument)
	}
	if count <= 0 || size <= 0 {
		return fmt.Errorf("%w: count %d, size %d", ErrInvalidArgument, count, size)
	}
	if _, err := conv.IntToUint32(count); err != nil {
		return fmt.Errorf("%w: count %d", ErrInvalidArgument, count)
	}
	if len(nodes) < count {
		return fmt.Errorf("%w: %d nodes for %d blocks", ErrInvalidArgument, len(nodes), count)
	}
	need, ok := conv.MulInt(count, size)
	if !ok || len(blocks) < need {
		return fmt.Errorf("%w: block buffer of %d bytes for %d blocks of %d", ErrInvalidArgument, len(blocks), count, size)
	}
	return nil
}

// Alloc moves the head of the free list to the busy list and returns its block.
// In multi-threaded mode it waits at most wait for a semaphore permit; a mutex
// timeout hands the permit back.
func (p *NodePool) Alloc(wait time.Duration) ([]byte, error) {
	start := p.in.start()
	block, err := p.alloc(wait)
	p.in.observeAlloc(start, err, p.counts())
	return block, err
}

// TryAlloc is Alloc(NoWait).
func (p *NodePool) TryAlloc() ([]byte, error) {
	return p.Alloc(NoWait)
}

func (p *NodePool) alloc(wait time.Duration) ([]byte, error) {
	p.in.perf.alloc()

	if p.sem != nil {
		if err := p.sem.Acquire(wait); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNoBlock, err)
		}
		if err := p.mu.Acquire(p.in.lockTimeout); err != nil {
			p.sem.Release()
			p.in.timedOut("alloc")
			return nil, fmt.Errorf("%w: alloc: %w", ErrTimeout, err)
		}
	}

	i := p.freeHead
	if i == nilNode {
		if p.sem != nil {
			p.mu.Release()
			p.sem.Release()
		}
		return nil, ErrNoBlock
	}
	n := &p.nodes[i]
	p.freeHead = n.next
	n.next = p.busyHead
	p.busyHead = i
	p.freeLen.Add(^uint32(0))
	if p.mu != nil {
		p.mu.Release()
	}

	return n.block, nil
}

// Free finds block on the busy list and moves its node back to the free list.
// Blocks are matched by identity of their first byte; an unknown block fails
// with ErrNotOwned and does not signal the semaphore.
func (p *NodePool) Free(block []byte) error {
	start := p.in.start()
	err := p.release(block)
	p.in.observeFree(start, err, p.counts())
	return err
}

func (p *NodePool) release(block []byte) error {
	if p.checks && block == nil {
		return fmt.Errorf("%w: nil block", ErrInvalidArgument)
	}
	if p.mu != nil {
		if err := p.mu.Acquire(p.in.lockTimeout); err != nil {
			p.in.timedOut("free")
			return fmt.Errorf("%w: free: %w", ErrTimeout, err)
		}
	} else if p.busyHead == nilNode {
		return ErrNotOwned
	}

	target := unsafe.SliceData(block)
	prev := nilNode
	for i := p.busyHead; i != nilNode; prev, i = i, p.nodes[i].next {
		n := &p.nodes[i]
		if unsafe.SliceData(n.block) != target {
			continue
		}
		if prev == nilNode {
			p.busyHead = n.next
		} else {
			p.nodes[prev].next = n.next
		}
		n.next = p.freeHead
		p.freeHead = i
		p.freeLen.Add(1)
		if p.mu != nil {
			p.mu.Release()
			p.sem.Release()
		}
		p.in.perf.free()
		return nil
	}

	if p.mu != nil {
		p.mu.Release()
	}
	return ErrNotOwned
}

// Info walks both lists and reports what it counted. In multi-threaded mode the
// walk happens under the mutex and may time out.
func (p *NodePool) Info() (Info, error) {
	if p.mu != nil {
		if err := p.mu.Acquire(p.in.lockTimeout); err != nil {
			p.in.timedOut("info")
			return Info{}, fmt.Errorf("%w: info: %w", ErrTimeout, err)
		}
		defer p.mu.Release()
	}
	free := p.walk(p.freeHead)
	busy := p.walk(p.busyHead)
	return Info{Total: uint32(free + busy), Free: uint32(free)}, nil
}

func (p *NodePool) walk(head int) int {
	n := 0
	for i := head; i != nilNode && n <= p.total; i = p.nodes[i].next {
		n++
	}
	return n
}

// counts is the lock-free occupancy view used for metrics.
func (p *NodePool) counts() Info {
	return Info{Total: uint32(p.total), Free: p.freeLen.Load()}
}

// Delete tears the pool down and closes the primitives created through the
// port. It fails with ErrOccupancy while any block is on the busy list.
func (p *NodePool) Delete() error {
	if p.mu != nil {
		if err := p.mu.Acquire(p.in.lockTimeout); err != nil {
			p.in.timedOut("delete")
			return fmt.Errorf("%w: delete: %w", ErrTimeout, err)
		}
	}
	if p.busyHead != nilNode {
		if p.mu != nil {
			p.mu.Release()
		}
		info := p.counts()
		p.in.logger.LogDelete(context.Background(), info, ErrOccupancy)
		return ErrOccupancy
	}
	info := p.counts()

	var errs []error
	if p.mu != nil {
		p.mu.Release()
		if err := p.mu.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%w: mutex: %w", ErrPort, err))
		}
		if err := p.sem.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%w: semaphore: %w", ErrPort, err))
		}
	}
	p.mu, p.sem = nil, nil
	p.nodes = nil
	p.total = 0
	p.freeHead = nilNode
	p.freeLen.Store(0)
	p.in.perf.reset()

	err := errors.Join(errs...)
	p.in.logger.LogDelete(context.Background(), info, err)
	return err
}

// Perf returns the pool's operation counters.
func (p *NodePool) Perf() Perf { return p.in.perf.snapshot() }

// Timeouts returns the number of lock acquisitions that timed out.
func (p *NodePool) Timeouts() uint32 { return p.in.perf.timeouts.Load() }

// Synchronized reports whether the pool was created with a port.
func (p *NodePool) Synchronized() bool { return p.mu != nil }

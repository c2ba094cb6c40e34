package blockpool

import "time"

// Allocator is the behaviour shared by both pool engines.
type Allocator interface {
	// Alloc returns a free block, waiting at most wait for a permit when a
	// permit hook or port is configured.
	Alloc(wait time.Duration) ([]byte, error)

	// TryAlloc is Alloc(NoWait).
	TryAlloc() ([]byte, error)

	// Free returns a block obtained from Alloc.
	Free(block []byte) error

	// Delete tears the pool down. It fails with ErrOccupancy while blocks are outstanding.
	Delete() error

	Perf() Perf
	Timeouts() uint32
}

var (
	_ Allocator = (*InlinePool)(nil)
	_ Allocator = (*NodePool)(nil)
)

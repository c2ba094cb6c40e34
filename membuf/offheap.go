package membuf

import (
	"github.com/hupe1980/blockpool/internal/mmap"
)

// OffHeap is a buffer backed by an anonymous memory mapping.
type OffHeap struct {
	m *mmap.Mapping
}

// MapAnon maps size bytes of zero-filled, page-aligned, read/write memory
// outside the Go heap. Close must be called once every pool placed on the
// buffer has been deleted.
func MapAnon(size int) (*OffHeap, error) {
	m, err := mmap.MapAnon(size)
	if err != nil {
		return nil, err
	}
	// Pools touch blocks in no particular order.
	_ = m.Advise(mmap.AccessRandom)
	return &OffHeap{m: m}, nil
}

// Bytes returns the mapped memory, or nil after Close.
func (o *OffHeap) Bytes() []byte {
	return o.m.Bytes()
}

// Size returns the mapping size in bytes.
func (o *OffHeap) Size() int {
	return o.m.Size()
}

// Close unmaps the memory. It is idempotent.
func (o *OffHeap) Close() error {
	return o.m.Close()
}

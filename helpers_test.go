package blockpool

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hupe1980/blockpool/membuf"
	"github.com/hupe1980/blockpool/syncport"
)

var errBusy = errors.New("stub lock busy")

// stubLock is a Lock/Permit whose Acquire can be made to fail.
type stubLock struct {
	fail     atomic.Bool
	acquires atomic.Int32
	releases atomic.Int32
}

func (l *stubLock) Acquire(time.Duration) error {
	l.acquires.Add(1)
	if l.fail.Load() {
		return errBusy
	}
	return nil
}

func (l *stubLock) Release() { l.releases.Add(1) }

type stubMutex struct {
	stubLock
	closed atomic.Bool
}

func (m *stubMutex) Close() error {
	m.closed.Store(true)
	return nil
}

// stubPort hands out preconfigured primitives, or fails.
type stubPort struct {
	sem    syncport.Semaphore
	mu     syncport.Mutex
	semErr error
	muErr  error
}

func (p *stubPort) NewSemaphore(int) (syncport.Semaphore, error) {
	if p.semErr != nil {
		return nil, p.semErr
	}
	return p.sem, nil
}

func (p *stubPort) NewMutex() (syncport.Mutex, error) {
	if p.muErr != nil {
		return nil, p.muErr
	}
	return p.mu, nil
}

func newInlineForTest(t testing.TB, bufLen, blockSize int, align Alignment, opts ...Option) *InlinePool {
	t.Helper()
	buf := membuf.Aligned(bufLen, 64)
	require.NotNil(t, buf)
	p, err := NewInline(buf, blockSize, align, opts...)
	require.NoError(t, err)
	return p
}

func newNodeForTest(t testing.TB, count, size int, opts ...Option) (*NodePool, []byte) {
	t.Helper()
	nodes := make([]Node, count)
	blocks := make([]byte, count*size)
	p, err := NewNodePool(nodes, blocks, count, size, opts...)
	require.NoError(t, err)
	return p, blocks
}

func allocAll(t testing.TB, a Allocator) [][]byte {
	t.Helper()
	var out [][]byte
	for {
		b, err := a.TryAlloc()
		if errors.Is(err, ErrNoBlock) {
			return out
		}
		require.NoError(t, err)
		out = append(out, b)
	}
}

func sameBlock(a, b []byte) bool {
	return addrOf(a) == addrOf(b)
}

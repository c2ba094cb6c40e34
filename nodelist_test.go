package blockpool

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNodePool_BindsBlocks(t *testing.T) {
	p, blocks := newNodeForTest(t, 4, 32)
	assert.False(t, p.Synchronized())

	info, err := p.Info()
	require.NoError(t, err)
	assert.Equal(t, Info{Total: 4, Free: 4}, info)

	got := allocAll(t, p)
	require.Len(t, got, 4)
	for _, b := range got {
		assert.Len(t, b, 32)
		assert.Equal(t, 32, cap(b))
		off := int(addrOf(b) - addrOf(blocks))
		assert.Zero(t, off%32)
		assert.Less(t, off, len(blocks))
	}
}

func TestNewNodePool_Errors(t *testing.T) {
	nodes := make([]Node, 4)
	blocks := make([]byte, 4*16)

	tests := []struct {
		name   string
		nodes  []Node
		blocks []byte
		count  int
		size   int
	}{
		{"nil nodes", nil, blocks, 4, 16},
		{"nil blocks", nodes, nil, 4, 16},
		{"zero count", nodes, blocks, 0, 16},
		{"zero size", nodes, blocks, 4, 0},
		{"too few nodes", nodes[:3], blocks, 4, 16},
		{"block buffer too small", nodes, blocks[:63], 4, 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewNodePool(tt.nodes, tt.blocks, tt.count, tt.size)
			assert.ErrorIs(t, err, ErrInvalidArgument)
			assert.Nil(t, p)
		})
	}
}

func TestNodePool_Exhaustion(t *testing.T) {
	p, _ := newNodeForTest(t, 8, 16)

	got := allocAll(t, p)
	require.Len(t, got, 8)

	seen := make(map[uintptr]bool)
	for _, b := range got {
		assert.False(t, seen[addrOf(b)], "block issued twice")
		seen[addrOf(b)] = true
	}

	_, err := p.TryAlloc()
	assert.ErrorIs(t, err, ErrNoBlock)
	info, err := p.Info()
	require.NoError(t, err)
	assert.Equal(t, Info{Total: 8, Free: 0}, info)
}

func TestNodePool_FreeUnlinksAnyPosition(t *testing.T) {
	p, _ := newNodeForTest(t, 3, 16)
	got := allocAll(t, p)
	require.Len(t, got, 3)

	// Busy list is newest first: middle, head, tail.
	for _, i := range []int{1, 2, 0} {
		require.NoError(t, p.Free(got[i]))
	}

	info, err := p.Info()
	require.NoError(t, err)
	assert.Equal(t, Info{Total: 3, Free: 3}, info)

	again := allocAll(t, p)
	assert.Len(t, again, 3)
}

func TestNodePool_FreeRejects(t *testing.T) {
	p, blocks := newNodeForTest(t, 4, 16)

	assert.ErrorIs(t, p.Free(blocks[:16]), ErrNotOwned, "nothing outstanding")

	held, err := p.TryAlloc()
	require.NoError(t, err)

	assert.ErrorIs(t, p.Free(nil), ErrInvalidArgument)
	assert.ErrorIs(t, p.Free(make([]byte, 16)), ErrNotOwned)
	assert.ErrorIs(t, p.Free(held[1:]), ErrNotOwned)

	info, err := p.Info()
	require.NoError(t, err)
	assert.Equal(t, Info{Total: 4, Free: 3}, info)

	require.NoError(t, p.Free(held))
	assert.ErrorIs(t, p.Free(held), ErrNotOwned, "double free")
}

func TestNodePool_RoundTrip(t *testing.T) {
	p, _ := newNodeForTest(t, 4, 16)

	a, err := p.TryAlloc()
	require.NoError(t, err)
	require.NoError(t, p.Free(a))

	info, err := p.Info()
	require.NoError(t, err)
	assert.Equal(t, Info{Total: 4, Free: 4}, info)
}

func TestNodePool_NeverTouchesBlocks(t *testing.T) {
	p, blocks := newNodeForTest(t, 6, 24)
	for i := range blocks {
		blocks[i] = 0xab
	}

	for round := 0; round < 3; round++ {
		got := allocAll(t, p)
		for i := len(got) - 1; i >= 0; i-- {
			require.NoError(t, p.Free(got[i]))
		}
	}

	assert.True(t, bytes.Equal(blocks, bytes.Repeat([]byte{0xab}, len(blocks))))
}

func TestNodePool_Delete(t *testing.T) {
	p, _ := newNodeForTest(t, 2, 16)

	b, err := p.TryAlloc()
	require.NoError(t, err)
	assert.ErrorIs(t, p.Delete(), ErrOccupancy)

	info, err := p.Info()
	require.NoError(t, err)
	assert.Equal(t, Info{Total: 2, Free: 1}, info)

	require.NoError(t, p.Free(b))
	require.NoError(t, p.Delete())

	info, err = p.Info()
	require.NoError(t, err)
	assert.Equal(t, Info{}, info)
	_, err = p.TryAlloc()
	assert.ErrorIs(t, err, ErrNoBlock)
}

func TestNodePool_PerfCounters(t *testing.T) {
	p, _ := newNodeForTest(t, 2, 16)

	got := allocAll(t, p)
	require.NoError(t, p.Free(got[0]))
	assert.ErrorIs(t, p.Free(got[0]), ErrNotOwned)

	assert.Equal(t, Perf{Allocs: 3, Frees: 1}, p.Perf())
	assert.Zero(t, p.Timeouts())
}

package blockpool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicMetricsCollector_Inline(t *testing.T) {
	mc := &BasicMetricsCollector{}
	p := newInlineForTest(t, 128, 16, Align8, WithMetricsCollector(mc))
	total := int64(p.Info().Total)

	blocks := allocAll(t, p)
	require.NoError(t, p.Free(blocks[0]))
	assert.ErrorIs(t, p.Free(blocks[0][2:]), ErrNotOwned)

	stats := mc.GetStats()
	assert.Equal(t, total+1, stats.AllocCount)
	assert.Equal(t, int64(1), stats.AllocErrors)
	assert.Equal(t, int64(2), stats.FreeCount)
	assert.Equal(t, int64(1), stats.FreeErrors)
	assert.Equal(t, total, stats.Total)
	assert.Equal(t, int64(1), stats.Free)
	assert.Zero(t, stats.MinFree)
}

func TestBasicMetricsCollector_NodePool(t *testing.T) {
	mc := &BasicMetricsCollector{}
	p, _ := newNodeForTest(t, 4, 16, WithMetricsCollector(mc))

	a, err := p.TryAlloc()
	require.NoError(t, err)
	b, err := p.TryAlloc()
	require.NoError(t, err)
	require.NoError(t, p.Free(a))
	require.NoError(t, p.Free(b))

	stats := mc.GetStats()
	assert.Equal(t, int64(2), stats.AllocCount)
	assert.Equal(t, int64(2), stats.FreeCount)
	assert.Zero(t, stats.AllocErrors+stats.FreeErrors)
	assert.Equal(t, int64(4), stats.Total)
	assert.Equal(t, int64(4), stats.Free)
	assert.Equal(t, int64(2), stats.MinFree)
}

func TestNoopMetricsCollector_DisablesTiming(t *testing.T) {
	p := newInlineForTest(t, 128, 16, Align8, WithMetricsCollector(nil))
	assert.False(t, p.in.timed)

	p = newInlineForTest(t, 128, 16, Align8, WithMetricsCollector(&BasicMetricsCollector{}))
	assert.True(t, p.in.timed)
}

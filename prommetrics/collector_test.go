package prommetrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/blockpool"
	"github.com/hupe1980/blockpool/membuf"
)

func TestCollector_InlinePool(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	c, err := New(reg, Opts{Namespace: "test"})
	require.NoError(t, err)

	pool, err := blockpool.NewInline(membuf.Aligned(128, 8), 16, blockpool.Align8,
		blockpool.WithMetricsCollector(c.Pool("rx")),
	)
	require.NoError(t, err)
	total := float64(pool.Info().Total)

	var blocks [][]byte
	for {
		b, err := pool.TryAlloc()
		if err != nil {
			require.ErrorIs(t, err, blockpool.ErrNoBlock)
			break
		}
		blocks = append(blocks, b)
	}
	require.NoError(t, pool.Free(blocks[0]))
	require.ErrorIs(t, pool.Free(make([]byte, 16)), blockpool.ErrOutOfRange)

	assert.Equal(t, total, testutil.ToFloat64(c.ops.WithLabelValues("rx", "alloc", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ops.WithLabelValues("rx", "alloc", "no_block")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ops.WithLabelValues("rx", "free", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ops.WithLabelValues("rx", "free", "out_of_range")))

	assert.Equal(t, total, testutil.ToFloat64(c.capacity.WithLabelValues("rx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.blocks.WithLabelValues("rx", "free")))
	assert.Equal(t, total-1, testutil.ToFloat64(c.blocks.WithLabelValues("rx", "busy")))

	assert.Equal(t, 2, testutil.CollectAndCount(c.latency))
}

func TestCollector_Forget(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := New(reg, Opts{})
	require.NoError(t, err)

	a := c.Pool("a")
	b := c.Pool("b")
	a.RecordOccupancy(4, 4)
	b.RecordOccupancy(8, 2)
	a.RecordAlloc(0, nil)

	c.Forget("a")

	assert.Equal(t, 2, testutil.CollectAndCount(c.blocks))
	assert.Equal(t, 1, testutil.CollectAndCount(c.capacity))
	assert.Equal(t, 0, testutil.CollectAndCount(c.ops))
	assert.Equal(t, 6.0, testutil.ToFloat64(c.blocks.WithLabelValues("b", "busy")))
}

func TestNew_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg, Opts{})
	require.NoError(t, err)

	_, err = New(reg, Opts{})
	assert.Error(t, err)
}

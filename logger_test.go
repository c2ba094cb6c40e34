package blockpool

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeRecords(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	dec := json.NewDecoder(buf)
	for dec.More() {
		var rec map[string]any
		require.NoError(t, dec.Decode(&rec))
		out = append(out, rec)
	}
	return out
}

func countMsg(recs []map[string]any, msg string) int {
	n := 0
	for _, r := range recs {
		if r["msg"] == msg {
			n++
		}
	}
	return n
}

func TestLogger_Lifecycle(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	p := newInlineForTest(t, 128, 16, Align8, WithLogger(logger), WithName("rx"))
	b, err := p.TryAlloc()
	require.NoError(t, err)
	require.ErrorIs(t, p.Delete(), ErrOccupancy)
	require.NoError(t, p.Free(b))
	require.NoError(t, p.Delete())

	recs := decodeRecords(t, &buf)
	require.Len(t, recs, 3)

	assert.Equal(t, "pool created", recs[0]["msg"])
	assert.Equal(t, "rx", recs[0]["pool"])
	assert.Equal(t, "inline", recs[0]["engine"])

	assert.Equal(t, "pool delete refused", recs[1]["msg"])
	assert.Equal(t, "WARN", recs[1]["level"])
	assert.Equal(t, "occupancy", recs[1]["kind"])

	assert.Equal(t, "pool deleted", recs[2]["msg"])
}

func TestLogger_CreateFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&buf, nil))

	_, err := NewNodePool(nil, nil, 1, 1, WithLogger(logger))
	require.ErrorIs(t, err, ErrInvalidArgument)

	recs := decodeRecords(t, &buf)
	require.Len(t, recs, 1)
	assert.Equal(t, "pool create failed", recs[0]["msg"])
	assert.Equal(t, "nodelist", recs[0]["engine"])
	assert.Equal(t, "invalid_argument", recs[0]["kind"])
}

func TestLogger_TimeoutSampling(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&buf, nil))

	p := newInlineForTest(t, 128, 16, Align8, WithLogger(logger), WithTimeoutLogRate(time.Hour))
	lock := &stubLock{}
	lock.fail.Store(true)
	require.NoError(t, p.SetLock(lock))

	for i := 0; i < 5; i++ {
		_, err := p.TryAlloc()
		require.ErrorIs(t, err, ErrTimeout)
	}
	assert.Equal(t, uint32(5), p.Timeouts())

	recs := decodeRecords(t, &buf)
	assert.Equal(t, 1, countMsg(recs, "pool lock timeout"))
}

func TestLogger_TimeoutSamplingDisabled(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&buf, nil))

	p := newInlineForTest(t, 128, 16, Align8, WithLogger(logger), WithTimeoutLogRate(0))
	lock := &stubLock{}
	lock.fail.Store(true)
	require.NoError(t, p.SetLock(lock))

	for i := 0; i < 3; i++ {
		_, _ = p.TryAlloc()
	}

	recs := decodeRecords(t, &buf)
	assert.Equal(t, 3, countMsg(recs, "pool lock timeout"))
}

func TestNoopLogger(t *testing.T) {
	logger := NoopLogger()
	assert.False(t, logger.Enabled(t.Context(), slog.LevelError))
}

package blockpool

import (
	"context"
	"log/slog"
	"os"
	"time"

	"golang.org/x/time/rate"
)

// DefaultTimeoutLogInterval is the minimum spacing between sampled timeout warnings.
const DefaultTimeoutLogInterval = time.Second

// Logger wraps slog.Logger with blockpool-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger

	// timeouts samples lock-timeout warnings so a contended pool cannot flood the log.
	timeouts *rate.Limiter
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return newLogger(slog.New(handler))
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return newLogger(slog.New(handler))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return newLogger(slog.New(handler))
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return newLogger(slog.New(handler))
}

func newLogger(l *slog.Logger) *Logger {
	return &Logger{
		Logger:   l,
		timeouts: rate.NewLimiter(rate.Every(DefaultTimeoutLogInterval), 1),
	}
}

// WithTimeoutSampling returns a copy of the logger that emits at most one
// timeout warning per interval. A non-positive interval disables sampling.
func (l *Logger) WithTimeoutSampling(interval time.Duration) *Logger {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Logger{
		Logger:   l.Logger,
		timeouts: rate.NewLimiter(limit, 1),
	}
}

// WithPool adds the pool name and engine fields to the logger.
func (l *Logger) WithPool(name, engine string) *Logger {
	return &Logger{
		Logger:   l.Logger.With("pool", name, "engine", engine),
		timeouts: l.timeouts,
	}
}

// LogCreate logs pool creation.
func (l *Logger) LogCreate(ctx context.Context, total, blockSize int, err error) {
	if err != nil {
		l.WarnContext(ctx, "pool create failed",
			"block_size", blockSize,
			"kind", KindOf(err).String(),
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "pool created",
		"total", total,
		"block_size", blockSize,
	)
}

// LogDelete logs a pool delete attempt.
func (l *Logger) LogDelete(ctx context.Context, info Info, err error) {
	if err != nil {
		l.WarnContext(ctx, "pool delete refused",
			"total", info.Total,
			"free", info.Free,
			"kind", KindOf(err).String(),
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "pool deleted",
		"total", info.Total,
	)
}

// LogTimeout logs a lock timeout. Output is sampled.
func (l *Logger) LogTimeout(ctx context.Context, op string, timeout time.Duration, count uint32) {
	if l.timeouts != nil && !l.timeouts.Allow() {
		return
	}
	l.WarnContext(ctx, "pool lock timeout",
		"op", op,
		"timeout", timeout,
		"timeouts_total", count,
	)
}

// LogRejectedFree logs a free that the pool refused.
func (l *Logger) LogRejectedFree(ctx context.Context, err error) {
	l.DebugContext(ctx, "free rejected",
		"kind", KindOf(err).String(),
		"error", err,
	)
}

package songsight

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with engine-specific helpers so that every
// operation logs with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	}))
}

// LogRebuild logs an index rebuild.
func (l *Logger) LogRebuild(ctx context.Context, tracks int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "rebuild failed",
			"tracks", tracks,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "rebuild completed",
		"tracks", tracks,
		"duration", duration,
	)
}

// LogSimilar logs a similarity query.
func (l *Logger) LogSimilar(ctx context.Context, seedID string, num, results int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "similar failed",
			"seed", seedID,
			"num", num,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "similar completed",
		"seed", seedID,
		"num", num,
		"results", results,
	)
}

// LogRange logs a range filter query.
func (l *Logger) LogRange(ctx context.Context, feature string, results int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "range filter failed",
			"feature", feature,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "range filter completed",
		"feature", feature,
		"results", results,
	)
}

// LogSample logs a ranked random sample.
func (l *Logger) LogSample(ctx context.Context, feature string, results int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "sample failed",
			"feature", feature,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "sample completed",
		"feature", feature,
		"results", results,
	)
}

// LogPrune logs a snapshot retention pass.
func (l *Logger) LogPrune(ctx context.Context, keep, deleted int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot prune failed",
			"keep", keep,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "snapshot prune completed",
		"keep", keep,
		"deleted", deleted,
	)
}

// LogSnapshot logs a snapshot save or load.
func (l *Logger) LogSnapshot(ctx context.Context, op, path string, entries int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot "+op+" failed",
			"path", path,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "snapshot "+op+" completed",
		"path", path,
		"entries", entries,
	)
}

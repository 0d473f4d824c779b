package logger

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"time"
)

// Interface is the structured logger handed to components. Keys and values
// alternate as in slog.
type Interface interface {
	Debugw(msg string, keysAndValues ...any)
	Infow(msg string, keysAndValues ...any)
	Warnw(msg string, keysAndValues ...any)
	Errorw(msg string, keysAndValues ...any)

	With(keysAndValues ...any) Interface
	// Named appends name to the logger name, dot separated.
	Named(name string) Interface
}

type slogLogger struct {
	// base carries every With attribute but not the name.
	base   *slog.Logger
	logger *slog.Logger
	name   string
}

// NewLogger wraps the process logger set up by Init.
func NewLogger() Interface {
	return NewLoggerWithSlog(Get())
}

func NewLoggerWithSlog(l *slog.Logger) Interface {
	return &slogLogger{base: l, logger: l}
}

// NewDiscardLogger returns a logger that drops everything.
func NewDiscardLogger() Interface {
	return NewLoggerWithSlog(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func (l *slogLogger) Debugw(msg string, keysAndValues ...any) {
	l.log(slog.LevelDebug, msg, keysAndValues)
}

func (l *slogLogger) Infow(msg string, keysAndValues ...any) {
	l.log(slog.LevelInfo, msg, keysAndValues)
}

func (l *slogLogger) Warnw(msg string, keysAndValues ...any) {
	l.log(slog.LevelWarn, msg, keysAndValues)
}

func (l *slogLogger) Errorw(msg string, keysAndValues ...any) {
	l.log(slog.LevelError, msg, keysAndValues)
}

func (l *slogLogger) With(keysAndValues ...any) Interface {
	return &slogLogger{
		base:   l.base.With(keysAndValues...),
		logger: l.logger.With(keysAndValues...),
		name:   l.name,
	}
}

// Named attaches the composed name to base, so nested names replace rather
// than repeat the attribute.
func (l *slogLogger) Named(name string) Interface {
	full := name
	if l.name != "" {
		full = l.name + "." + name
	}
	return &slogLogger{
		base:   l.base,
		logger: l.base.With("logger", full),
		name:   full,
	}
}

// log records the caller of the exported method as the source, not this file.
func (l *slogLogger) log(level slog.Level, msg string, args []any) {
	ctx := context.Background()
	if !l.logger.Enabled(ctx, level) {
		return
	}
	var pcs [1]uintptr
	runtime.Callers(3, pcs[:]) // runtime.Callers, log, the level method
	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	r.Add(args...)
	_ = l.logger.Handler().Handle(ctx, r)
}

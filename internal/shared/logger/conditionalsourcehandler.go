package logger

import (
	"context"
	"log/slog"
	"runtime"
)

// conditionalSourceHandler attaches the caller location to records at or
// above a threshold. The wrapped handler must not set AddSource itself.
type conditionalSourceHandler struct {
	handler   slog.Handler
	threshold slog.Leveler
}

// NewConditionalSourceHandler wraps handler so that records at threshold or
// above carry a source attribute. Warn keeps routine lines short while every
// failure points at its call site; Debug sources every line.
func NewConditionalSourceHandler(handler slog.Handler, threshold slog.Leveler) slog.Handler {
	return &conditionalSourceHandler{handler: handler, threshold: threshold}
}

func (h *conditionalSourceHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.PC != 0 && r.Level >= h.threshold.Level() {
		f, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		r.AddAttrs(slog.Any(slog.SourceKey, &slog.Source{
			Function: f.Function,
			File:     f.File,
			Line:     f.Line,
		}))
	}
	return h.handler.Handle(ctx, r)
}

func (h *conditionalSourceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &conditionalSourceHandler{handler: h.handler.WithAttrs(attrs), threshold: h.threshold}
}

func (h *conditionalSourceHandler) WithGroup(name string) slog.Handler {
	return &conditionalSourceHandler{handler: h.handler.WithGroup(name), threshold: h.threshold}
}

func (h *conditionalSourceHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

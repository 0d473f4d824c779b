package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConditionalSourceHandler(t *testing.T) {
	tests := []struct {
		name       string
		level      slog.Level
		threshold  slog.Level
		wantSource bool
	}{
		{"info below warn threshold", slog.LevelInfo, slog.LevelWarn, false},
		{"warn at threshold", slog.LevelWarn, slog.LevelWarn, true},
		{"error above threshold", slog.LevelError, slog.LevelWarn, true},
		{"debug below threshold", slog.LevelDebug, slog.LevelWarn, false},
		{"info with debug threshold", slog.LevelInfo, slog.LevelDebug, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			base := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
			log := slog.New(NewConditionalSourceHandler(base, tt.threshold))

			log.Log(context.Background(), tt.level, "regime changed")

			output := buf.String()
			assert.Equal(t, tt.wantSource, bytes.Contains(buf.Bytes(), []byte("source=")), output)
			if tt.wantSource {
				assert.Contains(t, output, "conditional_source_handler_test.go")
			}
		})
	}
}

func TestConditionalSourceHandler_KeepsAttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewConditionalSourceHandler(slog.NewTextHandler(&buf, nil), slog.LevelError)).
		With("component", "controller").
		WithGroup("snapshot")

	log.Info("discarded", "kind", "vessels")

	output := buf.String()
	assert.NotContains(t, output, "source=")
	assert.Contains(t, output, "component=controller")
	assert.Contains(t, output, "snapshot.kind=vessels")
}

func TestConditionalSourceHandler_FollowsLevelVar(t *testing.T) {
	var buf bytes.Buffer
	threshold := new(slog.LevelVar)
	threshold.Set(slog.LevelError)
	log := slog.New(NewConditionalSourceHandler(slog.NewTextHandler(&buf, nil), threshold))

	log.Warn("first")
	assert.NotContains(t, buf.String(), "source=")

	threshold.Set(slog.LevelWarn)
	buf.Reset()
	log.Warn("second")
	assert.Contains(t, buf.String(), "source=")
}

func TestInterface_SourcePointsAtCaller(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerWithSlog(slog.New(NewConditionalSourceHandler(slog.NewTextHandler(&buf, nil), slog.LevelWarn)))

	log.Named("test").Warnw("subscription failed")

	assert.Contains(t, buf.String(), "conditional_source_handler_test.go")
	assert.NotContains(t, buf.String(), "interface.go")
}

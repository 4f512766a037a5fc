package logger_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/phrazzld/bazaar-api/internal/config"
	"github.com/phrazzld/bazaar-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"", slog.LevelInfo, false},
		{"verbose", slog.LevelInfo, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := logger.ParseLevel(tc.name)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSetupWithWriter(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	buf := &logger.TestLogBuffer{}
	l, err := logger.SetupWithWriter(config.ServerConfig{LogLevel: "warn"}, buf)
	require.NoError(t, err)
	require.NotNil(t, l)

	l.Info("dropped")
	slog.Warn("kept", "component", "test")

	entries := buf.Entries()
	require.Len(t, entries, 1, "info must be filtered at warn level; default logger must be replaced")
	assert.Equal(t, "kept", entries[0]["msg"])
	assert.Equal(t, "test", entries[0]["component"])
}

func TestSetupRejectsUnknownLevel(t *testing.T) {
	_, err := logger.SetupWithWriter(config.ServerConfig{LogLevel: "loud"}, &logger.TestLogBuffer{})
	assert.Error(t, err)
}

func TestContextLogger(t *testing.T) {
	buf, _ := logger.CaptureDefault(t)

	t.Run("falls back to default", func(t *testing.T) {
		assert.Same(t, slog.Default(), logger.FromContext(context.Background()))
	})

	t.Run("returns stored logger", func(t *testing.T) {
		l := slog.Default().With("trace_id", "abc")
		ctx := logger.WithLogger(context.Background(), l)

		logger.FromContext(ctx).Info("hello")

		entries := buf.Entries()
		require.NotEmpty(t, entries)
		assert.Equal(t, "abc", entries[len(entries)-1]["trace_id"])
	})

	t.Run("explicit fallback", func(t *testing.T) {
		fallback := slog.Default().With("component", "x")
		assert.Same(t, fallback, logger.FromContextOrDefault(context.Background(), fallback))
	})
}

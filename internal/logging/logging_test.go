package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/chanavg"
	"github.com/gogpu/chanavg/internal/config"
)

func restoreDefaults(t *testing.T) {
	t.Helper()

	prev := slog.Default()
	t.Cleanup(func() {
		slog.SetDefault(prev)
		chanavg.SetLogger(nil)
	})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestSetupWithWriter_JSON(t *testing.T) {
	restoreDefaults(t)

	var buf bytes.Buffer
	cfg := config.Default()
	cfg.LogFormat = config.LogFormatJSON

	logger := SetupWithWriter(cfg, &buf)
	logger.Info("hello", "pixels", 4)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.InDelta(t, 4.0, rec["pixels"], 0)
}

func TestSetupWithWriter_Text(t *testing.T) {
	restoreDefaults(t)

	var buf bytes.Buffer
	cfg := config.Default()
	cfg.LogFormat = config.LogFormatText

	SetupWithWriter(cfg, &buf).Info("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}

func TestSetupWithWriter_Quiet(t *testing.T) {
	restoreDefaults(t)

	var buf bytes.Buffer
	cfg := config.Default()
	cfg.LogFormat = config.LogFormatText
	cfg.LogLevel = config.LogLevelDebug
	cfg.Quiet = true

	logger := SetupWithWriter(cfg, &buf)
	logger.Warn("suppressed")
	logger.Error("shown")

	assert.NotContains(t, buf.String(), "suppressed")
	assert.Contains(t, buf.String(), "shown")
}

func TestSetupWithWriter_InstallsLibraryLogger(t *testing.T) {
	restoreDefaults(t)

	var buf bytes.Buffer
	cfg := config.Default()
	cfg.LogFormat = config.LogFormatText

	logger := SetupWithWriter(cfg, &buf)
	assert.Same(t, logger, chanavg.Logger())
	assert.Same(t, logger, slog.Default())
}

func TestResolveFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, config.LogFormatText, ResolveFormat(config.LogFormatText, &buf))
	assert.Equal(t, config.LogFormatJSON, ResolveFormat(config.LogFormatAuto, &buf))

	// A regular file is not a terminal.
	f, err := os.Create(filepath.Join(t.TempDir(), "log"))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, config.LogFormatJSON, ResolveFormat(config.LogFormatAuto, f))
}

func TestContext(t *testing.T) {
	assert.Same(t, slog.Default(), FromContext(context.Background()))

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ctx := NewContext(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx))
}

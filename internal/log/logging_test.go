package log

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"trace": LevelTrace,
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"":      slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"loud":  slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNewHandler(t *testing.T) {
	tests := []struct {
		format string
		check  func(t *testing.T, out string)
	}{
		{"auto", func(t *testing.T, out string) { assert.True(t, strings.HasPrefix(out, "{"), out) }},
		{"json", func(t *testing.T, out string) { assert.Contains(t, out, `"msg":"hello"`) }},
		{"text", func(t *testing.T, out string) { assert.Contains(t, out, "level=INFO msg=hello") }},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			slog.New(NewHandler(&buf, tt.format, nil)).Info("hello")
			tt.check(t, buf.String())
		})
	}
}

func TestSplitByLevel(t *testing.T) {
	var out, errs bytes.Buffer
	h := MultiHandler{hs: []slog.Handler{
		LevelFilter{pass: func(l slog.Level) bool { return l < slog.LevelError }, h: NewHandler(&out, "text", &slog.HandlerOptions{Level: LevelTrace})},
		LevelFilter{pass: func(l slog.Level) bool { return l >= slog.LevelError }, h: NewHandler(&errs, "text", nil)},
	}}
	logger := slog.New(h).With("node", "TestSlave")
	logger.Log(context.Background(), LevelTrace, "verbose")
	logger.Info("progress")
	logger.Error("failed")

	assert.Contains(t, out.String(), "msg=verbose")
	assert.Contains(t, out.String(), "msg=progress node=TestSlave")
	assert.NotContains(t, out.String(), "failed")
	assert.Contains(t, errs.String(), "msg=failed node=TestSlave")
	assert.NotContains(t, errs.String(), "progress")
}

func TestSetupLoggerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "objdictgen.log")
	logger, closers, err := SetupLogger("debug", path, "json")
	require.NoError(t, err)
	require.Len(t, closers, 1)

	logger.Debug("Compiled entry", "index", "0x1200")
	logger.Log(context.Background(), LevelTrace, "dropped")
	for _, c := range closers {
		require.NoError(t, c.Close())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"Compiled entry","index":"0x1200"`)
	assert.NotContains(t, string(data), "dropped")
}

func TestRawLogger(t *testing.T) {
	var buf bytes.Buffer
	raw := NewRaw(&buf)
	raw.Log("node.c", []byte("int x;"))
	raw.Log("node.h", []byte("int y;\n"))

	lines := strings.Split(buf.String(), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasSuffix(lines[0], " node.c: 6 bytes"), lines[0])
	assert.Equal(t, "int x;", lines[1])
	assert.True(t, strings.HasSuffix(lines[2], " node.h: 7 bytes"), lines[2])
	assert.Equal(t, "int y;", lines[3])
	assert.Empty(t, lines[4])

	assert.NotPanics(t, func() { NewRaw(nil).Log("node.c", []byte("x")) })
}

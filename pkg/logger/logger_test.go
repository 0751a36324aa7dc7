package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInit_DisabledDiscards(t *testing.T) {
	t.Cleanup(func() { _ = Init(Options{}) })

	require.NoError(t, Init(Options{Enabled: false}))
	require.False(t, Enabled(slog.LevelError))
}

func TestInit_TextWriter(t *testing.T) {
	t.Cleanup(func() { _ = Init(Options{}) })

	var buf bytes.Buffer
	require.NoError(t, Init(Options{Enabled: true, Writer: &buf, Level: slog.LevelDebug}))
	require.True(t, Enabled(slog.LevelDebug))

	Debug("split", "pivot", 3)
	require.Contains(t, buf.String(), "msg=split")
	require.Contains(t, buf.String(), "pivot=3")
}

func TestInit_JSONWriter(t *testing.T) {
	t.Cleanup(func() { _ = Init(Options{}) })

	var buf bytes.Buffer
	require.NoError(t, Init(Options{Enabled: true, Writer: &buf, JSON: true}))

	Debug("hidden")
	require.Empty(t, buf.String(), "default level is info")

	Warn("busy", "op", "insert")
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	require.Equal(t, "busy", rec["msg"])
	require.Equal(t, "insert", rec["op"])
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{" warn ", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"1", slog.LevelDebug, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in     string
		want   slog.Level
		wantOK bool
	}{
		{"debug", slog.LevelDebug, true},
		{" INFO ", slog.LevelInfo, true},
		{"", slog.LevelInfo, true},
		{"warning", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"verbose", slog.LevelInfo, false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseLevel(%q) = %v, %t; want %v, %t", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestInitLoggerWithWriter(t *testing.T) {
	prev := L
	t.Cleanup(func() { L = prev; slog.SetDefault(prev) })

	var buf bytes.Buffer
	InitLoggerWithWriter("warn", &buf)
	L.Info("dropped")
	L.Warn("kept", "key", "value")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected exactly one JSON entry, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "kept" || entry["key"] != "value" {
		t.Errorf("entry = %v", entry)
	}
}

func TestFromContext(t *testing.T) {
	if FromContext(context.Background()) != L {
		t.Error("empty context should yield the global logger")
	}
	l := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	if FromContext(WithLogger(context.Background(), l)) != l {
		t.Error("context logger not returned")
	}
}

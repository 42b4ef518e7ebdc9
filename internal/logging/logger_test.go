package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"

	"queuewatch/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zapcore.Level
	}{
		{"DEBUG", zapcore.DebugLevel},
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{"info", zapcore.InfoLevel},
		{"WARN", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"ERROR", zapcore.ErrorLevel},
		{"error", zapcore.ErrorLevel},
		{"unknown", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		got := ParseLevel(tt.input)
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queuewatch.log")
	l, err := New(config.LogConfig{Level: "warn", Encoding: "json", File: path})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	l.Infof("suppressed %d", 1)
	l.Warnf("capture on %s restarted", "ens7")
	l.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	out := string(data)
	if strings.Contains(out, "suppressed") {
		t.Error("info message written at warn level")
	}
	if !strings.Contains(out, "capture on ens7 restarted") {
		t.Errorf("warn message missing from log: %q", out)
	}
}

func TestNewRejectsUnknownEncoding(t *testing.T) {
	if _, err := New(config.LogConfig{Encoding: "xml"}); err == nil {
		t.Error("expected error for unknown encoding")
	}
}

func TestDiscard(t *testing.T) {
	l := Discard()
	if l == nil {
		t.Fatal("Discard() returned nil")
	}
	// Should not panic at any level.
	l.Debugf("test debug %d", 1)
	l.Infof("test info %s", "msg")
	l.Warn("test warn")
	l.Error("test error")
}

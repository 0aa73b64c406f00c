package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: "json", Component: ComponentBot, Output: &buf})

	logger.Debug("hidden")
	logger.Info("Command handled", FieldCommand, "tabung")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("Expected 1 line (debug filtered), got %d: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("Output is not JSON: %v", err)
	}
	if entry[FieldComponent] != ComponentBot || entry[FieldCommand] != "tabung" {
		t.Errorf("Unexpected entry: %v", entry)
	}
}

func TestNew_TintFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Format: "tint", Output: &buf})
	logger.Debug("Colored output")

	if !strings.Contains(buf.String(), "Colored output") {
		t.Errorf("Expected message in tint output, got %q", buf.String())
	}
}

func TestContextLogger(t *testing.T) {
	if l := FromContext(context.Background()); l.Component() != "unknown" {
		t.Errorf("Expected fallback logger, got component %q", l.Component())
	}

	logger := New(Config{Format: "text", Component: ComponentHTTP, Output: &bytes.Buffer{}})
	ctx := WithContext(context.Background(), logger)
	if FromContext(ctx) != logger {
		t.Error("Expected stored logger back")
	}

	a, b := NewRequestID(), NewRequestID()
	if a == b || len(a) != 36 {
		t.Errorf("Unexpected request ids %q, %q", a, b)
	}
}

package avakit

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LogLevelDebug},
		{"DEBUG", LogLevelDebug},
		{"info", LogLevelInfo},
		{"warn", LogLevelWarn},
		{"warning", LogLevelWarn},
		{"ERROR", LogLevelError},
		{"off", LogLevelOff},
		{"", LogLevelInfo},
		{"bogus", LogLevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLogLevel(tt.in); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(LogLevelWarn)
	l.SetOutput(&buf)

	l.Debug("debug_event", nil)
	l.Info("info_event", nil)
	l.Warn("warn_event", map[string]any{"session_id": "s1"})
	l.Error("error_event", nil)

	out := buf.String()
	if strings.Contains(out, "debug_event") || strings.Contains(out, "info_event") {
		t.Errorf("sub-level messages leaked: %q", out)
	}
	if !strings.Contains(out, "warn_event") || !strings.Contains(out, "error_event") {
		t.Errorf("expected messages missing: %q", out)
	}
	if !strings.Contains(out, "session_id=s1") {
		t.Errorf("fields not rendered: %q", out)
	}
}

func TestLoggerOff(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(LogLevelOff)
	l.SetOutput(&buf)

	l.Error("error_event", nil)
	if buf.Len() != 0 {
		t.Errorf("off logger wrote: %q", buf.String())
	}
}

func TestLogSinkPrecedence(t *testing.T) {
	var plain []string
	var buf bytes.Buffer
	structured := NewLogger(LogLevelDebug)
	structured.SetOutput(&buf)

	sink := newLogSink(Config{
		Logger:           func(event string, fields map[string]any) { plain = append(plain, event) },
		StructuredLogger: structured,
	})

	sink.info("some_event", nil)
	if len(plain) != 0 {
		t.Error("plain logger called despite structured logger being set")
	}
	if !strings.Contains(buf.String(), "some_event") {
		t.Error("structured logger not called")
	}
}

func TestLogSinkPlainPrefixes(t *testing.T) {
	var events []string
	sink := newLogSink(Config{
		Logger: func(event string, fields map[string]any) { events = append(events, event) },
	})

	sink.info("a", nil)
	sink.warn("b", nil)
	sink.error("c", nil)

	want := []string{"a", "WARN: b", "ERROR: c"}
	if len(events) != 3 {
		t.Fatalf("events = %v", events)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("event %d = %q, want %q", i, events[i], want[i])
		}
	}
}

func TestLogSinkNilIsSafe(t *testing.T) {
	sink := newLogSink(Config{})
	sink.info("a", nil)
	sink.warn("b", map[string]any{"k": "v"})
	sink.error("c", nil)
}

package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func newBufferLogger(t *testing.T, level, format string) (Logger, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer
	l, err := New(Config{Level: level, Format: format, Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return l, &buf
}

func TestNewJSONOutput(t *testing.T) {
	l, buf := newBufferLogger(t, "info", "json")

	l.Info("cart created", "cart_id", "cart-01hqv3nzxw5e8tkfyrbp2m7s9d")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["msg"] != "cart created" {
		t.Errorf("msg = %v, want cart created", entry["msg"])
	}
	if entry["cart_id"] != "cart-01hqv3nzxw5e8tkfyrbp2m7s9d" {
		t.Errorf("cart_id = %v, want the full cart ID", entry["cart_id"])
	}
}

func TestNewTextOutput(t *testing.T) {
	l, buf := newBufferLogger(t, "info", "text")

	l.Info("sweep finished", "deleted", 3)
	if !strings.Contains(buf.String(), "sweep finished") {
		t.Errorf("text output %q missing message", buf.String())
	}
}

func TestLevelFiltering(t *testing.T) {
	l, buf := newBufferLogger(t, "warn", "json")

	l.Debug("dropped")
	l.Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("below-level output = %q, want none", buf.String())
	}

	l.Warn("kept")
	if buf.Len() == 0 {
		t.Error("warn output missing")
	}
}

func TestSetLevel(t *testing.T) {
	l, buf := newBufferLogger(t, "info", "json")

	l.Debug("dropped")
	if buf.Len() != 0 {
		t.Fatalf("debug output before SetLevel = %q", buf.String())
	}

	SetLevel("debug")
	defer SetLevel("info")

	if GetLevel() != "debug" {
		t.Errorf("GetLevel() = %q, want debug", GetLevel())
	}
	l.Debug("kept")
	if buf.Len() == 0 {
		t.Error("debug output missing after SetLevel(debug)")
	}
}

func TestWith(t *testing.T) {
	l, buf := newBufferLogger(t, "info", "json")

	l.With("component", "sweeper").Info("run complete")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["component"] != "sweeper" {
		t.Errorf("component = %v, want sweeper", entry["component"])
	}
}

func TestDefaultLogger(t *testing.T) {
	if Default() == nil {
		t.Fatal("Default() returned nil")
	}

	l, _ := newBufferLogger(t, "info", "json")
	prev := Default()
	SetDefault(l)
	defer SetDefault(prev)

	if Default() != l {
		t.Error("SetDefault did not replace the default logger")
	}
}

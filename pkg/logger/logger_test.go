package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewWithConfig(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&Config{Level: DebugLevel, Format: JSONFormat, Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	log.WithField("key", "value").Info("hello")

	out := buf.String()
	if !strings.Contains(out, `"key":"value"`) || !strings.Contains(out, "hello") {
		t.Errorf("unexpected JSON output: %s", out)
	}
}

func TestNewInvalidLevel(t *testing.T) {
	if _, err := New(&Config{Level: "loud"}); err == nil {
		t.Error("expected error for invalid level")
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&Config{Level: WarnLevel, Format: TextFormat, Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	log.Info("quiet")
	log.Warn("loud")

	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Error("info message leaked through warn level")
	}
	if !strings.Contains(out, "loud") {
		t.Error("warn message missing")
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&Config{Level: InfoLevel, Format: JSONFormat, Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	log.WithComponent("reconciler").Info("run")
	if !strings.Contains(buf.String(), `"component":"reconciler"`) {
		t.Errorf("component field missing: %s", buf.String())
	}
}

func TestGlobalLogger(t *testing.T) {
	original := GetGlobalLogger()
	defer SetGlobalLogger(original)

	var buf bytes.Buffer
	replacement, err := New(&Config{Level: InfoLevel, Format: JSONFormat, Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	SetGlobalLogger(replacement)

	WithComponent("test").Info("via global")
	if !strings.Contains(buf.String(), "via global") {
		t.Errorf("global logger not replaced: %s", buf.String())
	}
}

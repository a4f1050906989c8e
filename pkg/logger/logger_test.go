package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLevels(t *testing.T) {
	var buf bytes.Buffer
	log := New("warn", &buf)

	log.Info("should be suppressed")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be suppressed at warn level, got %q", buf.String())
	}

	log.Warn("visible", "key", "value")
	if !strings.Contains(buf.String(), `"msg":"visible"`) {
		t.Fatalf("expected JSON warn record, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), `"key":"value"`) {
		t.Fatalf("expected attribute in record, got %q", buf.String())
	}
}

func TestNewTextUnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := NewText("bogus", &buf)

	log.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected debug suppressed at default info level, got %q", buf.String())
	}

	log.Info("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("expected info record, got %q", buf.String())
	}
}

func TestSetDefault(t *testing.T) {
	var buf bytes.Buffer
	old := Default
	defer SetDefault(old)

	SetDefault(New("debug", &buf))
	Debug("through default", "n", 1)
	if !strings.Contains(buf.String(), "through default") {
		t.Fatalf("expected record through package default, got %q", buf.String())
	}
}

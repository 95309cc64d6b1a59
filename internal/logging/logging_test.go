package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestPreInitLoggerUsesConfiguredHandler(t *testing.T) {
	logger := L("photographer")

	var buf bytes.Buffer
	Init("text", "info", &buf)

	logger.Info("frame saved", "tc", 42)

	out := buf.String()
	if strings.Contains(out, `msg="INFO frame saved`) {
		t.Fatalf("unexpected nested severity prefix in message: %s", out)
	}
	if !strings.Contains(out, `msg="frame saved"`) {
		t.Fatalf("expected plain frame saved message, got: %s", out)
	}
	if !strings.Contains(out, "component=photographer") {
		t.Fatalf("expected component field, got: %s", out)
	}
	if !strings.Contains(out, "tc=42") {
		t.Fatalf("expected tc field, got: %s", out)
	}
}

func TestPreInitLoggerRespectsConfiguredLevel(t *testing.T) {
	logger := L("photographer")

	var buf bytes.Buffer
	Init("text", "warn", &buf)

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info log should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, "shown") {
		t.Fatalf("warn log should be emitted: %s", out)
	}
}

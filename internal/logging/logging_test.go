package logging

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestInfoWritesStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	Init("debug", "trendforge-test")
	SetOutput(&buf)

	Info("plan_ok", map[string]any{"channel": "tech", "entries": 7})

	var got map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &got); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	if got["level"] != "info" || got["message"] != "plan_ok" || got["channel"] != "tech" {
		t.Fatalf("unexpected log line: %v", got)
	}
	if got["service"] != "trendforge-test" {
		t.Fatalf("missing service field: %v", got)
	}
}

func TestLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	Init("warn", "trendforge-test")
	SetOutput(&buf)
	defer Init("info", "trendforge")

	Debug("noise", nil)
	Info("noise", nil)
	if buf.Len() != 0 {
		t.Fatalf("expected filtered output, got %q", buf.String())
	}
	Error("provider_failed", map[string]any{"provider": "feed"})
	if buf.Len() == 0 {
		t.Fatalf("expected error line")
	}
}

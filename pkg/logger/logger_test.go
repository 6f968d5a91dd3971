package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestWriterLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, "info").With(String("component", "dart"))
	l.Warn("step failed",
		String("step", "legacy/2023"),
		Int("year", 2023),
		Duration("took_ms", 1500*time.Millisecond),
		Error(errors.New("status 020")),
	)

	var m map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m["level"] != "warn" || m["message"] != "step failed" {
		t.Fatalf("unexpected entry %v", m)
	}
	if m["component"] != "dart" || m["step"] != "legacy/2023" {
		t.Fatalf("missing fields %v", m)
	}
	if m["took_ms"].(float64) != 1500 {
		t.Fatalf("unexpected duration %v", m["took_ms"])
	}
	if m["error"] != "status 020" {
		t.Fatalf("unexpected error field %v", m["error"])
	}
}

func TestWriterLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, "warn")
	l.Info("dropped")
	l.Debug("dropped")
	if buf.Len() != 0 {
		t.Fatalf("expected nothing below warn, got %s", buf.String())
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	if _, err := New(&Config{Level: "loud"}); err == nil {
		t.Fatalf("expected error")
	}
}

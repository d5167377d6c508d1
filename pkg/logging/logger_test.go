package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", DEBUG},
		{"info", INFO},
		{"warn", WARN},
		{"warning", WARN},
		{"error", ERROR},
		{"fatal", FATAL},
		{"nonsense", INFO},
		{"", INFO},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New("test", WARN, false)
	log.SetOutput(&buf)

	log.Debug("dropped")
	log.Info("dropped too")
	log.Warn("kept")
	log.Error("also kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("low-level messages leaked: %q", out)
	}
	if !strings.Contains(out, "kept") || !strings.Contains(out, "also kept") {
		t.Errorf("expected warn/error messages in output, got %q", out)
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New("api", INFO, true)
	log.SetOutput(&buf)

	log.Info("request served", map[string]interface{}{"status": 200})

	var entry Entry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v (%q)", err, buf.String())
	}
	if entry.Level != "INFO" {
		t.Errorf("level = %q, want INFO", entry.Level)
	}
	if entry.Component != "api" {
		t.Errorf("component = %q, want api", entry.Component)
	}
	if entry.Message != "request served" {
		t.Errorf("message = %q", entry.Message)
	}
	if entry.Fields["status"] != float64(200) {
		t.Errorf("fields = %v", entry.Fields)
	}
}

func TestTextFormatContainsComponent(t *testing.T) {
	var buf bytes.Buffer
	log := New("worker", INFO, false)
	log.SetOutput(&buf)

	log.Info("started")

	out := buf.String()
	if !strings.Contains(out, "INFO worker: started") {
		t.Errorf("unexpected text format: %q", out)
	}
}

func TestWithFieldPropagates(t *testing.T) {
	var buf bytes.Buffer
	log := New("sched", INFO, true)
	log.SetOutput(&buf)

	log.WithField("queue", "default").Info("enqueued")

	var entry Entry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if entry.Fields["queue"] != "default" {
		t.Errorf("expected queue field, got %v", entry.Fields)
	}
}

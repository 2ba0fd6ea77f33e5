package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestZerologAdapter_WritesFields(t *testing.T) {
	var buf bytes.Buffer
	z := NewZerologAdapterWithLogger(zerolog.New(&buf))

	z.Info("sample relayed",
		String("state", "Running"),
		Int("attempt", 3),
		Float32("hz", 440.5),
		Bool("voiced", true),
		Duration("interval", 500*time.Millisecond),
		Err(errors.New("boom")),
	)

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log entry: %v (%s)", err, buf.String())
	}

	if entry["message"] != "sample relayed" {
		t.Errorf("message = %v, want sample relayed", entry["message"])
	}
	if entry["level"] != "info" {
		t.Errorf("level = %v, want info", entry["level"])
	}
	if entry["state"] != "Running" {
		t.Errorf("state = %v, want Running", entry["state"])
	}
	if entry["attempt"] != float64(3) {
		t.Errorf("attempt = %v, want 3", entry["attempt"])
	}
	if entry["hz"] != 440.5 {
		t.Errorf("hz = %v, want 440.5", entry["hz"])
	}
	if entry["error"] != "boom" {
		t.Errorf("error = %v, want boom", entry["error"])
	}
}

func TestZerologAdapter_With(t *testing.T) {
	var buf bytes.Buffer
	z := NewZerologAdapterWithLogger(zerolog.New(&buf)).With(String("component", "coordinator"))

	z.Warn("stop failed")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log entry: %v", err)
	}
	if entry["component"] != "coordinator" {
		t.Errorf("component = %v, want coordinator", entry["component"])
	}
}

func TestZerologAdapter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	z := NewZerologAdapterWithLogger(zerolog.New(&buf).Level(zerolog.WarnLevel))

	z.Debug("hidden")
	z.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected no output below warn, got %q", buf.String())
	}

	z.Error("shown")
	if buf.Len() == 0 {
		t.Fatal("expected output for error level")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"", zerolog.InfoLevel},
		{"debug", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"bogus", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

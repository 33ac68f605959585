package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{
			name: "json format",
			config: Config{
				Level:       "info",
				Format:      "json",
				ServiceName: "test-service",
			},
		},
		{
			name: "debug level",
			config: Config{
				Level:       "debug",
				Format:      "json",
				ServiceName: "test-service",
			},
		},
		{
			name: "text format",
			config: Config{
				Level:       "info",
				Format:      "text",
				ServiceName: "test-service",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := New(tt.config)
			if log == nil {
				t.Fatal("expected logger to be non-nil")
			}
		})
	}
}

func TestLoggerOutput(t *testing.T) {
	var buf bytes.Buffer

	log := New(Config{
		Level:       "debug",
		Format:      "json",
		Output:      &buf,
		ServiceName: "test-service",
	})

	log.Info("test message", "key", "value")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output as JSON: %v", err)
	}

	if entry["msg"] != "test message" {
		t.Errorf("expected msg='test message', got %v", entry["msg"])
	}
	if entry["key"] != "value" {
		t.Errorf("expected key='value', got %v", entry["key"])
	}
	if entry["service"] != "test-service" {
		t.Errorf("expected service='test-service', got %v", entry["service"])
	}
}

func TestWithJobID(t *testing.T) {
	var buf bytes.Buffer

	log := New(Config{Level: "info", Format: "json", Output: &buf})
	log.WithJobID("job-123").Info("processing")

	if !strings.Contains(buf.String(), `"job_id":"job-123"`) {
		t.Errorf("expected job_id in output, got %s", buf.String())
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer

	log := New(Config{Level: "info", Format: "json", Output: &buf})
	log.WithComponent("pipeline").Info("started")

	if !strings.Contains(buf.String(), `"component":"pipeline"`) {
		t.Errorf("expected component in output, got %s", buf.String())
	}
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer

	log := New(Config{Level: "info", Format: "json", Output: &buf})

	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithJobID(ctx, "job-1")

	log.FromContext(ctx).Info("handled")

	out := buf.String()
	if !strings.Contains(out, `"request_id":"req-1"`) {
		t.Errorf("expected request_id in output, got %s", out)
	}
	if !strings.Contains(out, `"job_id":"job-1"`) {
		t.Errorf("expected job_id in output, got %s", out)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer

	log := New(Config{Level: "warn", Format: "json", Output: &buf})
	log.Info("should be dropped")

	if buf.Len() != 0 {
		t.Errorf("expected info log to be filtered at warn level, got %s", buf.String())
	}

	log.Warn("should appear")
	if buf.Len() == 0 {
		t.Error("expected warn log to be emitted")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"debug", "DEBUG"},
		{"info", "INFO"},
		{"WARN", "WARN"},
		{"warning", "WARN"},
		{"error", "ERROR"},
		{"bogus", "INFO"},
		{"", "INFO"},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.in).String(); got != tt.want {
			t.Errorf("parseLevel(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

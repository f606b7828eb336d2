package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"
)

func newCaptured(t *testing.T, service string) (*Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	cfg := &Config{Level: "debug", Format: FormatJSON}
	return NewWithWriter(cfg, service, &buf), &buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	line := strings.TrimSpace(buf.String())
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		t.Fatalf("decode log line %q: %v", line, err)
	}
	return m
}

func TestNewDefault(t *testing.T) {
	l := NewDefault("podscribe")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "podscribe" {
		t.Errorf("expected service 'podscribe', got %q", l.service)
	}
}

func TestNewInvalidLevel(t *testing.T) {
	l := New(&Config{Level: "loud", Format: FormatJSON}, "test")
	if l == nil {
		t.Fatal("expected logger to be created even with invalid level")
	}
}

func TestWithJob_AddsField(t *testing.T) {
	l, buf := newCaptured(t, "podscribe")
	l.WithComponent("coordinator").WithJob("job-1").Info("chunk transcribed", Fields(FieldChunk, 2))

	m := decodeLine(t, buf)
	if m[FieldJobID] != "job-1" {
		t.Errorf("expected job_id=job-1, got %v", m[FieldJobID])
	}
	if m[FieldComponent] != "coordinator" {
		t.Errorf("expected component=coordinator, got %v", m[FieldComponent])
	}
	if m[FieldChunk] != float64(2) {
		t.Errorf("expected chunk=2, got %v", m[FieldChunk])
	}
	if m["message"] != "chunk transcribed" {
		t.Errorf("unexpected message %v", m["message"])
	}
}

func TestWithContext_RequestAndJob(t *testing.T) {
	l, buf := newCaptured(t, "")
	ctx := ContextWithRequestID(context.Background(), "req-9")
	ctx = ContextWithJobID(ctx, "job-9")
	l.WithContext(ctx).Warn("slow stage")

	m := decodeLine(t, buf)
	if m[FieldRequestID] != "req-9" || m[FieldJobID] != "job-9" {
		t.Errorf("expected request and job ids, got %v", m)
	}
}

func TestWithContext_Empty(t *testing.T) {
	l, buf := newCaptured(t, "")
	l.WithContext(context.Background()).Info("plain")
	m := decodeLine(t, buf)
	if _, ok := m[FieldJobID]; ok {
		t.Error("expected no job_id field")
	}
}

func TestNop(t *testing.T) {
	Nop().Error("dropped")
}

func TestSetGlobalLogger(t *testing.T) {
	l := NewDefault("custom")
	SetGlobalLogger(l)
	if GetGlobalLogger() != l {
		t.Error("expected SetGlobalLogger to set the global logger")
	}
}

func TestRegisterAndGet(t *testing.T) {
	l := NewDefault("svc")
	Register("materializer", l)
	if Get("materializer") != l {
		t.Error("expected Get to return the registered logger")
	}
	if Get("unregistered") == nil {
		t.Error("expected fallback logger for unregistered name")
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Level != "info" || cfg.Format != FormatConsole || cfg.Output != "stdout" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if !cfg.Timestamp {
		t.Error("expected Timestamp to be true")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Level: "info", Format: "json"}, false},
		{"valid console", Config{Level: "debug", Format: "console"}, false},
		{"invalid level", Config{Level: "bad", Format: "json"}, true},
		{"invalid format", Config{Level: "info", Format: "xml"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestFields(t *testing.T) {
	got := Fields("op", "plan", "parts", 3, "trailing")
	if got["op"] != "plan" || got["parts"] != 3 {
		t.Errorf("unexpected fields %v", got)
	}
	if _, ok := got["trailing"]; ok {
		t.Error("odd trailing key should be dropped")
	}
}

func TestErrorAndStageFields(t *testing.T) {
	ef := ErrorFields("normalize", fmt.Errorf("ffmpeg exited 1"))
	if ef[FieldOperation] != "normalize" || ef[FieldError] != "ffmpeg exited 1" {
		t.Errorf("unexpected error fields %v", ef)
	}
	sf := StageFields("merge", 150*time.Millisecond)
	if sf[FieldStage] != "merge" || sf[FieldDuration] != int64(150) {
		t.Errorf("unexpected stage fields %v", sf)
	}
}

package validation

import (
	"testing"

	"github.com/kbukum/podscribe/errors"
)

type uploadForm struct {
	OutputFormat string `form:"output_format" validate:"omitempty,oneof=json txt srt"`
	WebhookURL   string `form:"webhook_url" validate:"omitempty,webhook"`
}

type pipelineConfig struct {
	MaxChunkBytes  int64 `mapstructure:"max_chunk_bytes" validate:"gt=0"`
	MaxConcurrency int   `mapstructure:"max_concurrency" validate:"min=1"`
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name      string
		input     any
		wantField string
	}{
		{"valid form", uploadForm{OutputFormat: "srt", WebhookURL: "https://example.com/hook"}, ""},
		{"empty optional fields", uploadForm{}, ""},
		{"unknown format", uploadForm{OutputFormat: "vtt"}, "output_format"},
		{"relative webhook", uploadForm{WebhookURL: "/hook"}, "webhook_url"},
		{"ftp webhook", uploadForm{WebhookURL: "ftp://example.com"}, "webhook_url"},
		{"zero chunk bytes", pipelineConfig{MaxChunkBytes: 0, MaxConcurrency: 1}, "max_chunk_bytes"},
		{"zero concurrency", pipelineConfig{MaxChunkBytes: 1, MaxConcurrency: 0}, "max_concurrency"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Struct(tc.input)
			if tc.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.IsCode(err, errors.ErrCodeInvalidInput) {
				t.Fatalf("expected INVALID_INPUT, got %v", err)
			}
			appErr, _ := errors.AsAppError(err)
			fields, ok := appErr.Details["fields"].([]FieldError)
			if !ok || len(fields) != 1 {
				t.Fatalf("expected one field error, got %#v", appErr.Details)
			}
			if fields[0].Field != tc.wantField {
				t.Errorf("expected field %q, got %q", tc.wantField, fields[0].Field)
			}
		})
	}
}

func TestVar(t *testing.T) {
	if err := Var("max_concurrency", 4, "min=1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := Var("max_concurrency", 0, "min=1")
	if !errors.IsCode(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

func TestToSnakeCase(t *testing.T) {
	if got := toSnakeCase("MaxChunkBytes"); got != "max_chunk_bytes" {
		t.Errorf("got %q", got)
	}
}

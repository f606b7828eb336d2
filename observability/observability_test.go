package observability

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/podscribe/errors"
)

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.Endpoint != "localhost:4318" {
		t.Errorf("expected Endpoint 'localhost:4318', got %s", cfg.Endpoint)
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("expected SampleRate 1.0, got %f", cfg.SampleRate)
	}
	if cfg.Interval != 15*time.Second {
		t.Errorf("expected Interval 15s, got %v", cfg.Interval)
	}
}

func TestSetupDisabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{}, "podscribe", "test", "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown of disabled telemetry failed: %v", err)
	}
}

func TestSamplerFor(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1.0, "AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
		{0.5, "TraceIDRatioBased{0.5}"},
	}
	for _, tt := range tests {
		if got := samplerFor(tt.rate).Description(); got != tt.want {
			t.Errorf("samplerFor(%v) = %s, want %s", tt.rate, got, tt.want)
		}
	}
}

func TestNewMetricsNoop(t *testing.T) {
	metrics, err := NewMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error creating metrics: %v", err)
	}

	ctx := context.Background()
	metrics.RecordJobStart(ctx)
	metrics.RecordChunks(ctx, 3)
	metrics.RecordStage(ctx, "transcribe", StatusOK, time.Second)
	metrics.RecordJobEnd(ctx, "completed", 2*time.Second)
	metrics.RecordRequest(ctx, "GET", "/health", 200, time.Millisecond)
}

func TestNilMetrics(t *testing.T) {
	var metrics *Metrics
	ctx := context.Background()
	metrics.RecordJobStart(ctx)
	metrics.RecordChunks(ctx, 1)
	metrics.RecordJobEnd(ctx, "failed", time.Second)
}

func TestMetricsRecorded(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()

	metrics, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	metrics.RecordChunks(ctx, 3)
	metrics.RecordChunks(ctx, 2)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatal(err)
	}
	var found bool
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "podscribe.chunks" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok || len(sum.DataPoints) != 1 || sum.DataPoints[0].Value != 5 {
				t.Errorf("unexpected chunk metric %+v", m.Data)
			}
			found = true
		}
	}
	if !found {
		t.Error("podscribe.chunks not recorded")
	}
}

func TestStageSpan(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer func() { _ = tp.Shutdown(context.Background()) }()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	ctx, job := StartSpan(context.Background(), SpanJob)
	_, normalize := StartStage(ctx, nil, "normalize")
	normalize.End(ctx, nil)
	_, failed := StartStage(ctx, nil, "transcribe")
	failed.End(ctx, errors.ExternalServiceError("openai", fmt.Errorf("boom")))
	job.End()

	spans := exporter.GetSpans()
	if len(spans) != 3 {
		t.Fatalf("expected 3 spans, got %d", len(spans))
	}
	if spans[0].Name != SpanStage+".normalize" || spans[0].Status.Code == codes.Error {
		t.Errorf("unexpected first span %s %v", spans[0].Name, spans[0].Status)
	}
	if spans[1].Status.Code != codes.Error {
		t.Errorf("expected failed stage to have error status, got %v", spans[1].Status)
	}
	if spans[1].Parent.SpanID() != spans[2].SpanContext.SpanID() {
		t.Error("stage span should be a child of the job span")
	}
	var code string
	for _, kv := range spans[1].Attributes {
		if string(kv.Key) == AttrErrorCode {
			code = kv.Value.AsString()
		}
	}
	if code != string(errors.ErrCodeExternalService) {
		t.Errorf("expected error code attribute, got %q", code)
	}
}

package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/podscribe/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Endpoint       string
	Insecure       bool
	Interval       time.Duration
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns the podscribe meter from the global provider.
func Meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// Metrics holds the instruments recorded by the pipeline and HTTP server.
// A nil *Metrics records nothing.
type Metrics struct {
	jobTotal        metric.Int64Counter
	jobDuration     metric.Float64Histogram
	jobActive       metric.Int64UpDownCounter
	chunkTotal      metric.Int64Counter
	stageDuration   metric.Float64Histogram
	requestTotal    metric.Int64Counter
	requestDuration metric.Float64Histogram
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	jobTotal, err := meter.Int64Counter("podscribe.jobs",
		metric.WithDescription("Finished transcription jobs by status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating podscribe.jobs counter: %w", err)
	}

	jobDuration, err := meter.Float64Histogram("podscribe.job.duration",
		metric.WithDescription("Wall time of transcription jobs"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating podscribe.job.duration histogram: %w", err)
	}

	jobActive, err := meter.Int64UpDownCounter("podscribe.jobs.active",
		metric.WithDescription("Jobs currently running"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating podscribe.jobs.active gauge: %w", err)
	}

	chunkTotal, err := meter.Int64Counter("podscribe.chunks",
		metric.WithDescription("Audio chunks sent for transcription"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating podscribe.chunks counter: %w", err)
	}

	stageDuration, err := meter.Float64Histogram("podscribe.stage.duration",
		metric.WithDescription("Duration of pipeline stages"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating podscribe.stage.duration histogram: %w", err)
	}

	requestTotal, err := meter.Int64Counter("http.server.requests",
		metric.WithDescription("HTTP requests by route and status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating http.server.requests counter: %w", err)
	}

	requestDuration, err := meter.Float64Histogram("http.server.duration",
		metric.WithDescription("Duration of HTTP requests"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating http.server.duration histogram: %w", err)
	}

	return &Metrics{
		jobTotal:        jobTotal,
		jobDuration:     jobDuration,
		jobActive:       jobActive,
		chunkTotal:      chunkTotal,
		stageDuration:   stageDuration,
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
	}, nil
}

// RecordJobStart increments the active job count.
func (m *Metrics) RecordJobStart(ctx context.Context) {
	if m == nil {
		return
	}
	m.jobActive.Add(ctx, 1)
}

// RecordJobEnd decrements active jobs and records the finished job.
func (m *Metrics) RecordJobEnd(ctx context.Context, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.jobActive.Add(ctx, -1)
	m.jobTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrStatus, status)))
	m.jobDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String(AttrStatus, status)))
}

// RecordChunks adds n to the chunk counter.
func (m *Metrics) RecordChunks(ctx context.Context, n int) {
	if m == nil {
		return
	}
	m.chunkTotal.Add(ctx, int64(n))
}

// RecordStage records the duration of one pipeline stage.
func (m *Metrics) RecordStage(ctx context.Context, stage, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String(AttrStage, stage),
		attribute.String(AttrStatus, status),
	))
}

// RecordRequest records a served HTTP request.
func (m *Metrics) RecordRequest(ctx context.Context, method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status", status),
	))
	m.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
	))
}

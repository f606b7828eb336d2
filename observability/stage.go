package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/podscribe/errors"
)

// Status values recorded on spans and metrics.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Stage tracks one pipeline stage as a child span plus a duration sample.
type Stage struct {
	Name    string
	start   time.Time
	span    trace.Span
	metrics *Metrics
}

// StartStage opens a span for stage under the span in ctx.
func StartStage(ctx context.Context, metrics *Metrics, stage string) (context.Context, *Stage) {
	ctx, span := StartSpan(ctx, SpanStage+"."+stage, trace.WithAttributes(attribute.String(AttrStage, stage)))
	return ctx, &Stage{Name: stage, start: time.Now(), span: span, metrics: metrics}
}

// SetAttributes annotates the stage span.
func (s *Stage) SetAttributes(kv ...attribute.KeyValue) {
	s.span.SetAttributes(kv...)
}

// End closes the span and records the stage duration. A non-nil err marks
// the stage failed.
func (s *Stage) End(ctx context.Context, err error) time.Duration {
	duration := time.Since(s.start)
	status := StatusOK
	if err != nil {
		status = StatusError
		SetSpanError(s.span, err)
		if appErr, ok := errors.AsAppError(err); ok {
			s.span.SetAttributes(attribute.String(AttrErrorCode, string(appErr.Code)))
		}
	}
	s.span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int64(AttrDurationMs, duration.Milliseconds()),
	)
	s.span.End()
	s.metrics.RecordStage(ctx, s.Name, status, duration)
	return duration
}

// Package observability provides OpenTelemetry tracing and metrics for
// transcription jobs.
//
// Setup installs OTLP/HTTP exporters when enabled and leaves the global
// no-op providers in place otherwise:
//
//	shutdown, err := observability.Setup(ctx, cfg, "podscribe", version.Version, "production")
//	defer shutdown(ctx)
//
// Per-stage tracking:
//
//	ctx, stage := observability.StartStage(ctx, metrics, "transcribe")
//	err := run(ctx)
//	stage.End(ctx, err)
package observability

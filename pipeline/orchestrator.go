package pipeline

import (
	"context"
	"fmt"
	"maps"
	"os"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/podscribe/chunk"
	"github.com/kbukum/podscribe/diarization"
	"github.com/kbukum/podscribe/errors"
	"github.com/kbukum/podscribe/logger"
	"github.com/kbukum/podscribe/media"
	"github.com/kbukum/podscribe/observability"
	"github.com/kbukum/podscribe/tagging"
	"github.com/kbukum/podscribe/timeline"
	"github.com/kbukum/podscribe/transcription"
)

// Stage names used in logs, spans and metrics.
const (
	StageNormalize   = "normalize"
	StageProbe       = "probe"
	StageSilence     = "silence"
	StagePlan        = "plan"
	StageMaterialize = "materialize"
	StageTranscribe  = "transcribe"
	StageDiarize     = "diarize"
	StageAcoustic    = "acoustic"
	StageVisual      = "visual"
	StageMerge       = "merge"
)

// AudioTools is the audio processing the pipeline needs. *media.FFmpeg
// implements it.
type AudioTools interface {
	chunk.Slicer
	Normalize(ctx context.Context, src, dir string) (string, error)
	Probe(ctx context.Context, path string) (*media.Info, error)
	DetectSilence(ctx context.Context, path string, duration float64) ([]timeline.Span, error)
}

// Deps are the collaborators of an Orchestrator.
type Deps struct {
	Audio       AudioTools
	Transcriber transcription.Provider
	Diarizer    diarization.Provider
	Acoustic    tagging.AcousticTagger
	Visual      tagging.VisualTagger

	// Transcription carries the language and prompt hints for every chunk.
	Transcription transcription.Config
	// Speakers carries the speaker count hints for diarization.
	Speakers diarization.Config

	Metrics *observability.Metrics
	Log     *logger.Logger
}

// Result is the outcome of a successful run.
type Result struct {
	Transcript []timeline.Unit
	// DurationSec is the probed duration of the normalized audio.
	DurationSec float64
	Chunks      int
}

// Orchestrator sequences the stages of one transcription.
type Orchestrator struct {
	cfg         Config
	deps        Deps
	coordinator *transcription.Coordinator
	merger      timeline.Merger
	log         *logger.Logger
}

// NewOrchestrator validates cfg and wires the collaborators. Missing
// diarization and tagging collaborators fall back to backends that find
// nothing.
func NewOrchestrator(cfg Config, deps Deps) (*Orchestrator, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.Audio == nil {
		return nil, errors.MissingField("audio tools")
	}
	if deps.Transcriber == nil {
		return nil, errors.MissingField("transcription provider")
	}
	if deps.Diarizer == nil {
		deps.Diarizer = diarization.None{}
	}
	if deps.Acoustic == nil {
		deps.Acoustic = tagging.NoAcoustic{}
	}
	if deps.Visual == nil {
		deps.Visual = tagging.NoVisual{}
	}
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	log := deps.Log.WithComponent("pipeline")

	coordinator := transcription.NewCoordinator(deps.Transcriber, transcription.CoordinatorConfig{
		MaxConcurrency:  cfg.MaxConcurrency,
		RateLimitPerMin: cfg.RateLimitPerMin,
		Language:        deps.Transcription.Language,
		Prompt:          deps.Transcription.Prompt,
	}, deps.Log)

	return &Orchestrator{
		cfg:         cfg,
		deps:        deps,
		coordinator: coordinator,
		merger:      cfg.merger(),
		log:         log,
	}, nil
}

// Deps returns the wired collaborators.
func (o *Orchestrator) Deps() Deps { return o.deps }

// Run transcribes the recording at source. Logs and spans carry jobID.
func (o *Orchestrator) Run(ctx context.Context, jobID, source string) (*Result, error) {
	ctx = logger.ContextWithJobID(ctx, jobID)
	ctx, span := observability.StartSpan(ctx, observability.SpanJob)
	span.SetAttributes(attribute.String(observability.AttrJobID, jobID))
	defer span.End()

	log := o.log.WithContext(ctx)
	start := time.Now()
	o.deps.Metrics.RecordJobStart(ctx)

	res, err := o.run(ctx, log, jobID, source)
	status := "completed"
	if err != nil {
		status = "failed"
		observability.SetSpanError(span, err)
		log.Error("job failed", logger.Fields(logger.FieldError, err.Error(), logger.FieldDuration, time.Since(start).Milliseconds()))
	} else {
		span.SetAttributes(attribute.Int(observability.AttrChunks, res.Chunks))
		log.Info("job completed", logger.Fields(
			"units", len(res.Transcript),
			"chunks", res.Chunks,
			"duration_sec", res.DurationSec,
			logger.FieldDuration, time.Since(start).Milliseconds(),
		))
	}
	o.deps.Metrics.RecordJobEnd(ctx, status, time.Since(start))
	return res, err
}

func (o *Orchestrator) run(ctx context.Context, log *logger.Logger, jobID, source string) (*Result, error) {
	if _, err := os.Stat(source); err != nil {
		return nil, errors.InputError(source, err)
	}

	workDir, err := os.MkdirTemp(o.cfg.WorkDir, "job-"+jobID+"-")
	if err != nil {
		return nil, errors.Internal(fmt.Errorf("create work directory: %w", err))
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			log.Warn("failed to remove work directory", logger.ErrorFields("cleanup", err))
		}
	}()

	var normalized string
	if err := o.stage(ctx, log, StageNormalize, func(ctx context.Context) (err error) {
		normalized, err = o.deps.Audio.Normalize(ctx, source, workDir)
		return err
	}); err != nil {
		return nil, err
	}

	var info *media.Info
	if err := o.stage(ctx, log, StageProbe, func(ctx context.Context) (err error) {
		info, err = o.deps.Audio.Probe(ctx, normalized)
		return err
	}); err != nil {
		return nil, err
	}

	var nonSpeech []timeline.Span
	if err := o.stage(ctx, log, StageSilence, func(ctx context.Context) (err error) {
		nonSpeech, err = o.deps.Audio.DetectSilence(ctx, normalized, info.Duration)
		return err
	}); err != nil {
		return nil, err
	}

	var spans []timeline.Span
	if err := o.stage(ctx, log, StagePlan, func(context.Context) (err error) {
		spans, err = timeline.Plan(info.SizeBytes, info.Duration, o.cfg.MaxChunkBytes)
		if err == nil {
			log.Debug("chunk plan", logger.Fields("parts", len(spans), "size_bytes", info.SizeBytes, "duration_sec", info.Duration))
		}
		return err
	}); err != nil {
		return nil, err
	}

	var set *chunk.Set
	materializer := chunk.NewMaterializer(o.deps.Audio, workDir, o.deps.Log)
	if err := o.stage(ctx, log, StageMaterialize, func(ctx context.Context) (err error) {
		set, err = materializer.Materialize(ctx, normalized, spans)
		return err
	}); err != nil {
		return nil, err
	}
	o.deps.Metrics.RecordChunks(ctx, set.Len())

	// TranscribeAll releases every chunk in set before returning.
	var segments []timeline.Segment
	if err := o.stage(ctx, log, StageTranscribe, func(ctx context.Context) (err error) {
		segments, err = o.coordinator.TranscribeAll(ctx, set)
		return err
	}); err != nil {
		return nil, err
	}

	var turns []timeline.Turn
	if err := o.stage(ctx, log, StageDiarize, func(ctx context.Context) error {
		resp, err := o.deps.Diarizer.Diarize(ctx, o.deps.Speakers.Request(normalized))
		if err != nil {
			return err
		}
		if resp != nil {
			turns = resp.Turns
		}
		return nil
	}); err != nil {
		return nil, err
	}

	var acoustic []timeline.Unit
	if err := o.stage(ctx, log, StageAcoustic, func(ctx context.Context) (err error) {
		acoustic, err = o.deps.Acoustic.Tag(ctx, normalized, nonSpeech)
		return err
	}); err != nil {
		return nil, err
	}

	var visual []timeline.Unit
	if err := o.stage(ctx, log, StageVisual, func(ctx context.Context) (err error) {
		visual, err = o.deps.Visual.Tag(ctx, segments)
		return err
	}); err != nil {
		return nil, err
	}

	var transcript []timeline.Unit
	_ = o.stage(ctx, log, StageMerge, func(context.Context) error {
		events := make([]timeline.Unit, 0, len(acoustic)+len(visual))
		events = append(events, acoustic...)
		events = append(events, visual...)
		transcript = o.merger.Merge(segments, turns, events)
		return nil
	})

	return &Result{Transcript: transcript, DurationSec: info.Duration, Chunks: len(spans)}, nil
}

// stage runs fn inside a stage span. Errors leave as AppErrors tagged with
// the failing stage.
func (o *Orchestrator) stage(ctx context.Context, log *logger.Logger, name string, fn func(context.Context) error) error {
	ctx, st := observability.StartStage(ctx, o.deps.Metrics, name)
	err := fn(ctx)
	if err != nil {
		err = stageError(ctx, name, err)
	}
	d := st.End(ctx, err)

	if err != nil {
		log.Warn("stage failed", logger.Fields(logger.FieldStage, name, logger.FieldError, err.Error(), logger.FieldDuration, d.Milliseconds()))
		return err
	}
	log.Debug("stage finished", logger.StageFields(name, d))
	return nil
}

func stageError(ctx context.Context, name string, err error) error {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		if ctx.Err() != nil {
			return errors.Timeout(name).WithCause(err).WithDetail("stage", name)
		}
		return errors.Internal(err).WithDetail("stage", name)
	}
	if _, tagged := appErr.Details["stage"]; tagged {
		return appErr
	}
	tagged := *appErr
	tagged.Details = maps.Clone(appErr.Details)
	return tagged.WithDetail("stage", name)
}

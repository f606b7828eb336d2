package pipeline

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/kbukum/podscribe/component"
	"github.com/kbukum/podscribe/errors"
	"github.com/kbukum/podscribe/format"
	"github.com/kbukum/podscribe/jobs"
	"github.com/kbukum/podscribe/logger"
	"github.com/kbukum/podscribe/storage"
	"github.com/kbukum/podscribe/validation"
)

// Submission is an uploaded recording to transcribe.
type Submission struct {
	FileName   string    `validate:"required"`
	Body       io.Reader `validate:"required"`
	WebhookURL string    `validate:"omitempty,webhook"`
	// Format is the requested output format; empty means json.
	Format string
}

// Service runs submitted jobs in the background and records their outcome
// in a jobs.Registry.
type Service struct {
	orchestrator *Orchestrator
	store        storage.Storage
	registry     *jobs.Registry
	notifier     *Notifier
	sem          *semaphore.Weighted
	workDir      string
	log          *logger.Logger

	mu      sync.Mutex
	closed  bool
	wg      sync.WaitGroup
	baseCtx context.Context
	cancel  context.CancelFunc
}

// NewService creates a Service. At most cfg.MaxJobs jobs run at once; the
// rest wait in processing state.
func NewService(cfg Config, orchestrator *Orchestrator, store storage.Storage, registry *jobs.Registry, log *logger.Logger) (*Service, error) {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.Nop()
	}
	notifier, err := NewNotifier(cfg.WebhookTimeout, log)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		orchestrator: orchestrator,
		store:        store,
		registry:     registry,
		notifier:     notifier,
		sem:          semaphore.NewWeighted(int64(cfg.MaxJobs)),
		workDir:      cfg.WorkDir,
		log:          log.WithComponent("jobs"),
		baseCtx:      ctx,
		cancel:       cancel,
	}, nil
}

// Submit stages the upload, registers a processing job and starts it.
// It returns as soon as the job is registered.
func (s *Service) Submit(ctx context.Context, sub Submission) (jobs.Job, error) {
	if err := validation.Struct(sub); err != nil {
		return jobs.Job{}, err
	}
	f, err := format.Parse(sub.Format)
	if err != nil {
		return jobs.Job{}, err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return jobs.Job{}, errors.ServiceUnavailable("The service is shutting down.")
	}
	s.wg.Add(1)
	s.mu.Unlock()

	job := s.registry.Create(jobs.Spec{
		SourceName: sub.FileName,
		Format:     string(f),
		WebhookURL: sub.WebhookURL,
	})
	key := stagingKey(job.ID, sub.FileName)
	if _, err := s.store.Upload(ctx, key, sub.Body); err != nil {
		s.wg.Done()
		// The job exists but never ran; fail it so pollers see why.
		_, _ = s.registry.Fail(job.ID, err)
		return jobs.Job{}, err
	}
	go s.execute(job, key)

	s.log.Info("job submitted", logger.Fields(logger.FieldJobID, job.ID, "source", sub.FileName, "format", string(f)))
	return job, nil
}

// Get returns a snapshot of a job.
func (s *Service) Get(id string) (jobs.Job, error) {
	return s.registry.Get(id)
}

func (s *Service) execute(job jobs.Job, key string) {
	defer s.wg.Done()
	ctx := s.baseCtx
	log := s.log.WithJob(job.ID)

	defer func() {
		if err := s.store.Delete(context.WithoutCancel(ctx), key); err != nil {
			log.Warn("failed to delete staged upload", logger.ErrorFields("cleanup", err))
		}
	}()

	var (
		res *Result
		err error
	)
	if err = s.sem.Acquire(ctx, 1); err != nil {
		err = errors.Timeout("job").WithCause(err)
	} else {
		res, err = s.run(ctx, job.ID, key)
		s.sem.Release(1)
	}

	var final jobs.Job
	if err != nil {
		final, err = s.registry.Fail(job.ID, err)
	} else {
		final, err = s.registry.Complete(job.ID, jobs.Result{DurationSec: res.DurationSec, Transcript: res.Transcript})
	}
	if err != nil {
		log.Error("failed to record job outcome", logger.ErrorFields("finish", err))
		return
	}
	if final.WebhookURL != "" {
		s.notifier.Notify(context.WithoutCancel(ctx), final)
	}
}

func (s *Service) run(ctx context.Context, jobID, key string) (*Result, error) {
	source, cleanup, err := storage.Fetch(ctx, s.store, key, s.workDir)
	defer cleanup()
	if err != nil {
		return nil, err
	}
	return s.orchestrator.Run(ctx, jobID, source)
}

// stagingKey is <job_id>/<base name of the upload>.
func stagingKey(jobID, fileName string) string {
	name := filepath.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if name == "." || name == "/" || name == ".." || name == "" {
		name = "upload"
	}
	return jobID + "/" + name
}

var _ component.Component = (*Service)(nil)

// Name returns the component name.
func (s *Service) Name() string { return "pipeline" }

// Start is a no-op; jobs start on Submit.
func (s *Service) Start(context.Context) error { return nil }

// Stop refuses new jobs and waits for running ones. When ctx expires first,
// running jobs are canceled and fail with TIMEOUT.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.cancel()
		return nil
	case <-ctx.Done():
		s.cancel()
		<-done
		return ctx.Err()
	}
}

// Health reports whether the audio tools and transcription backend are usable.
func (s *Service) Health(ctx context.Context) component.Health {
	deps := s.orchestrator.Deps()
	if a, ok := deps.Audio.(interface{ Available() bool }); ok && !a.Available() {
		return component.Health{Name: s.Name(), Status: component.StatusUnhealthy, Message: "ffmpeg/ffprobe not found"}
	}
	var down []string
	if !deps.Transcriber.IsAvailable(ctx) {
		down = append(down, deps.Transcriber.Name())
	}
	if !deps.Diarizer.IsAvailable(ctx) {
		down = append(down, deps.Diarizer.Name())
	}
	if !deps.Acoustic.IsAvailable(ctx) {
		down = append(down, deps.Acoustic.Name())
	}
	if len(down) > 0 {
		return component.Health{Name: s.Name(), Status: component.StatusDegraded, Message: "unavailable: " + strings.Join(down, ", ")}
	}
	return component.Health{Name: s.Name(), Status: component.StatusHealthy}
}

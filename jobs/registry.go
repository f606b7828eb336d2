package jobs

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/podscribe/errors"
)

// Registry tracks jobs by id for the lifetime of the process.
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]*Job
	now  func() time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		jobs: make(map[string]*Job),
		now:  time.Now,
	}
}

// Create registers a new processing job and returns its snapshot.
func (r *Registry) Create(spec Spec) Job {
	job := &Job{
		ID:         uuid.NewString(),
		Status:     StatusProcessing,
		SourceName: spec.SourceName,
		Format:     spec.Format,
		WebhookURL: spec.WebhookURL,
		CreatedAt:  r.now().UTC(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.ID] = job
	return job.clone()
}

// Get returns a snapshot of the job with the given id.
func (r *Registry) Get(id string) (Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	if !ok {
		return Job{}, errors.NotFound("job", id)
	}
	return job.clone(), nil
}

// Complete moves a processing job to StatusCompleted.
func (r *Registry) Complete(id string, res Result) (Job, error) {
	return r.finish(id, func(j *Job) {
		j.Status = StatusCompleted
		j.DurationSec = res.DurationSec
		j.Transcript = res.Transcript
	})
}

// Fail moves a processing job to StatusFailed, recording cause verbatim.
func (r *Registry) Fail(id string, cause error) (Job, error) {
	return r.finish(id, func(j *Job) {
		j.Status = StatusFailed
		j.Error = "unknown error"
		if cause != nil {
			j.Error = cause.Error()
		}
		if appErr, ok := errors.AsAppError(cause); ok {
			j.ErrorCode = string(appErr.Code)
		}
	})
}

// Count returns the number of jobs in each status.
func (r *Registry) Count() map[Status]int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[Status]int, 3)
	for _, j := range r.jobs {
		counts[j.Status]++
	}
	return counts
}

func (r *Registry) finish(id string, apply func(*Job)) (Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return Job{}, errors.NotFound("job", id)
	}
	if job.Status.Terminal() {
		return job.clone(), errors.Conflict("job " + id + " is already " + string(job.Status))
	}

	// Build the terminal state on a copy and swap it in whole.
	next := job.clone()
	apply(&next)
	next.FinishedAt = r.now().UTC()
	r.jobs[id] = &next
	return next.clone(), nil
}

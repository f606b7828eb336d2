// Package jobs holds the process-wide registry of transcription jobs.
//
// A job is created in StatusProcessing and moves exactly once to
// StatusCompleted or StatusFailed; terminal jobs never change again.
// Readers always receive copies.
package jobs

import (
	"slices"
	"time"

	"github.com/kbukum/podscribe/timeline"
)

// Status is the lifecycle state of a job.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether s is a final state.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job is a snapshot of one submitted transcription.
type Job struct {
	ID         string    `json:"job_id"`
	Status     Status    `json:"status"`
	SourceName string    `json:"source_name,omitempty"`
	Format     string    `json:"output_format,omitempty"`
	WebhookURL string    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	FinishedAt time.Time `json:"finished_at,omitzero"`

	// Set when completed.
	DurationSec float64         `json:"duration_sec,omitempty"`
	Transcript  []timeline.Unit `json:"transcript,omitempty"`

	// Set when failed.
	Error     string `json:"error,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
}

// Spec describes a job at submission time.
type Spec struct {
	SourceName string
	Format     string
	WebhookURL string
}

// Result is the outcome of a successful run.
type Result struct {
	DurationSec float64
	Transcript  []timeline.Unit
}

func (j Job) clone() Job {
	j.Transcript = slices.Clone(j.Transcript)
	return j
}

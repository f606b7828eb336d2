package jobs

import (
	"fmt"
	"sync"
	"testing"

	"github.com/kbukum/podscribe/errors"
	"github.com/kbukum/podscribe/timeline"
)

func TestRegistryLifecycle(t *testing.T) {
	r := NewRegistry()
	job := r.Create(Spec{SourceName: "ep1.mp3", Format: "srt"})

	if job.ID == "" {
		t.Fatal("expected job id")
	}
	if job.Status != StatusProcessing {
		t.Errorf("expected processing, got %s", job.Status)
	}

	transcript := []timeline.Unit{{Start: 0, End: 2, Speaker: "A", Kind: timeline.KindSpeech, Text: "hi"}}
	done, err := r.Complete(job.ID, Result{DurationSec: 60, Transcript: transcript})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if done.Status != StatusCompleted || done.DurationSec != 60 || len(done.Transcript) != 1 {
		t.Errorf("unexpected completed job %+v", done)
	}
	if done.FinishedAt.IsZero() {
		t.Error("expected finished_at to be set")
	}

	if _, err := r.Fail(job.ID, fmt.Errorf("late failure")); !errors.IsCode(err, errors.ErrCodeConflict) {
		t.Errorf("expected CONFLICT on second transition, got %v", err)
	}
	got, _ := r.Get(job.ID)
	if got.Status != StatusCompleted || got.Error != "" {
		t.Errorf("terminal job changed: %+v", got)
	}
}

func TestRegistryFailRecordsError(t *testing.T) {
	r := NewRegistry()
	job := r.Create(Spec{})

	cause := errors.ExternalServiceError("openai", fmt.Errorf("boom")).WithDetail("chunk", 1)
	failed, err := r.Fail(job.ID, cause)
	if err != nil {
		t.Fatal(err)
	}
	if failed.Status != StatusFailed {
		t.Errorf("expected failed, got %s", failed.Status)
	}
	if failed.Error != cause.Error() {
		t.Errorf("error = %q, want %q", failed.Error, cause.Error())
	}
	if failed.ErrorCode != string(errors.ErrCodeExternalService) {
		t.Errorf("error code = %q", failed.ErrorCode)
	}
	if failed.Transcript != nil {
		t.Error("failed job must not carry a transcript")
	}
}

func TestRegistryUnknownJob(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Get("nope"); !errors.IsCode(err, errors.ErrCodeNotFound) {
		t.Errorf("Get: expected NOT_FOUND, got %v", err)
	}
	if _, err := r.Complete("nope", Result{}); !errors.IsCode(err, errors.ErrCodeNotFound) {
		t.Errorf("Complete: expected NOT_FOUND, got %v", err)
	}
}

func TestSnapshotsAreCopies(t *testing.T) {
	r := NewRegistry()
	job := r.Create(Spec{})
	_, _ = r.Complete(job.ID, Result{Transcript: []timeline.Unit{{Text: "original"}}})

	snap, _ := r.Get(job.ID)
	snap.Transcript[0].Text = "mutated"

	again, _ := r.Get(job.ID)
	if again.Transcript[0].Text != "original" {
		t.Errorf("registry state leaked through snapshot: %q", again.Transcript[0].Text)
	}
}

func TestConcurrentTerminalTransition(t *testing.T) {
	r := NewRegistry()
	job := r.Create(Spec{})

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var err error
			if i%2 == 0 {
				_, err = r.Complete(job.ID, Result{})
			} else {
				_, err = r.Fail(job.ID, fmt.Errorf("fail %d", i))
			}
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
		go func() { _, _ = r.Get(job.ID) }()
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("expected exactly one terminal transition, got %d", wins)
	}
	if counts := r.Count(); counts[StatusProcessing] != 0 {
		t.Errorf("unexpected counts %v", counts)
	}
}

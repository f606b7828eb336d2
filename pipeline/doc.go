// Package pipeline runs transcription jobs.
//
// Orchestrator.Run executes one recording synchronously:
//
//	normalize → probe → silence → plan → materialize → transcribe →
//	diarize → acoustic → visual → merge
//
// Every stage must succeed; the first failure aborts the run and no partial
// transcript is returned. Temporary files live in a per-run work directory
// that is removed on every exit path.
//
// Service accepts uploads, stages them in storage, and runs them in the
// background against the job registry, bounded by Config.MaxJobs.
package pipeline

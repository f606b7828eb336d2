package transcription

import (
	"context"
	"fmt"
	"maps"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/kbukum/podscribe/chunk"
	"github.com/kbukum/podscribe/errors"
	"github.com/kbukum/podscribe/logger"
	"github.com/kbukum/podscribe/timeline"
)

// CoordinatorConfig bounds how chunks are sent to the backend.
type CoordinatorConfig struct {
	// MaxConcurrency is the number of chunks in flight per job.
	MaxConcurrency int
	// RateLimitPerMin caps backend calls across all jobs. Zero is unlimited.
	RateLimitPerMin int
	Language        string
	Prompt          string
}

// Coordinator transcribes every chunk of a recording and returns the
// segments on the global timeline in chunk order.
type Coordinator struct {
	provider Provider
	cfg      CoordinatorConfig
	limiter  *rate.Limiter
	log      *logger.Logger
}

// NewCoordinator creates a Coordinator. The rate limiter is shared by all
// jobs run through it.
func NewCoordinator(p Provider, cfg CoordinatorConfig, log *logger.Logger) *Coordinator {
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 1
	}
	if log == nil {
		log = logger.Nop()
	}
	c := &Coordinator{provider: p, cfg: cfg, log: log.WithComponent("transcription")}
	if cfg.RateLimitPerMin > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(float64(cfg.RateLimitPerMin)/60.0), 1)
	}
	return c
}

// TranscribeAll calls the backend exactly once per chunk, with up to
// MaxConcurrency calls in flight. Each chunk is released once its call
// returns, and every chunk in set is released before TranscribeAll returns.
//
// The first failing chunk fails the whole call: chunks not yet started are
// skipped, in-flight calls are canceled and their results discarded. The
// returned error carries the failing chunk index in Details["chunk"].
func (c *Coordinator) TranscribeAll(ctx context.Context, set *chunk.Set) ([]timeline.Segment, error) {
	defer func() {
		if err := set.ReleaseAll(); err != nil {
			c.log.Warn("failed to release chunks", logger.ErrorFields("release", err))
		}
	}()

	n := set.Len()
	results := make([][]timeline.Segment, n)
	log := c.log.WithContext(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.MaxConcurrency)
	for i, ch := range set.Chunks {
		g.Go(func() error {
			defer func() {
				if err := ch.Release(); err != nil {
					log.Warn("failed to release chunk", logger.Fields(logger.FieldChunk, i, logger.FieldError, err.Error()))
				}
			}()
			if err := gctx.Err(); err != nil {
				return err
			}
			if c.limiter != nil {
				if err := c.limiter.Wait(gctx); err != nil {
					return err
				}
			}

			start := time.Now()
			resp, err := c.provider.Transcribe(gctx, Request{
				AudioPath: ch.Path,
				Language:  c.cfg.Language,
				Prompt:    c.cfg.Prompt,
			})
			if err != nil {
				return c.chunkError(i, n, err)
			}
			if resp != nil {
				results[i] = timeline.Rebase(ch.Span.Start, resp.Segments)
			}
			log.Debug("chunk transcribed", logger.Fields(
				logger.FieldChunk, i,
				"offset", ch.Span.Start,
				"segments", len(results[i]),
				logger.FieldDuration, time.Since(start).Milliseconds(),
			))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if _, ok := errors.AsAppError(err); !ok {
			return nil, errors.Timeout("transcription").WithCause(err)
		}
		return nil, err
	}

	total := 0
	for _, r := range results {
		total += len(r)
	}
	segments := make([]timeline.Segment, 0, total)
	for _, r := range results {
		segments = append(segments, r...)
	}
	return segments, nil
}

func (c *Coordinator) chunkError(i, n int, err error) error {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		appErr = errors.ExternalServiceError(c.provider.Name(), err)
	}
	wrapped := *appErr
	wrapped.Details = maps.Clone(appErr.Details)
	wrapped.Message = fmt.Sprintf("chunk %d of %d: %s", i+1, n, appErr.Message)
	return wrapped.WithDetail("chunk", i)
}

package resilience

import (
	"context"
	stderrors "errors"
	"math"
	"math/rand"
	"time"

	"github.com/kbukum/podscribe/errors"
)

// Policy configures retry behavior.
type Policy struct {
	// MaxAttempts is the maximum number of attempts including the first.
	MaxAttempts int `yaml:"max_attempts" mapstructure:"max_attempts"`
	// InitialBackoff is the delay before the second attempt.
	InitialBackoff time.Duration `yaml:"initial_backoff" mapstructure:"initial_backoff"`
	// MaxBackoff caps the delay between attempts.
	MaxBackoff time.Duration `yaml:"max_backoff" mapstructure:"max_backoff"`
	// Multiplier grows the backoff after each attempt.
	Multiplier float64 `yaml:"multiplier" mapstructure:"multiplier"`
	// Jitter adds up to ±Jitter*backoff of randomness (0.0 to 1.0).
	Jitter float64 `yaml:"jitter" mapstructure:"jitter"`

	// RetryIf decides whether err is worth another attempt.
	RetryIf func(error) bool `yaml:"-" mapstructure:"-"`
	// OnRetry is called before sleeping ahead of each retry.
	OnRetry func(attempt int, err error, backoff time.Duration) `yaml:"-" mapstructure:"-"`
}

// ApplyDefaults fills zero fields. A zero policy performs a single attempt.
func (p *Policy) ApplyDefaults() {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 1
	}
	if p.InitialBackoff <= 0 {
		p.InitialBackoff = 500 * time.Millisecond
	}
	if p.MaxBackoff <= 0 {
		p.MaxBackoff = 10 * time.Second
	}
	if p.Multiplier <= 0 {
		p.Multiplier = 2.0
	}
	if p.RetryIf == nil {
		p.RetryIf = IsRetryable
	}
}

// IsRetryable retries AppErrors flagged Retryable, never cancellation.
func IsRetryable(err error) bool {
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return false
	}
	appErr, ok := errors.AsAppError(err)
	return ok && appErr.Retryable
}

// Retry runs fn until it succeeds, returns a non-retryable error, or the
// policy runs out of attempts. The last error is returned unchanged.
func Retry[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	p.ApplyDefaults()

	var zero T
	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return zero, lastErr
			}
			return zero, err
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == p.MaxAttempts || !p.RetryIf(err) {
			break
		}

		backoff := p.backoff(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt, err, backoff)
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, lastErr
		case <-timer.C:
		}
	}
	return zero, lastErr
}

func (p Policy) backoff(attempt int) time.Duration {
	d := float64(p.InitialBackoff) * math.Pow(p.Multiplier, float64(attempt-1))
	if p.Jitter > 0 {
		d += (rand.Float64()*2 - 1) * d * p.Jitter
	}
	if d > float64(p.MaxBackoff) {
		d = float64(p.MaxBackoff)
	}
	if d < 0 {
		d = float64(p.InitialBackoff)
	}
	return time.Duration(d)
}

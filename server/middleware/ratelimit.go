package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	apperrors "github.com/kbukum/podscribe/errors"
)

// RateLimitConfig limits requests per client. A zero RequestsPerMinute
// disables limiting.
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" mapstructure:"requests_per_minute" validate:"gte=0"`
	Burst             int `yaml:"burst" mapstructure:"burst" validate:"gte=0"`

	// KeyFunc extracts the limit key from a request. Defaults to the subject
	// set by Auth, then the client IP.
	KeyFunc func(*gin.Context) string `yaml:"-" mapstructure:"-"`
}

// RateLimit returns a Gin middleware that applies a token bucket per key.
// Rejected requests get 429 RATE_LIMITED.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.RequestsPerMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if cfg.Burst <= 0 {
		cfg.Burst = max(1, cfg.RequestsPerMinute/10)
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = ClientKey
	}
	limiters := newLimiterSet(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), cfg.Burst)

	return func(c *gin.Context) {
		if !limiters.get(cfg.KeyFunc(c)).Allow() {
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apperrors.RateLimited("podscribe").ToResponse())
			return
		}
		c.Next()
	}
}

// ClientKey returns the authenticated subject, falling back to client IP.
func ClientKey(c *gin.Context) string {
	if sub := c.GetString(ContextKeySubject); sub != "" {
		return "sub:" + sub
	}
	return "ip:" + c.ClientIP()
}

const limiterIdle = 10 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type limiterSet struct {
	mu      sync.Mutex
	every   rate.Limit
	burst   int
	entries map[string]*limiterEntry
	swept   time.Time
}

func newLimiterSet(every rate.Limit, burst int) *limiterSet {
	return &limiterSet{every: every, burst: burst, entries: make(map[string]*limiterEntry), swept: time.Now()}
}

// get returns the limiter for key. Idle limiters are dropped lazily.
func (s *limiterSet) get(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if now.Sub(s.swept) > limiterIdle {
		for k, e := range s.entries {
			if now.Sub(e.lastSeen) > limiterIdle {
				delete(s.entries, k)
			}
		}
		s.swept = now
	}

	e, ok := s.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(s.every, s.burst)}
		s.entries[key] = e
	}
	e.lastSeen = now
	return e.limiter
}

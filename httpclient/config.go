package httpclient

import (
	"fmt"
	"time"

	"github.com/kbukum/podscribe/resilience"
)

const defaultTimeout = 30 * time.Second

// Config configures the HTTP client.
type Config struct {
	// Service names the collaborator in errors and logs.
	Service string `yaml:"-" mapstructure:"-"`
	// BaseURL is prepended to request paths that are not absolute URLs.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	// Timeout bounds a single attempt. Defaults to 30s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// Headers are applied to every request.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`
	// Auth is applied to every request unless the request overrides it.
	Auth *AuthConfig `yaml:"-" mapstructure:"-"`
	// Retry configures retries of retryable failures. The zero value makes
	// a single attempt.
	Retry resilience.Policy `yaml:"retry" mapstructure:"retry"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.Service == "" {
		c.Service = "remote"
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("httpclient: timeout must be positive")
	}
	return nil
}

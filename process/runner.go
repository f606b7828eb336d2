package process

import (
	"context"
	"os/exec"
	"time"
)

// Runner executes commands. Media adapters depend on it so tests can
// substitute canned results.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// Config configures an Executor.
type Config struct {
	// GracePeriod is the default grace period for SIGTERM→SIGKILL.
	GracePeriod time.Duration `yaml:"grace_period,omitempty" mapstructure:"grace_period"`
	// Timeout bounds each invocation. Zero means no timeout.
	Timeout time.Duration `yaml:"timeout,omitempty" mapstructure:"timeout"`
}

// Executor is the Runner backed by real subprocesses.
type Executor struct {
	config Config
}

// NewExecutor creates an Executor.
func NewExecutor(cfg Config) *Executor {
	return &Executor{config: cfg}
}

// Run executes cmd with the executor's defaults applied.
func (e *Executor) Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.GracePeriod == 0 {
		cmd.GracePeriod = e.config.GracePeriod
	}
	if e.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.Timeout)
		defer cancel()
	}
	return Run(ctx, cmd)
}

// Available reports whether binary resolves on PATH.
func Available(binary string) bool {
	_, err := exec.LookPath(binary)
	return err == nil
}

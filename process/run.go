// Package process runs external media tools and maps their failures onto
// TOOL_NOT_FOUND and TOOL_INVOCATION_FAILED errors.
package process

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/kbukum/podscribe/errors"
)

// Run executes a subprocess and waits for it to complete. A binary missing
// from PATH yields TOOL_NOT_FOUND; a non-zero exit yields
// TOOL_INVOCATION_FAILED carrying the captured stderr. If ctx is canceled the
// process group gets SIGTERM, then SIGKILL after GracePeriod.
func Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.Binary == "" {
		return nil, errors.InvalidInput("binary", "binary is required")
	}
	path, err := exec.LookPath(cmd.Binary)
	if err != nil {
		return nil, errors.ToolNotFound(cmd.Binary, err)
	}

	gracePeriod := cmd.GracePeriod
	if gracePeriod == 0 {
		gracePeriod = 5 * time.Second
	}

	c := exec.CommandContext(ctx, path, cmd.Args...) //nolint:gosec // args are built by the media package
	c.Dir = cmd.Dir
	c.Env = mergeEnv(cmd.Env)

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	c.Cancel = func() error {
		if c.Process == nil {
			return nil
		}
		return syscall.Kill(-c.Process.Pid, syscall.SIGTERM)
	}
	c.WaitDelay = gracePeriod

	start := time.Now()
	err = c.Run()
	result := &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: c.ProcessState.ExitCode(),
		Duration: time.Since(start),
	}
	if err == nil {
		return result, nil
	}

	if ctx.Err() != nil {
		return result, errors.Timeout(cmd.Binary).WithCause(ctx.Err())
	}
	if stderrors.Is(err, exec.ErrNotFound) {
		return result, errors.ToolNotFound(cmd.Binary, err)
	}
	return result, errors.ToolInvocation(cmd.Binary, stderr.String(), err).
		WithDetail("exit_code", result.ExitCode)
}

func mergeEnv(extra []string) []string {
	if len(extra) == 0 {
		return nil
	}
	return append(os.Environ(), extra...)
}

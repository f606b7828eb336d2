// Package resilience retries calls to remote collaborators with capped
// exponential backoff. Only errors marked retryable are retried; a policy
// with MaxAttempts of 1 disables retrying entirely.
package resilience

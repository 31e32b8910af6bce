// Package retry defines the bounded retry policy applied around every
// external embedding and generation call. The policy is an explicit,
// injectable value (attempts, backoff bounds, retryable predicate) rather
// than a decorator, so tests can exercise it independent of any call site.
package retry

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/Shreyr69/hackrx/internal/httpx"
)

// Defaults mirror the behaviour of the upstream services' rate limits:
// three attempts with exponential backoff starting at one second.
const (
	defaultAttempts = 3
	defaultDelay    = 1 * time.Second
	defaultMaxDelay = 6 * time.Second
)

// Policy describes one bounded-retry schedule. The zero value is not valid;
// use [DefaultPolicy] or fill every field.
type Policy struct {
	// Attempts is the total number of tries, including the first.
	Attempts uint
	// Delay is the wait before the first retry; subsequent waits double.
	Delay time.Duration
	// MaxDelay caps the exponential backoff.
	MaxDelay time.Duration
	// RetryIf decides whether an error is transient. When nil,
	// [httpx.IsRetryable] is used.
	RetryIf func(error) bool
}

// DefaultPolicy returns the standard 3-attempt exponential schedule with
// transport-failure classification.
func DefaultPolicy() Policy {
	return Policy{
		Attempts: defaultAttempts,
		Delay:    defaultDelay,
		MaxDelay: defaultMaxDelay,
	}
}

// Do runs fn under the policy. Non-retryable errors abort immediately;
// retryable errors are retried with exponential backoff until the attempt
// budget is exhausted. The last error is returned undecorated so callers
// can still classify it with errors.As/Is.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	predicate := p.RetryIf
	if predicate == nil {
		predicate = httpx.IsRetryable
	}

	return retry.Do(fn,
		retry.Context(ctx),
		retry.Attempts(p.Attempts),
		retry.Delay(p.Delay),
		retry.MaxDelay(p.MaxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(predicate),
		retry.LastErrorOnly(true),
	)
}

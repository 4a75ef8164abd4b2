package uow

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go"
)

// ExecutionStrategy wraps one commit attempt. A retry capable strategy
// re-runs the whole attempt when it fails with a transient infrastructure
// fault; anything else propagates immediately.
type ExecutionStrategy interface {
	Execute(ctx context.Context, attempt func(ctx context.Context) error) error
}

// TransientError marks a fault that a re-run of the attempt may clear,
// such as lost connectivity or a deadlock victim.
type TransientError struct {
	Cause error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient fault: %s", e.Cause)
}

func (e *TransientError) Unwrap() error {
	return e.Cause
}

func Transient(cause error) error {
	return &TransientError{Cause: cause}
}

func IsTransient(err error) bool {
	var te *TransientError
	if errors.As(err, &te) {
		return true
	}

	return errors.Is(err, driver.ErrBadConn)
}

// OnceStrategy runs the attempt exactly once.
type OnceStrategy struct{}

func (OnceStrategy) Execute(ctx context.Context, attempt func(ctx context.Context) error) error {
	return attempt(ctx)
}

type RetryStrategy struct {
	attempts  uint
	delay     time.Duration
	retryable func(error) bool
}

type RetryOption func(*RetryStrategy)

func WithAttempts(attempts uint) RetryOption {
	return func(s *RetryStrategy) {
		s.attempts = attempts
	}
}

func WithDelay(delay time.Duration) RetryOption {
	return func(s *RetryStrategy) {
		s.delay = delay
	}
}

func WithRetryable(retryable func(error) bool) RetryOption {
	return func(s *RetryStrategy) {
		s.retryable = retryable
	}
}

func NewRetryStrategy(options ...RetryOption) *RetryStrategy {
	strategy := &RetryStrategy{
		attempts:  3,
		delay:     50 * time.Millisecond,
		retryable: IsTransient,
	}

	for _, option := range options {
		option(strategy)
	}

	return strategy
}

func (s *RetryStrategy) Execute(ctx context.Context, attempt func(ctx context.Context) error) error {
	return retry.Do(
		func() error {
			return attempt(ctx)
		},
		retry.Attempts(s.attempts),
		retry.Delay(s.delay),
		retry.RetryIf(s.retryable),
		retry.LastErrorOnly(true),
	)
}

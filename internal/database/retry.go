package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"github.com/sony/gobreaker"
)

// RetryConfig controls how store reads are retried on transient failures
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// DefaultRetryConfig retries twice with exponential backoff
var DefaultRetryConfig = RetryConfig{
	MaxRetries: 2,
	BaseDelay:  200 * time.Millisecond,
	MaxDelay:   2 * time.Second,
}

// retryable reports whether a read error is worth another attempt
func retryable(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, sql.ErrNoRows) &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}

// withRetry runs fn under the retry policy. With no retries configured fn is
// called exactly once.
func withRetry[R any](ctx context.Context, cfg RetryConfig, fn func() (R, error)) (R, error) {
	if cfg.MaxRetries <= 0 {
		return fn()
	}

	builder := retrypolicy.NewBuilder[R]().
		HandleIf(func(_ R, err error) bool { return retryable(err) }).
		WithMaxRetries(cfg.MaxRetries).
		ReturnLastFailure()
	if cfg.MaxDelay > cfg.BaseDelay && cfg.BaseDelay > 0 {
		builder = builder.WithBackoff(cfg.BaseDelay, cfg.MaxDelay)
	} else if cfg.BaseDelay > 0 {
		builder = builder.WithDelay(cfg.BaseDelay)
	}

	return failsafe.With(builder.Build()).WithContext(ctx).Get(fn)
}

// newBreaker opens after five consecutive read failures. Missing rows and
// cancelled requests do not count as failures.
func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !retryable(err)
		},
	})
}

// guardedRead runs fn with retries behind the store's circuit breaker
func guardedRead[R any](ctx context.Context, s *Store, fn func() (R, error)) (R, error) {
	out, err := s.breaker.Execute(func() (interface{}, error) {
		return withRetry(ctx, s.retry, fn)
	})
	if err != nil {
		var zero R
		return zero, err
	}
	return out.(R), nil
}

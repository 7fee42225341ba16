// Package retry executes fallible operations with exponential backoff.
//
// A Policy describes how many times an operation may be retried and how the
// delay between attempts grows. Only errors the policy's classifier marks as
// retryable are retried; everything else propagates immediately. When all
// attempts are spent the last error is wrapped in an *ExhaustedError.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Classifier reports whether an error is transient and worth retrying.
type Classifier func(error) bool

// Policy describes retry behavior for a single operation.
type Policy struct {
	MaxRetries      int           // additional attempts after the first; 0 means exactly one attempt
	InitialDelay    time.Duration // delay before the first retry
	MaxDelay        time.Duration // backoff cap
	ExponentialBase float64       // delay multiplier between attempts
	Retryable       Classifier    // nil retries every error
}

// DefaultPolicy mirrors the store-query defaults: 3 retries, 1s initial
// delay doubling up to 10s.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:      3,
		InitialDelay:    time.Second,
		MaxDelay:        10 * time.Second,
		ExponentialBase: 2.0,
	}
}

// next advances the backoff delay, capped at MaxDelay.
func (p Policy) next(delay time.Duration) time.Duration {
	base := p.ExponentialBase
	if base <= 1 {
		return min(delay, p.MaxDelay)
	}
	scaled := time.Duration(float64(delay) * base)
	if p.MaxDelay > 0 && scaled > p.MaxDelay {
		return p.MaxDelay
	}
	return scaled
}

func (p Policy) retryable(err error) bool {
	if p.Retryable == nil {
		return true
	}
	return p.Retryable(err)
}

// Observer receives retry lifecycle events. Attempt numbers are 1-based.
type Observer interface {
	OnRetry(ctx context.Context, attempt int, delay time.Duration, err error)
	OnExhausted(ctx context.Context, attempts int, err error)
}

// NopObserver discards all events.
type NopObserver struct{}

func (NopObserver) OnRetry(context.Context, int, time.Duration, error) {}
func (NopObserver) OnExhausted(context.Context, int, error)           {}

// ExhaustedError wraps the last underlying error after all attempts failed.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("operation failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// IsExhausted reports whether err carries an *ExhaustedError.
func IsExhausted(err error) bool {
	var exhausted *ExhaustedError
	return errors.As(err, &exhausted)
}

// Do executes op under the policy. Each invocation is independent; the
// policy holds no mutable state and may be shared between goroutines.
//
// Context cancellation is honored both during the backoff sleep and when op
// itself returns the context's error; it is never treated as retryable.
func Do[T any](ctx context.Context, p Policy, obs Observer, op func(context.Context) (T, error)) (T, error) {
	var zero T
	if obs == nil {
		obs = NopObserver{}
	}

	delay := p.InitialDelay
	var lastErr error

	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return zero, err
		}
		if !p.retryable(err) {
			return zero, err
		}
		if attempt == p.MaxRetries {
			break
		}

		obs.OnRetry(ctx, attempt+1, delay, err)
		if err := sleep(ctx, delay); err != nil {
			return zero, err
		}
		delay = p.next(delay)
	}

	attempts := p.MaxRetries + 1
	obs.OnExhausted(ctx, attempts, lastErr)
	return zero, &ExhaustedError{Attempts: attempts, Err: lastErr}
}

// sleep waits for d or until ctx is done, whichever comes first.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

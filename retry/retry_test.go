package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errTransient = errors.New("connection reset")

func fastPolicy(maxRetries int) Policy {
	return Policy{
		MaxRetries:      maxRetries,
		InitialDelay:    time.Millisecond,
		MaxDelay:        10 * time.Millisecond,
		ExponentialBase: 2.0,
	}
}

type recordingObserver struct {
	retries   []time.Duration
	exhausted int
	lastErr   error
}

func (o *recordingObserver) OnRetry(_ context.Context, _ int, delay time.Duration, _ error) {
	o.retries = append(o.retries, delay)
}

func (o *recordingObserver) OnExhausted(_ context.Context, attempts int, err error) {
	o.exhausted = attempts
	o.lastErr = err
}

func TestDo_ExhaustsAfterMaxRetries(t *testing.T) {
	attempts := 0
	obs := &recordingObserver{}

	_, err := Do(context.Background(), fastPolicy(3), obs, func(context.Context) (int, error) {
		attempts++
		return 0, errTransient
	})

	if attempts != 4 {
		t.Errorf("expected 4 attempts, got %d", attempts)
	}

	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected ExhaustedError, got %v", err)
	}
	if exhausted.Attempts != 4 {
		t.Errorf("expected 4 recorded attempts, got %d", exhausted.Attempts)
	}
	if !errors.Is(err, errTransient) {
		t.Errorf("exhausted error should wrap the last cause")
	}
	if obs.exhausted != 4 {
		t.Errorf("observer saw %d attempts, want 4", obs.exhausted)
	}
}

func TestDo_SucceedsAfterOneRetry(t *testing.T) {
	attempts := 0
	obs := &recordingObserver{}

	got, err := Do(context.Background(), fastPolicy(3), obs, func(context.Context) (string, error) {
		attempts++
		if attempts == 1 {
			return "", errTransient
		}
		return "ok", nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" {
		t.Errorf("expected ok, got %q", got)
	}
	if len(obs.retries) != 1 {
		t.Errorf("expected exactly 1 retry, got %d", len(obs.retries))
	}
}

func TestDo_NonRetryableFailsImmediately(t *testing.T) {
	fatal := errors.New("malformed query")
	p := fastPolicy(5)
	p.Retryable = func(err error) bool { return errors.Is(err, errTransient) }

	attempts := 0
	_, err := Do(context.Background(), p, nil, func(context.Context) (int, error) {
		attempts++
		return 0, fatal
	})

	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
	if !errors.Is(err, fatal) {
		t.Errorf("expected the original error, got %v", err)
	}
	if IsExhausted(err) {
		t.Errorf("non-retryable error must not be wrapped as exhausted")
	}
}

func TestDo_BackoffSequence(t *testing.T) {
	obs := &recordingObserver{}

	_, _ = Do(context.Background(), fastPolicy(6), obs, func(context.Context) (int, error) {
		return 0, errTransient
	})

	want := []time.Duration{
		1 * time.Millisecond,
		2 * time.Millisecond,
		4 * time.Millisecond,
		8 * time.Millisecond,
		10 * time.Millisecond,
		10 * time.Millisecond,
	}
	if len(obs.retries) != len(want) {
		t.Fatalf("expected %d retries, got %d", len(want), len(obs.retries))
	}
	for i, d := range want {
		if obs.retries[i] != d {
			t.Errorf("delay %d: got %v, want %v", i, obs.retries[i], d)
		}
	}
}

func TestDo_ZeroRetriesMeansSingleAttempt(t *testing.T) {
	attempts := 0
	obs := &recordingObserver{}

	start := time.Now()
	_, err := Do(context.Background(), Policy{MaxRetries: 0, InitialDelay: time.Second}, obs, func(context.Context) (int, error) {
		attempts++
		return 0, errTransient
	})
	elapsed := time.Since(start)

	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
	if len(obs.retries) != 0 {
		t.Errorf("expected no retries, got %d", len(obs.retries))
	}
	if elapsed > 100*time.Millisecond {
		t.Errorf("no sleep expected for zero retries, took %v", elapsed)
	}
	if !IsExhausted(err) {
		t.Errorf("expected exhausted error, got %v", err)
	}
}

func TestDo_CancellationDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	p := Policy{
		MaxRetries:      5,
		InitialDelay:    time.Minute,
		MaxDelay:        time.Minute,
		ExponentialBase: 2.0,
	}

	attempts := 0
	done := make(chan error, 1)
	go func() {
		_, err := Do(ctx, p, nil, func(context.Context) (int, error) {
			attempts++
			return 0, errTransient
		})
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if attempts != 1 {
			t.Errorf("cancellation must abort before the next attempt, got %d attempts", attempts)
		}
	case <-time.After(time.Second):
		t.Fatal("Do did not return after cancellation")
	}
}

func TestDo_CancellationFromOperationNotRetried(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	_, err := Do(ctx, fastPolicy(3), nil, func(ctx context.Context) (int, error) {
		attempts++
		return 0, ctx.Err()
	})

	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestDo_ConcurrentInvocationsIndependent(t *testing.T) {
	p := fastPolicy(2)
	results := make(chan error, 10)

	for i := 0; i < 10; i++ {
		go func(i int) {
			_, err := Do(context.Background(), p, nil, func(context.Context) (int, error) {
				if i%2 == 0 {
					return i, nil
				}
				return 0, errTransient
			})
			results <- err
		}(i)
	}

	var failures int
	for i := 0; i < 10; i++ {
		if err := <-results; err != nil {
			failures++
			if !IsExhausted(err) {
				t.Errorf("unexpected error kind: %v", err)
			}
		}
	}
	if failures != 5 {
		t.Errorf("expected 5 exhausted invocations, got %d", failures)
	}
}

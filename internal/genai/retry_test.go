package genai

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetryPolicySucceedsFirstAttempt(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, Retryable: func(error) bool { return true }}

	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})
	if err != nil {
		t.Errorf("expected success, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 attempt, got %d", calls)
	}
}

func TestRetryPolicyRecoversMidBudget(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, Retryable: func(error) bool { return true }}

	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 2 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Errorf("expected recovery on second attempt, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 attempts, got %d", calls)
	}
}

func TestRetryPolicyExhaustsBudget(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, Retryable: func(error) bool { return true }}

	transient := errors.New("transient")
	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return transient
	})
	if !errors.Is(err, transient) {
		t.Errorf("expected last error back, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
}

func TestRetryPolicyFailsFastOnNonRetryable(t *testing.T) {
	fatal := errors.New("bad request")
	p := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, Retryable: func(err error) bool { return !errors.Is(err, fatal) }}

	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return fatal
	})
	if !errors.Is(err, fatal) {
		t.Errorf("expected fatal error back, got %v", err)
	}
	if calls != 1 {
		t.Errorf("non-retryable error must not be retried, got %d attempts", calls)
	}
}

func TestRetryPolicyHonorsContextCancellation(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Minute, Retryable: func(error) bool { return true }}

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := p.Do(ctx, func(ctx context.Context) error {
		calls++
		return errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled during backoff, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected no further attempts after cancellation, got %d", calls)
	}
}

func TestDefaultRetryPolicyShape(t *testing.T) {
	p := DefaultRetryPolicy()
	if p.MaxAttempts != 3 {
		t.Errorf("expected 3 attempts, got %d", p.MaxAttempts)
	}
	if p.BaseDelay != 5*time.Second {
		t.Errorf("expected 5s base delay, got %v", p.BaseDelay)
	}
	if p.Retryable == nil {
		t.Error("expected a retryability predicate")
	}
}

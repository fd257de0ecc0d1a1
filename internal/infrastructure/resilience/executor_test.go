package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
)

func fastRetryConfig() Config {
	return Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: 1 * time.Millisecond,
		RetryMaxBackoff:     2 * time.Millisecond,
		RetryMultiplier:     2,
		BreakerEnabled:      false,
	}
}

func TestExecuteRetriesTransientPublishFailure(t *testing.T) {
	exec := NewExecutor(fastRetryConfig())

	attempts := 0
	errTimeout := errors.New("nats: timeout")
	err := exec.Execute(context.Background(), "nats.publish", func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errTimeout
		}
		return nil
	}, func(err error) ErrorClassification {
		return ErrorClassification{
			Retryable:     errors.Is(err, errTimeout),
			RecordFailure: true,
		}
	})
	if err != nil {
		t.Fatalf("expected publish to succeed after retries, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestExecuteDoesNotRetryPermanentFailure(t *testing.T) {
	exec := NewExecutor(fastRetryConfig())

	attempts := 0
	errBadSubject := errors.New("nats: invalid subject")
	err := exec.Execute(context.Background(), "nats.publish", func(context.Context) error {
		attempts++
		return errBadSubject
	}, func(error) ErrorClassification {
		return ErrorClassification{
			Retryable:     false,
			RecordFailure: false,
		}
	})
	if !errors.Is(err, errBadSubject) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func breakerConfig() Config {
	return Config{
		RetryMaxAttempts:        1,
		RetryInitialBackoff:     1 * time.Millisecond,
		RetryMaxBackoff:         1 * time.Millisecond,
		RetryMultiplier:         2,
		BreakerEnabled:          true,
		BreakerMinRequests:      2,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      50 * time.Millisecond,
		BreakerHalfOpenMaxCalls: 1,
	}
}

func TestExecuteOpensCircuitAfterRepeatedPublishFailures(t *testing.T) {
	exec := NewExecutor(breakerConfig())

	errDown := errors.New("nats: no servers available")
	classifier := func(error) ErrorClassification {
		return ErrorClassification{
			Retryable:     false,
			RecordFailure: true,
		}
	}

	for i := 0; i < 2; i++ {
		err := exec.Execute(context.Background(), "nats.publish", func(context.Context) error {
			return errDown
		}, classifier)
		if !errors.Is(err, errDown) {
			t.Fatalf("expected connection error on iteration %d, got %v", i, err)
		}
	}

	err := exec.Execute(context.Background(), "nats.publish", func(context.Context) error {
		t.Fatalf("circuit should be open and must not call the publish operation")
		return nil
	}, classifier)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected open state error, got %v", err)
	}
}

func TestExecuteIsolatesBreakersPerOperation(t *testing.T) {
	exec := NewExecutor(breakerConfig())

	errDown := errors.New("nats: no servers available")
	classifier := func(error) ErrorClassification {
		return ErrorClassification{
			Retryable:     false,
			RecordFailure: true,
		}
	}

	for i := 0; i < 2; i++ {
		_ = exec.Execute(context.Background(), "nats.publish", func(context.Context) error {
			return errDown
		}, classifier)
	}

	// Tripping the publish breaker must not affect other outbound operations.
	err := exec.Execute(context.Background(), "storage.save", func(context.Context) error {
		return nil
	}, classifier)
	if err != nil {
		t.Fatalf("expected storage.save to stay closed, got %v", err)
	}
}

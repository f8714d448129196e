package common

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"moltscope/internal/service"
)

var testOpts = service.RetryOptions{
	MaxAttempts:  3,
	InitialDelay: time.Millisecond,
	MaxDelay:     5 * time.Millisecond,
	Multiplier:   2.0,
}

func TestWithRetry_SucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	err := WithRetry(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return &RetryableError{Err: fmt.Errorf("transient"), Retryable: true}
		}
		return nil
	}, testOpts)

	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestWithRetry_NonRetryableAbortsImmediately(t *testing.T) {
	attempts := 0
	err := WithRetry(context.Background(), func() error {
		attempts++
		return &RetryableError{Err: fmt.Errorf("fatal"), Retryable: false}
	}, testOpts)

	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
}

func TestWithRetry_ExhaustionWrapsMaxRetries(t *testing.T) {
	err := WithRetry(context.Background(), func() error {
		return fmt.Errorf("api: %w", ErrEvaluator)
	}, testOpts)

	if !errors.Is(err, ErrMaxRetries) {
		t.Errorf("expected ErrMaxRetries, got %v", err)
	}
}

func TestWithRetry_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithRetry(ctx, func() error {
		return fmt.Errorf("api: %w", ErrEvaluator)
	}, testOpts)

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "rate limit", err: fmt.Errorf("api: %w", ErrRateLimit), want: true},
		{name: "evaluator failure", err: fmt.Errorf("api: %w", ErrEvaluator), want: true},
		{name: "deadline", err: context.DeadlineExceeded, want: true},
		{name: "retryable wrapper", err: &RetryableError{Err: fmt.Errorf("x"), Retryable: true}, want: true},
		{name: "non-retryable wrapper", err: &RetryableError{Err: fmt.Errorf("x"), Retryable: false}, want: false},
		{name: "plain error", err: fmt.Errorf("x"), want: false},
		{name: "not found", err: ErrNotFound, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

package client

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastRetryConfig(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:       attempts,
		InitialBackoff:    1 * time.Millisecond,
		MaxBackoff:        5 * time.Millisecond,
		BackoffMultiplier: 2.0,
	}
}

func TestRetryWithBackoff_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := retryWithBackoff(context.Background(), fastRetryConfig(3), func() error {
		calls++
		return nil
	})

	if err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetryWithBackoff_RetriesServerErrors(t *testing.T) {
	calls := 0
	err := retryWithBackoff(context.Background(), fastRetryConfig(3), func() error {
		calls++
		if calls < 3 {
			return &APIError{StatusCode: 502, Class: ErrorClassServer}
		}
		return nil
	})

	if err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryWithBackoff_NoRetryOnClientError(t *testing.T) {
	calls := 0
	err := retryWithBackoff(context.Background(), fastRetryConfig(3), func() error {
		calls++
		return &APIError{StatusCode: 404, Class: ErrorClassClient}
	})

	if err == nil {
		t.Fatal("Expected error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (client errors are not retried)", calls)
	}
}

func TestRetryWithBackoff_Exhaustion(t *testing.T) {
	calls := 0
	err := retryWithBackoff(context.Background(), fastRetryConfig(3), func() error {
		calls++
		return &APIError{StatusCode: 500, Class: ErrorClassServer}
	})

	if !errors.Is(err, ErrRetryExhausted) {
		t.Errorf("Expected ErrRetryExhausted, got %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryWithBackoff_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	config := RetryConfig{
		MaxAttempts:       5,
		InitialBackoff:    500 * time.Millisecond,
		MaxBackoff:        time.Second,
		BackoffMultiplier: 2.0,
	}

	calls := 0
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := retryWithBackoff(ctx, config, func() error {
		calls++
		return &APIError{Class: ErrorClassNetwork}
	})

	if !errors.Is(err, ErrContextCancelled) {
		t.Errorf("Expected ErrContextCancelled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

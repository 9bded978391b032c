package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func stubAfter(t *testing.T, fn func(time.Duration) <-chan time.Time) {
	t.Helper()
	original := after
	after = fn
	t.Cleanup(func() { after = original })
}

func TestWaitForZeroDuration(t *testing.T) {
	if err := WaitFor(context.Background(), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := WaitFor(ctx, 0); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestWaitForHonoursCancellation(t *testing.T) {
	stubAfter(t, func(time.Duration) <-chan time.Time {
		return make(chan time.Time)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := WaitFor(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestWaitForCompletes(t *testing.T) {
	var waited time.Duration
	stubAfter(t, func(d time.Duration) <-chan time.Time {
		waited = d
		ch := make(chan time.Time, 1)
		ch <- time.Now()
		return ch
	})

	if err := WaitFor(context.Background(), 3*time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if waited != 3*time.Second {
		t.Fatalf("expected to wait 3s, got %s", waited)
	}
}

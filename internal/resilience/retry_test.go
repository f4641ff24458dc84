package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sells-group/retreat-leads/internal/config"
)

func fastBackoff() Backoff {
	return Backoff{MaxAttempts: 3, Initial: time.Millisecond, Max: 5 * time.Millisecond, Multiplier: 2}
}

func TestRetry_SuccessOnFirstAttempt(t *testing.T) {
	var calls int
	err := Retry(context.Background(), fastBackoff(), "test", func(_ context.Context) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestRetry_SuccessAfterTransient(t *testing.T) {
	var calls int
	err := Retry(context.Background(), fastBackoff(), "test", func(_ context.Context) error {
		calls++
		if calls < 3 {
			return &StatusError{Service: "places", StatusCode: 503}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	var calls int
	err := Retry(context.Background(), fastBackoff(), "test", func(_ context.Context) error {
		calls++
		return &StatusError{Service: "places", StatusCode: 429}
	})
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestRetry_PermanentErrorNotRetried(t *testing.T) {
	var calls int
	err := Retry(context.Background(), fastBackoff(), "test", func(_ context.Context) error {
		calls++
		return &StatusError{Service: "places", StatusCode: 400}
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestRetry_ContextCancelledStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls int
	b := Backoff{MaxAttempts: 5, Initial: time.Hour, Max: time.Hour}

	done := make(chan error, 1)
	go func() {
		done <- Retry(ctx, b, "test", func(_ context.Context) error {
			calls++
			return &StatusError{Service: "places", StatusCode: 503}
		})
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected error")
		}
	case <-time.After(time.Second):
		t.Fatal("retry did not stop on cancel")
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestRetry_CustomRetryable(t *testing.T) {
	var calls int
	b := fastBackoff()
	b.Retryable = func(error) bool { return true }

	_ = Retry(context.Background(), b, "test", func(_ context.Context) error {
		calls++
		return errors.New("anything")
	})
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestRetryVal_ReturnsValue(t *testing.T) {
	var calls int
	got, err := RetryVal(context.Background(), fastBackoff(), "test", func(_ context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("i/o timeout")
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" {
		t.Errorf("expected ok, got %q", got)
	}
}

func TestBackoff_DelayCapped(t *testing.T) {
	b := Backoff{MaxAttempts: 10, Initial: 100 * time.Millisecond, Max: 300 * time.Millisecond, Multiplier: 2}
	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 300 * time.Millisecond, 300 * time.Millisecond}
	for i, w := range want {
		if got := b.Delay(i); got != w {
			t.Errorf("attempt %d: expected %v, got %v", i, w, got)
		}
	}
}

func TestBackoff_JitterWithinBounds(t *testing.T) {
	b := Backoff{Initial: 100 * time.Millisecond, Max: time.Second, Multiplier: 2, Jitter: 0.5}
	for j := 0; j < 100; j++ {
		d := b.Delay(0)
		if d < 50*time.Millisecond || d > 150*time.Millisecond {
			t.Fatalf("delay %v outside jitter bounds", d)
		}
	}
}

func TestFromConfig(t *testing.T) {
	b := FromConfig(config.RetryConfig{MaxAttempts: 5, InitialBackoff: 200, MaxBackoff: 2000, Multiplier: 3, JitterFraction: 0})
	if b.MaxAttempts != 5 || b.Initial != 200*time.Millisecond || b.Max != 2*time.Second || b.Multiplier != 3 || b.Jitter != 0 {
		t.Errorf("unexpected backoff: %+v", b)
	}

	d := FromConfig(config.RetryConfig{JitterFraction: -1})
	if d.MaxAttempts != DefaultBackoff().MaxAttempts || d.Jitter != DefaultBackoff().Jitter {
		t.Errorf("expected defaults, got %+v", d)
	}
}

package retry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"jobradar/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPolicy(maxRetries int) Policy {
	return Policy{
		MaxRetries: maxRetries,
		BaseDelay:  10 * time.Millisecond,
		Logger:     discardLogger(),
	}
}

func TestDo_SucceedsOnFirstAttempt(t *testing.T) {
	calls := 0
	got, err := Do(context.Background(), testPolicy(2), "fetch", func(_ context.Context) (string, error) {
		calls++
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" {
		t.Fatalf("got %q, want ok", got)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestDo_RetriesOn5xx_SucceedsOnSecondAttempt(t *testing.T) {
	calls := 0
	got, err := Do(context.Background(), testPolicy(2), "fetch", func(_ context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, &model.HTTPError{StatusCode: 503, Err: errors.New("service unavailable")}
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 42 {
		t.Fatalf("got %d, want 42", got)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestDo_DoesNotRetryDefinitiveFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"4xx", &model.HTTPError{StatusCode: 404, Err: errors.New("not found")}},
		{"schema violation", model.ErrSchemaViolation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			_, err := Do(context.Background(), testPolicy(2), "extract", func(_ context.Context) (struct{}, error) {
				calls++
				return struct{}{}, tt.err
			})
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if calls != 1 {
				t.Fatalf("expected 1 call (no retry), got %d", calls)
			}
		})
	}
}

func TestDo_GivesUpAfterMaxRetries(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), testPolicy(2), "fetch", func(_ context.Context) (struct{}, error) {
		calls++
		return struct{}{}, &model.HTTPError{StatusCode: 500, Err: errors.New("internal error")}
	})
	if err == nil {
		t.Fatal("expected error after max retries, got nil")
	}
	// 1 initial + 2 retries = 3
	if calls != 3 {
		t.Fatalf("expected 3 calls (1 + 2 retries), got %d", calls)
	}
}

func TestDo_RespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	p := Policy{MaxRetries: 2, BaseDelay: time.Second, Logger: discardLogger()}
	_, err := Do(ctx, p, "fetch", func(_ context.Context) (struct{}, error) {
		calls++
		return struct{}{}, &model.HTTPError{StatusCode: 500, Err: errors.New("internal error")}
	})
	if err == nil {
		t.Fatal("expected error from context cancellation, got nil")
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call before cancellation, got %d", calls)
	}
}

func TestDo_RetryAfterOverridesBackoff(t *testing.T) {
	calls := 0
	start := time.Now()
	_, err := Do(context.Background(), testPolicy(1), "notify", func(_ context.Context) (struct{}, error) {
		calls++
		if calls == 1 {
			return struct{}{}, &model.HTTPError{StatusCode: 429, RetryAfter: 30 * time.Millisecond}
		}
		return struct{}{}, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("Retry-After not honored: elapsed %v", elapsed)
	}
}

package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestLimiter_AcquireRelease(t *testing.T) {
	defer goleak.VerifyNone(t)

	limiter := NewLimiter(2, time.Second, ErrTooManyImports)
	ctx := context.Background()

	if got := limiter.Available(); got != 2 {
		t.Errorf("initial Available = %d, want 2", got)
	}

	if err := limiter.Acquire(ctx); err != nil {
		t.Fatalf("first Acquire failed: %v", err)
	}
	if err := limiter.Acquire(ctx); err != nil {
		t.Fatalf("second Acquire failed: %v", err)
	}
	if got := limiter.ActiveCount(); got != 2 {
		t.Errorf("ActiveCount = %d, want 2", got)
	}
	if got := limiter.Available(); got != 0 {
		t.Errorf("Available = %d, want 0", got)
	}

	limiter.Release()
	limiter.Release()

	if got := limiter.ActiveCount(); got != 0 {
		t.Errorf("final ActiveCount = %d, want 0", got)
	}
}

func TestLimiter_BusyError(t *testing.T) {
	defer goleak.VerifyNone(t)

	tests := []struct {
		name string
		busy error
	}{
		{"imports", ErrTooManyImports},
		{"downloads", ErrTooManyDownloads},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter := NewLimiter(1, 50*time.Millisecond, tt.busy)
			ctx := context.Background()

			if err := limiter.Acquire(ctx); err != nil {
				t.Fatalf("Acquire failed: %v", err)
			}
			defer limiter.Release()

			start := time.Now()
			err := limiter.Acquire(ctx)
			if !errors.Is(err, tt.busy) {
				t.Errorf("expected %v, got %v", tt.busy, err)
			}
			if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
				t.Errorf("timeout too fast: %v", elapsed)
			}
		})
	}
}

func TestLimiter_ConcurrentAccess(t *testing.T) {
	defer goleak.VerifyNone(t)

	const maxConcurrent = 3
	const totalRequests = 10

	limiter := NewLimiter(maxConcurrent, time.Second, ErrTooManyDownloads)

	var wg sync.WaitGroup
	var mu sync.Mutex
	maxObserved := 0

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			if err := limiter.Acquire(context.Background()); err != nil {
				t.Errorf("Acquire failed: %v", err)
				return
			}
			defer limiter.Release()

			mu.Lock()
			if current := limiter.ActiveCount(); current > maxObserved {
				maxObserved = current
			}
			mu.Unlock()

			time.Sleep(10 * time.Millisecond)
		}()
	}

	wg.Wait()

	if maxObserved > maxConcurrent {
		t.Errorf("exceeded max concurrent: observed %d, max %d", maxObserved, maxConcurrent)
	}
	if got := limiter.ActiveCount(); got != 0 {
		t.Errorf("final ActiveCount = %d, want 0", got)
	}
}

func TestLimiter_TryAcquire(t *testing.T) {
	limiter := NewLimiter(1, time.Second, nil)

	if !limiter.TryAcquire() {
		t.Fatal("first TryAcquire should succeed")
	}
	if limiter.TryAcquire() {
		t.Error("second TryAcquire should fail")
		limiter.Release()
	}

	limiter.Release()

	if !limiter.TryAcquire() {
		t.Error("TryAcquire after Release should succeed")
	}
	limiter.Release()
}

func TestLimiter_ContextCancellation(t *testing.T) {
	defer goleak.VerifyNone(t)

	limiter := NewLimiter(1, 5*time.Second, ErrTooManyImports)
	if err := limiter.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer limiter.Release()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- limiter.Acquire(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Error("Acquire did not return after context cancellation")
	}
}

func TestLimiter_WaitForDrain(t *testing.T) {
	defer goleak.VerifyNone(t)

	limiter := NewLimiter(2, time.Second, ErrTooManyDownloads)
	ctx := context.Background()

	if err := limiter.WaitForDrain(ctx); err != nil {
		t.Fatalf("WaitForDrain on idle limiter: %v", err)
	}

	_ = limiter.Acquire(ctx)
	_ = limiter.Acquire(ctx)

	drainDone := make(chan error, 1)
	go func() {
		drainDone <- limiter.WaitForDrain(ctx)
	}()

	select {
	case <-drainDone:
		t.Fatal("WaitForDrain returned too early")
	case <-time.After(80 * time.Millisecond):
	}

	limiter.Release()
	limiter.Release()

	select {
	case err := <-drainDone:
		if err != nil {
			t.Errorf("WaitForDrain returned error: %v", err)
		}
	case <-time.After(time.Second):
		t.Error("WaitForDrain did not complete after all released")
	}
}

func TestLimiter_WaitForDrain_ContextCancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	limiter := NewLimiter(1, time.Second, ErrTooManyImports)
	_ = limiter.Acquire(context.Background())
	defer limiter.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	if err := limiter.WaitForDrain(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context.DeadlineExceeded, got %v", err)
	}
}

func TestLimiter_StatusAndDefaults(t *testing.T) {
	limiter := NewLimiter(3, time.Second, ErrTooManyImports)
	_ = limiter.Acquire(context.Background())

	want := LimiterStatus{Active: 1, Available: 2, MaxConcurrent: 3}
	if got := limiter.Status(); got != want {
		t.Errorf("Status = %+v, want %+v", got, want)
	}
	limiter.Release()

	if got := NewLimiter(0, 0, nil).MaxConcurrent(); got != DefaultMaxConcurrent {
		t.Errorf("default MaxConcurrent = %d, want %d", got, DefaultMaxConcurrent)
	}
}

package core

// limiter.go implements concurrency control for imports and pack downloads.
//
// A Limiter is a semaphore with a bounded wait. When every slot is taken,
// Acquire waits up to maxWait and then fails with the limiter's busy error
// (ErrTooManyImports or ErrTooManyDownloads). WaitForDrain blocks until all
// holders have released, which the server uses during shutdown.

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrTooManyImports is returned when every import slot is occupied and the
	// wait timeout expires.
	ErrTooManyImports = errors.New("too many imports in progress, please try again later")

	// ErrTooManyDownloads is returned when every download slot is occupied and
	// the wait timeout expires.
	ErrTooManyDownloads = errors.New("too many downloads in progress, please try again later")
)

const (
	DefaultMaxConcurrent = 4
	DefaultMaxWaitTime   = 30 * time.Second
)

// Limiter bounds the number of concurrent holders.
type Limiter struct {
	semaphore chan struct{}
	maxWait   time.Duration
	busy      error

	mu     sync.RWMutex
	active int
}

// NewLimiter creates a limiter with maxConcurrent slots. Acquire returns busy
// when no slot frees up within maxWait.
func NewLimiter(maxConcurrent int, maxWait time.Duration, busy error) *Limiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}
	if busy == nil {
		busy = ErrTooManyImports
	}

	return &Limiter{
		semaphore: make(chan struct{}, maxConcurrent),
		maxWait:   maxWait,
		busy:      busy,
	}
}

// Acquire takes a slot. The caller must Release it exactly once.
func (l *Limiter) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil

	case <-waitCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return l.busy
	}
}

// TryAcquire takes a slot without blocking.
func (l *Limiter) TryAcquire() bool {
	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return true
	default:
		return false
	}
}

// Release frees a slot taken by Acquire or TryAcquire.
func (l *Limiter) Release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()

	<-l.semaphore
}

func (l *Limiter) ActiveCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

func (l *Limiter) MaxConcurrent() int {
	return cap(l.semaphore)
}

func (l *Limiter) Available() int {
	return cap(l.semaphore) - len(l.semaphore)
}

// WaitForDrain blocks until no slot is held or ctx is done.
func (l *Limiter) WaitForDrain(ctx context.Context) error {
	if l.ActiveCount() == 0 {
		return nil
	}

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if l.ActiveCount() == 0 {
				return nil
			}
		}
	}
}

// LimiterStatus is a snapshot of a limiter for the health endpoint.
type LimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

func (l *Limiter) Status() LimiterStatus {
	l.mu.RLock()
	active := l.active
	l.mu.RUnlock()

	return LimiterStatus{
		Active:        active,
		Available:     cap(l.semaphore) - len(l.semaphore),
		MaxConcurrent: cap(l.semaphore),
	}
}

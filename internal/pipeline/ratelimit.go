package pipeline

import (
	"context"
	"sync"
	"time"
)

// RateLimiter caps calls within a rolling window. It is the single
// synchronization point shared by all concurrent batch conversions in
// one ingestion run: the grant log lives behind the mutex and Acquire is
// its only operation.
type RateLimiter struct {
	mu     sync.Mutex
	max    int
	window time.Duration
	grants []time.Time

	// Injected for tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRateLimiter allows at most maxCalls per rolling window.
func NewRateLimiter(maxCalls int, window time.Duration) *RateLimiter {
	if maxCalls <= 0 {
		maxCalls = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		max:    maxCalls,
		window: window,
		grants: make([]time.Time, 0, maxCalls),
		now:    time.Now,
		sleep:  sleepCtx,
	}
}

// Acquire blocks until a call slot is available or ctx is done. The
// limiter keeps a log of grant timestamps; a caller proceeds while fewer
// than max grants sit inside the trailing window, otherwise it waits for
// the oldest grant to age out. This holds the ceiling over every
// trailing window, not just windows anchored at the first call.
func (l *RateLimiter) Acquire(ctx context.Context) error {
	for {
		l.mu.Lock()
		now := l.now()
		l.pruneLocked(now)
		if len(l.grants) < l.max {
			l.grants = append(l.grants, now)
			l.mu.Unlock()
			return nil
		}
		wait := l.grants[0].Add(l.window).Sub(now)
		l.mu.Unlock()

		if err := l.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// pruneLocked drops grants that have aged out of the trailing window.
func (l *RateLimiter) pruneLocked(now time.Time) {
	cutoff := now.Add(-l.window)
	i := 0
	for i < len(l.grants) && !l.grants[i].After(cutoff) {
		i++
	}
	if i > 0 {
		l.grants = append(l.grants[:0], l.grants[i:]...)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

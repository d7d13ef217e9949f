// Package ratelimit provides request pacing for LLM clients.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// DefaultInterval is the minimum spacing between upstream requests.
const DefaultInterval = 16 * time.Second

// Limiter defines the interface for request pacing implementations.
type Limiter interface {
	// Wait blocks until the minimum interval since the previous request has
	// elapsed, or the context is cancelled. On success the request slot is
	// consumed.
	Wait(ctx context.Context) error

	// Stats returns current limiter statistics.
	Stats() Stats
}

// Stats represents current limiter statistics.
type Stats struct {
	Interval        time.Duration `json:"interval"`
	LastRequestTime time.Time     `json:"last_request_time"`
	WaitCount       int64         `json:"wait_count"` // requests that had to sleep
}

// IntervalLimiter spaces requests at least a fixed interval apart. The
// interval is measured from the start of the previous request, so a slow
// upstream call counts against its own gap.
type IntervalLimiter struct {
	mu        sync.Mutex
	interval  time.Duration
	last      time.Time
	waitCount int64
	now       func() time.Time
}

// NewIntervalLimiter creates a limiter enforcing the given minimum gap.
// A non-positive interval falls back to DefaultInterval.
func NewIntervalLimiter(interval time.Duration) *IntervalLimiter {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &IntervalLimiter{interval: interval, now: time.Now}
}

// Wait blocks until the gap since the previous request is at least the
// configured interval.
func (l *IntervalLimiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	now := l.now()
	var sleep time.Duration
	if !l.last.IsZero() {
		if elapsed := now.Sub(l.last); elapsed < l.interval {
			sleep = l.interval - elapsed
		}
	}
	if sleep <= 0 {
		l.last = now
		l.mu.Unlock()
		return nil
	}
	l.waitCount++
	// Claim the slot before sleeping so concurrent callers queue behind it.
	l.last = now.Add(sleep)
	l.mu.Unlock()

	timer := time.NewTimer(sleep)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err() //nolint:wrapcheck // context error propagated as-is
	case <-timer.C:
		return nil
	}
}

// Stats returns current limiter statistics.
func (l *IntervalLimiter) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Stats{
		Interval:        l.interval,
		LastRequestTime: l.last,
		WaitCount:       l.waitCount,
	}
}

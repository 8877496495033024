package utils

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter inserts a fixed pause after each page check
type RateLimiter struct {
	limit rate.Limit
	delay time.Duration
}

// NewRateLimiter creates a RateLimiter with the given pause in milliseconds.
// A non-positive delay disables pacing.
func NewRateLimiter(delayMs int) *RateLimiter {
	d := time.Duration(delayMs) * time.Millisecond
	if d <= 0 {
		return &RateLimiter{limit: rate.Inf}
	}
	return &RateLimiter{limit: rate.Every(d), delay: d}
}

// Delay returns the configured pause
func (r *RateLimiter) Delay() time.Duration {
	return r.delay
}

// Pause blocks for the full delay, counted from the call, or until ctx is done.
// Time already spent on the check does not shorten it.
func (r *RateLimiter) Pause(ctx context.Context) error {
	if r.delay <= 0 {
		return ctx.Err()
	}
	// a drained single-token bucket refills after exactly one delay
	lim := rate.NewLimiter(r.limit, 1)
	lim.Allow()
	return lim.Wait(ctx)
}

// Package ratelimit bounds requests per client with an in-memory sliding
// window. It protects the evaluation endpoints, whose narrated variants call
// a language model per request.
package ratelimit

import (
	"sync"
	"time"
)

// Result is the outcome of one Allow call.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter int
}

// Limiter is a per-key sliding window. Not distributed: each replica keeps
// its own windows.
type Limiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	buckets map[string]*slidingWindow
	now     func() time.Time
}

type slidingWindow struct {
	timestamps []time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

// New creates a limiter allowing limit requests per window and key.
func New(limit int, window time.Duration, opts ...Option) *Limiter {
	l := &Limiter{
		limit:   limit,
		window:  window,
		buckets: make(map[string]*slidingWindow),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow records a request for key if the window has room.
func (l *Limiter) Allow(key string) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	sw := l.buckets[key]
	if sw == nil {
		sw = &slidingWindow{}
		l.buckets[key] = sw
	}
	sw.cleanup(now.Add(-l.window))

	if len(sw.timestamps) < l.limit {
		sw.timestamps = append(sw.timestamps, now)
		return Result{
			Allowed:   true,
			Limit:     l.limit,
			Remaining: l.limit - len(sw.timestamps),
			ResetAt:   sw.timestamps[0].Add(l.window),
		}
	}

	resetAt := sw.timestamps[0].Add(l.window)
	retry := int(resetAt.Sub(now).Seconds())
	if retry < 1 {
		retry = 1
	}
	return Result{
		Allowed:    false,
		Limit:      l.limit,
		ResetAt:    resetAt,
		RetryAfter: retry,
	}
}

// Prune drops empty windows. Long-running servers call it periodically so
// one-off clients do not accumulate.
func (l *Limiter) Prune() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.window)
	removed := 0
	for key, sw := range l.buckets {
		sw.cleanup(cutoff)
		if len(sw.timestamps) == 0 {
			delete(l.buckets, key)
			removed++
		}
	}
	return removed
}

// cleanup removes timestamps at or before cutoff.
func (sw *slidingWindow) cleanup(cutoff time.Time) {
	i := 0
	for ; i < len(sw.timestamps); i++ {
		if sw.timestamps[i].After(cutoff) {
			break
		}
	}
	sw.timestamps = sw.timestamps[i:]
}

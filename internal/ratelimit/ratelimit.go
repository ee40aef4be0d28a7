// Package ratelimit provides a simple windowed request quota for
// upstream providers that bill or throttle per day.
package ratelimit

import (
	"sync"
	"time"
)

type Limiter struct {
	mu      sync.Mutex
	name    string
	max     int // 0 means unlimited
	count   int
	window  time.Duration
	resetAt time.Time
}

func New(name string, max int, window time.Duration) *Limiter {
	return &Limiter{
		name:    name,
		max:     max,
		window:  window,
		resetAt: time.Now().Add(window),
	}
}

// Allow reports whether another request fits the quota and consumes one
// slot when it does.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if time.Now().After(l.resetAt) {
		l.count = 0
		l.resetAt = time.Now().Add(l.window)
	}
	if l.max > 0 && l.count >= l.max {
		return false
	}
	l.count++
	return true
}

// Usage returns the consumed and maximum slots in the current window.
func (l *Limiter) Usage() (used, max int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count, l.max
}

func (l *Limiter) Name() string { return l.name }

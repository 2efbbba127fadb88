// Package ratelimit throttles calls to the generation provider. Two rules
// apply together: a rolling per-minute cap and a minimum gap between
// consecutive calls.
package ratelimit

import (
	"math"
	"sync"
	"time"
)

// Status reports the limiter's current headroom
type Status struct {
	Remaining int     `json:"remaining"`
	ResetIn   float64 `json:"resetInSeconds"`
}

// Limiter enforces both rules behind a single mutex
type Limiter struct {
	mu        sync.Mutex
	perMinute int
	minGap    time.Duration
	calls     []time.Time
	lastCall  time.Time
	nowFunc   func() time.Time
}

func NewLimiter(perMinute int, minGap time.Duration) *Limiter {
	return &Limiter{
		perMinute: perMinute,
		minGap:    minGap,
		nowFunc:   time.Now,
	}
}

// TryAcquire reports whether a call may proceed now. On denial it returns
// the seconds to wait before retrying. Acquiring does not consume a slot;
// callers confirm with RecordUse once the call actually goes out.
func (l *Limiter) TryAcquire() (bool, float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFunc()
	l.pruneLocked(now)

	if !l.lastCall.IsZero() {
		if elapsed := now.Sub(l.lastCall); elapsed < l.minGap {
			return false, ceilSeconds(l.minGap - elapsed)
		}
	}

	if len(l.calls) >= l.perMinute {
		oldest := l.calls[0]
		return false, ceilSeconds(oldest.Add(time.Minute).Sub(now))
	}

	return true, 0
}

// RecordUse consumes a slot for a call that went out
func (l *Limiter) RecordUse() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFunc()
	l.pruneLocked(now)
	l.calls = append(l.calls, now)
	l.lastCall = now
}

// Status reports remaining slots in the current window and when the
// window next frees a slot
func (l *Limiter) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFunc()
	l.pruneLocked(now)

	s := Status{Remaining: l.perMinute - len(l.calls)}
	if len(l.calls) > 0 {
		s.ResetIn = ceilSeconds(l.calls[0].Add(time.Minute).Sub(now))
	}
	return s
}

// pruneLocked drops calls older than the rolling window
func (l *Limiter) pruneLocked(now time.Time) {
	cutoff := now.Add(-time.Minute)
	kept := l.calls[:0]
	for _, t := range l.calls {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	l.calls = kept
}

func ceilSeconds(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return math.Ceil(d.Seconds())
}

// Package ratelimit keeps one token bucket per key.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type entry struct {
	limiter *rate.Limiter
	last    time.Time
}

// Limiter hands out one token per call per key. Buckets start full. A bucket
// unused for longer than it takes to refill from empty is full again, so it
// is dropped and recreated on the next call.
type Limiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	idle      time.Duration
	entries   map[string]*entry
	lastSweep time.Time
	now       func() time.Time
}

// New creates a limiter with the given bucket capacity and refill rate.
func New(capacity, refillPerSec float64) *Limiter {
	if capacity < 1 {
		capacity = 1
	}
	idle := time.Hour
	if refillPerSec > 0 {
		idle = time.Duration(capacity / refillPerSec * float64(time.Second))
	} else {
		refillPerSec = 0
	}
	return &Limiter{
		limit:   rate.Limit(refillPerSec),
		burst:   int(capacity),
		idle:    idle,
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Take consumes one token for key. When the bucket is empty it returns false
// and the wait until the next token.
func (l *Limiter) Take(key string) (bool, time.Duration) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep(now)
	e, ok := l.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = e
	}
	e.last = now

	r := e.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, 0
	}
	if wait := r.DelayFrom(now); wait > 0 {
		r.CancelAt(now)
		return false, wait
	}
	return true, 0
}

// Len returns the number of buckets held.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *Limiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.idle {
		return
	}
	l.lastSweep = now
	for k, e := range l.entries {
		if now.Sub(e.last) >= l.idle {
			delete(l.entries, k)
		}
	}
}

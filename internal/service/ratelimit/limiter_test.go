package ratelimit

import (
	"strconv"
	"testing"
	"time"
)

func TestTakeDrainsAndRefills(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := New(2, 1)
	l.now = func() time.Time { return now }

	ok1, _ := l.Take("u1")
	ok2, _ := l.Take("u1")
	if !ok1 || !ok2 {
		t.Fatalf("expected the first two calls to pass")
	}
	ok, wait := l.Take("u1")
	if ok {
		t.Fatalf("expected bucket to be empty")
	}
	if wait != time.Second {
		t.Fatalf("wait = %v, want 1s", wait)
	}
	if ok, _ := l.Take("u2"); !ok {
		t.Fatalf("keys must not share a bucket")
	}

	now = now.Add(1500 * time.Millisecond)
	if ok, _ := l.Take("u1"); !ok {
		t.Fatalf("expected refill after 1.5s")
	}
	ok, wait = l.Take("u1")
	if ok {
		t.Fatalf("only one token should have been refilled")
	}
	if wait != 500*time.Millisecond {
		t.Fatalf("wait = %v, want 500ms", wait)
	}
}

func TestRefillCapsAtCapacity(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := New(1, 10)
	l.now = func() time.Time { return now }

	l.Take("k")
	now = now.Add(time.Hour)
	if ok, _ := l.Take("k"); !ok {
		t.Fatalf("expected token after refill")
	}
	if ok, _ := l.Take("k"); ok {
		t.Fatalf("bucket must not exceed capacity")
	}
}

func TestIdleBucketsAreDropped(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := New(5, 0.2)
	l.now = func() time.Time { return now }

	for i := 0; i < 100000; i++ {
		l.Take("user-" + strconv.Itoa(i))
	}
	if got := l.Len(); got != 100000 {
		t.Fatalf("buckets = %d before idling", got)
	}

	// 5 tokens at 0.2/s refill in 25s.
	now = now.Add(26 * time.Second)
	l.Take("fresh")
	if got := l.Len(); got != 1 {
		t.Fatalf("buckets = %d after idling, want 1", got)
	}
}

func TestRecentBucketSurvivesSweep(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := New(1, 0.1)
	l.now = func() time.Time { return now }

	l.Take("old")
	now = now.Add(5 * time.Second)
	l.Take("busy")
	now = now.Add(5 * time.Second)
	if ok, wait := l.Take("busy"); ok || wait < 4*time.Second || wait > 5*time.Second {
		t.Fatalf("busy bucket lost its state: ok=%v wait=%v", ok, wait)
	}
	if got := l.Len(); got != 1 {
		t.Fatalf("buckets = %d, want only busy", got)
	}
}

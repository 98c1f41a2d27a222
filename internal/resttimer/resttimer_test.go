package resttimer

import (
	"testing"
	"time"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestCountdown(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	timer := startWithClock(90*time.Second, clock.Now)

	if timer.Done() {
		t.Fatal("fresh timer should not be done")
	}
	if got := timer.Remaining(); got != 90*time.Second {
		t.Fatalf("Remaining = %v, want 90s", got)
	}

	clock.Advance(30 * time.Second)
	if got := timer.Elapsed(); got != 30*time.Second {
		t.Fatalf("Elapsed = %v, want 30s", got)
	}
	if got := timer.Remaining(); got != 60*time.Second {
		t.Fatalf("Remaining = %v, want 60s", got)
	}
	if timer.Done() {
		t.Fatal("timer should still be running")
	}

	clock.Advance(60 * time.Second)
	if !timer.Done() {
		t.Fatal("timer should be done")
	}
	if got := timer.Remaining(); got != 0 {
		t.Fatalf("Remaining after expiry = %v, want 0", got)
	}
}

func TestElapsedCapsAtDuration(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	timer := startWithClock(10*time.Second, clock.Now)

	clock.Advance(time.Minute)
	if got := timer.Elapsed(); got != 10*time.Second {
		t.Fatalf("Elapsed = %v, want cap at 10s", got)
	}
}

func TestNegativeDurationIsImmediatelyDone(t *testing.T) {
	timer := Start(-time.Second)
	if !timer.Done() {
		t.Fatal("negative duration should start done")
	}
}

// Package resttimer tracks a rest countdown between exercises without
// blocking the caller. The UI polls Remaining/Done instead of the service
// sleeping through the interval.
package resttimer

import "time"

// Timer is a started countdown. The zero value is not usable; call Start.
type Timer struct {
	start    time.Time
	duration time.Duration
	now      func() time.Time
}

// Start begins a countdown of the given duration.
func Start(d time.Duration) *Timer {
	return startWithClock(d, time.Now)
}

func startWithClock(d time.Duration, now func() time.Time) *Timer {
	if d < 0 {
		d = 0
	}
	return &Timer{start: now(), duration: d, now: now}
}

// Elapsed returns how long the countdown has been running, capped at the
// full duration.
func (t *Timer) Elapsed() time.Duration {
	e := t.now().Sub(t.start)
	if e > t.duration {
		return t.duration
	}
	return e
}

// Remaining returns the time left, never negative.
func (t *Timer) Remaining() time.Duration {
	return t.duration - t.Elapsed()
}

// Done reports whether the countdown has finished.
func (t *Timer) Done() bool {
	return t.Remaining() <= 0
}

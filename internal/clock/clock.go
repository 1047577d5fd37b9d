// Package clock abstracts wall-clock reads and one-shot timers so the progress
// state machine can be driven by real time in production and by a manual
// clock in tests.
package clock

import "time"

// Timer is a handle to a scheduled callback.
type Timer interface {
	// Stop prevents the callback from firing. It returns false if the
	// callback already fired or the timer was already stopped.
	Stop() bool
}

// Clock reports the current time and schedules callbacks.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// System implements Clock using the time package.
type System struct{}

// NewSystem creates a System clock.
func NewSystem() *System {
	return &System{}
}

// Now returns the current local time. The monotonic reading is kept so
// elapsed-time arithmetic is immune to wall-clock adjustments.
func (System) Now() time.Time {
	return time.Now()
}

// AfterFunc runs f on its own goroutine after d.
func (System) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

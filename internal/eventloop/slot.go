package eventloop

import (
	"time"

	"nuiprogress/internal/clock"
)

// Slot holds at most one armed one-shot timer.
//
// Arm replaces any previously armed timer and Disarm releases it. A callback
// is delivered through the Poster and runs only if its timer is still the one
// held by the slot at that moment, so a timer that fired just before being
// disarmed can never act on newer state. Slot methods must be called on the
// loop goroutine.
type Slot struct {
	clock clock.Clock
	loop  Poster
	armed *armedTimer
}

type armedTimer struct {
	timer clock.Timer
}

// NewSlot creates an empty Slot.
func NewSlot(clk clock.Clock, loop Poster) *Slot {
	return &Slot{clock: clk, loop: loop}
}

// Arm schedules fn to run on the loop after d, disarming any pending timer.
func (s *Slot) Arm(d time.Duration, fn func()) {
	s.Disarm()
	a := &armedTimer{}
	s.armed = a
	a.timer = s.clock.AfterFunc(d, func() {
		s.loop.Post(func() {
			if s.armed != a {
				return
			}
			s.armed = nil
			fn()
		})
	})
}

// Disarm stops the pending timer, if any. It reports whether one was armed.
func (s *Slot) Disarm() bool {
	if s.armed == nil {
		return false
	}
	a := s.armed
	s.armed = nil
	if a.timer != nil {
		a.timer.Stop()
	}
	return true
}

// Armed reports whether a timer is pending.
func (s *Slot) Armed() bool {
	return s.armed != nil
}

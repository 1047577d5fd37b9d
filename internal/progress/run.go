package progress

import (
	"fmt"
	"time"
)

// State is the lifecycle position of a Machine.
type State int

const (
	// StateIdle means no run is configured and nothing is shown.
	StateIdle State = iota
	// StateRunning means a run is visible and its timer is armed.
	StateRunning
	// StateCompleting means the run was hidden and the exit transition has
	// not finished yet.
	StateCompleting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleting:
		return "completing"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Outcome records why a run was hidden.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeCancelled Outcome = "cancelled"
)

// Run is one progress operation, from start event to host notification.
type Run struct {
	ID        string
	Label     string
	Duration  time.Duration // zero once the run is hidden
	StartedAt time.Time
	Fraction  float64 // elapsed / Duration, clamped to 1 when reached
	Visible   bool
}

// Elapsed returns how long the run has been going at now.
func (r Run) Elapsed(now time.Time) time.Duration {
	if r.StartedAt.IsZero() {
		return 0
	}
	return now.Sub(r.StartedAt)
}

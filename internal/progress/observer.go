package progress

// Observer receives run lifecycle notifications. All methods are called on
// the Machine's event loop and must not block.
type Observer interface {
	// OnStart is called when a run becomes visible.
	OnStart(run Run)
	// OnOverride is called when a new start replaces a still-running run.
	OnOverride(run Run)
	// OnTick is called after the elapsed fraction is recomputed.
	OnTick(run Run)
	// OnHide is called when a run stops being visible; run holds its last
	// visible values.
	OnHide(run Run, outcome Outcome)
	// OnComplete is called after the exit transition finished and the host
	// was notified.
	OnComplete(run Run, outcome Outcome)
}

// NoopObserver implements Observer with empty methods. Embed it to implement
// only the callbacks you need.
type NoopObserver struct{}

var _ Observer = NoopObserver{}

func (NoopObserver) OnStart(Run)             {}
func (NoopObserver) OnOverride(Run)          {}
func (NoopObserver) OnTick(Run)              {}
func (NoopObserver) OnHide(Run, Outcome)     {}
func (NoopObserver) OnComplete(Run, Outcome) {}

// MultiObserver fans out notifications to multiple observers.
// It handles nil observers gracefully by skipping them.
type MultiObserver struct {
	observers []Observer
}

var _ Observer = (*MultiObserver)(nil)

// NewMultiObserver creates a MultiObserver that forwards calls to all provided observers.
// Nil observers are filtered out.
func NewMultiObserver(observers ...Observer) *MultiObserver {
	filtered := make([]Observer, 0, len(observers))
	for _, obs := range observers {
		if obs != nil {
			filtered = append(filtered, obs)
		}
	}
	return &MultiObserver{observers: filtered}
}

// safeCall calls fn with panic recovery. One observer failing shouldn't block others.
func safeCall(fn func()) {
	defer func() {
		_ = recover()
	}()
	fn()
}

// OnStart forwards the call to all observers.
func (m *MultiObserver) OnStart(run Run) {
	for _, obs := range m.observers {
		safeCall(func() { obs.OnStart(run) })
	}
}

// OnOverride forwards the call to all observers.
func (m *MultiObserver) OnOverride(run Run) {
	for _, obs := range m.observers {
		safeCall(func() { obs.OnOverride(run) })
	}
}

// OnTick forwards the call to all observers.
func (m *MultiObserver) OnTick(run Run) {
	for _, obs := range m.observers {
		safeCall(func() { obs.OnTick(run) })
	}
}

// OnHide forwards the call to all observers.
func (m *MultiObserver) OnHide(run Run, outcome Outcome) {
	for _, obs := range m.observers {
		safeCall(func() { obs.OnHide(run, outcome) })
	}
}

// OnComplete forwards the call to all observers.
func (m *MultiObserver) OnComplete(run Run, outcome Outcome) {
	for _, obs := range m.observers {
		safeCall(func() { obs.OnComplete(run, outcome) })
	}
}

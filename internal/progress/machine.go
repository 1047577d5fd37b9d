package progress

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"nuiprogress/internal/clock"
	"nuiprogress/internal/eventloop"
)

// Default timings.
const (
	DefaultTickInterval = 100 * time.Millisecond
	DefaultSettleDelay  = 100 * time.Millisecond
)

// Transition shows and hides the indicator. When asked to hide it must call
// onExitComplete once the hide animation has finished, including when the
// hide is interrupted by a new show.
type Transition interface {
	SetVisible(visible bool, onExitComplete func())
}

// Notifier sends a message to the host.
type Notifier interface {
	NotifyHost(ctx context.Context, event string, payload any) error
}

// Config wires a Machine to its collaborators. Only Loop is needed in
// production; everything else has a default.
type Config struct {
	TickInterval time.Duration
	SettleDelay  time.Duration
	Segments     int

	Clock      clock.Clock
	Loop       eventloop.Poster
	Transition Transition
	Notifier   Notifier
	Observer   Observer
	Logger     *zap.Logger

	// NewID generates run IDs. Defaults to random UUIDs.
	NewID func() string
}

// Machine is the progress lifecycle state machine.
type Machine struct {
	cfg        Config
	clock      clock.Clock
	transition Transition
	notifier   Notifier
	observer   Observer
	logger     *zap.Logger

	state   State
	run     Run
	exiting *exitingRun
	tick    *eventloop.Slot
	settle  *eventloop.Slot
}

type exitingRun struct {
	run     Run
	outcome Outcome
}

// NewMachine creates an idle Machine.
func NewMachine(cfg Config) *Machine {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = DefaultSettleDelay
	}
	if cfg.Segments <= 0 {
		cfg.Segments = DefaultSegments
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.NewSystem()
	}
	if cfg.Loop == nil {
		cfg.Loop = &serialLoop{}
	}
	if cfg.Transition == nil {
		cfg.Transition = instantTransition{}
	}
	if cfg.Observer == nil {
		cfg.Observer = NoopObserver{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.NewID == nil {
		cfg.NewID = func() string { return uuid.NewString() }
	}
	return &Machine{
		cfg:        cfg,
		clock:      cfg.Clock,
		transition: cfg.Transition,
		notifier:   cfg.Notifier,
		observer:   cfg.Observer,
		logger:     cfg.Logger,
		tick:       eventloop.NewSlot(cfg.Clock, cfg.Loop),
		settle:     eventloop.NewSlot(cfg.Clock, cfg.Loop),
	}
}

// Start begins a new run, replacing any run in progress. A duration <= 0
// completes immediately: the indicator shows 100% for the settle delay and
// then hides.
func (m *Machine) Start(label string, duration time.Duration) {
	m.disarm()

	// Finishes an in-flight exit first, so its notification precedes the new run.
	m.transition.SetVisible(true, nil)

	if m.state == StateRunning {
		m.logger.Debug("progress run overridden", zap.String("run_id", m.run.ID), zap.String("label", m.run.Label))
		m.observer.OnOverride(m.run)
	}

	m.run = Run{
		ID:        m.cfg.NewID(),
		Label:     label,
		Duration:  duration,
		StartedAt: m.clock.Now(),
		Visible:   true,
	}
	m.state = StateRunning
	m.logger.Debug("progress run started",
		zap.String("run_id", m.run.ID),
		zap.String("label", label),
		zap.Duration("duration", duration))
	m.observer.OnStart(m.run)

	if duration <= 0 {
		m.run.Fraction = 1
		m.observer.OnTick(m.run)
		m.settle.Arm(m.cfg.SettleDelay, m.onSettle)
		return
	}
	m.tick.Arm(m.cfg.TickInterval, m.onTick)
}

// Cancel hides the current run immediately. It is a no-op unless a run is
// visible. The host is still notified only once the exit transition ends.
func (m *Machine) Cancel() {
	if m.state != StateRunning {
		return
	}
	m.hide(OutcomeCancelled)
}

// Teardown releases every timer and forgets all state without notifying the
// host. Call it when the overlay unmounts.
func (m *Machine) Teardown() {
	m.disarm()
	m.exiting = nil
	m.state = StateIdle
	m.run = Run{}
	if t, ok := m.transition.(interface{ Teardown() }); ok {
		t.Teardown()
	}
}

// State returns the current lifecycle state.
func (m *Machine) State() State {
	return m.state
}

// Run returns a copy of the current run. While Completing its fields are
// already reset; use Frame for what is on screen.
func (m *Machine) Run() Run {
	return m.run
}

// Armed reports which timers are pending.
func (m *Machine) Armed() (tick, settle bool) {
	return m.tick.Armed(), m.settle.Armed()
}

// Frame returns what the indicator shows: the live run while Running, the
// last visible values of the hidden run while its exit plays, and an empty
// frame when Idle.
func (m *Machine) Frame() Frame {
	switch {
	case m.state == StateRunning:
		return FrameOf(m.run, m.cfg.Segments)
	case m.exiting != nil:
		f := FrameOf(m.exiting.run, m.cfg.Segments)
		f.Visible = false
		return f
	default:
		return FrameOf(Run{}, m.cfg.Segments)
	}
}

// Segments returns the configured segment count.
func (m *Machine) Segments() int {
	return m.cfg.Segments
}

func (m *Machine) onTick() {
	elapsed := m.run.Elapsed(m.clock.Now())
	f := float64(elapsed) / float64(m.run.Duration)
	if f < m.run.Fraction {
		f = m.run.Fraction
	}
	if f >= 1 {
		m.run.Fraction = 1
		m.observer.OnTick(m.run)
		m.settle.Arm(m.cfg.SettleDelay, m.onSettle)
		return
	}
	m.run.Fraction = f
	m.observer.OnTick(m.run)
	m.tick.Arm(m.cfg.TickInterval, m.onTick)
}

func (m *Machine) onSettle() {
	m.hide(OutcomeCompleted)
}

func (m *Machine) hide(outcome Outcome) {
	m.disarm()

	shown := m.run
	m.exiting = &exitingRun{run: shown, outcome: outcome}
	m.state = StateCompleting
	m.run.Visible = false
	m.run.Fraction = 0
	m.run.Duration = 0

	m.logger.Debug("progress run hidden",
		zap.String("run_id", shown.ID),
		zap.String("outcome", string(outcome)),
		zap.Int("percent", Percent(shown.Fraction)))
	m.observer.OnHide(shown, outcome)

	id := shown.ID
	m.transition.SetVisible(false, func() { m.finish(id) })
}

// finish is the exit continuation of run id. Only the first call for the
// currently exiting run has an effect.
func (m *Machine) finish(id string) {
	if m.exiting == nil || m.exiting.run.ID != id {
		return
	}
	done := *m.exiting
	m.exiting = nil
	if m.state == StateCompleting {
		m.state = StateIdle
		m.run = Run{}
	}

	if m.notifier != nil {
		if err := m.notifier.NotifyHost(context.Background(), EventComplete, nil); err != nil {
			m.logger.Warn("notify host failed", zap.String("run_id", id), zap.Error(err))
		}
	}
	m.logger.Debug("progress run complete", zap.String("run_id", id), zap.String("outcome", string(done.outcome)))
	m.observer.OnComplete(done.run, done.outcome)
}

func (m *Machine) disarm() {
	m.tick.Disarm()
	m.settle.Disarm()
}

// instantTransition hides without animation.
type instantTransition struct{}

func (instantTransition) SetVisible(visible bool, onExitComplete func()) {
	if !visible && onExitComplete != nil {
		onExitComplete()
	}
}

// serialLoop runs callbacks on the posting goroutine under a mutex. It keeps
// a Machine consistent when no event loop is supplied, provided Start and
// Cancel are also called through Post.
type serialLoop struct {
	mu sync.Mutex
}

func (l *serialLoop) Post(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn()
}

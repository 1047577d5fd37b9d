package progress

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"nuiprogress/internal/clock"
	"nuiprogress/internal/eventloop"
)

type fakeTransition struct {
	calls      []bool
	pending    []func()
	exitOnShow bool
}

func (f *fakeTransition) SetVisible(visible bool, onExitComplete func()) {
	f.calls = append(f.calls, visible)
	if visible {
		if f.exitOnShow {
			f.finishExit()
		}
		return
	}
	if onExitComplete != nil {
		f.pending = append(f.pending, onExitComplete)
	}
}

func (f *fakeTransition) finishExit() {
	pending := f.pending
	f.pending = nil
	for _, cb := range pending {
		cb()
	}
}

type recordingNotifier struct {
	events []string
}

func (r *recordingNotifier) NotifyHost(_ context.Context, event string, _ any) error {
	r.events = append(r.events, event)
	return nil
}

type recordingObserver struct {
	NoopObserver
	started    []Run
	overridden []Run
	hidden     []Outcome
	completed  []Outcome
}

func (o *recordingObserver) OnStart(run Run)    { o.started = append(o.started, run) }
func (o *recordingObserver) OnOverride(run Run) { o.overridden = append(o.overridden, run) }
func (o *recordingObserver) OnHide(_ Run, outcome Outcome) {
	o.hidden = append(o.hidden, outcome)
}
func (o *recordingObserver) OnComplete(_ Run, outcome Outcome) {
	o.completed = append(o.completed, outcome)
}

type harness struct {
	clock      *clock.Fake
	transition *fakeTransition
	notifier   *recordingNotifier
	observer   *recordingObserver
	machine    *Machine
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		clock:      clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
		transition: &fakeTransition{exitOnShow: true},
		notifier:   &recordingNotifier{},
		observer:   &recordingObserver{},
	}
	seq := 0
	h.machine = NewMachine(Config{
		Clock:      h.clock,
		Loop:       eventloop.Inline{},
		Transition: h.transition,
		Notifier:   h.notifier,
		Observer:   h.observer,
		NewID: func() string {
			seq++
			return fmt.Sprintf("run-%d", seq)
		},
	})
	return h
}

func (h *harness) percent() int {
	return h.machine.Frame().Percent
}

func TestMachine_LoadingScenario(t *testing.T) {
	h := newHarness(t)
	h.machine.Start("Loading", time.Second)

	require.Equal(t, StateRunning, h.machine.State())
	require.True(t, h.machine.Run().Visible)
	require.Equal(t, 0, h.percent())

	h.clock.Advance(500 * time.Millisecond)
	frame := h.machine.Frame()
	require.Equal(t, 50, frame.Percent)
	require.Equal(t, 10, frame.FilledCount())
	require.Len(t, frame.Segments, DefaultSegments)

	h.clock.Advance(500 * time.Millisecond)
	require.Equal(t, 1.0, h.machine.Run().Fraction)
	require.Equal(t, 100, h.percent())
	tick, settle := h.machine.Armed()
	require.False(t, tick)
	require.True(t, settle)
	require.True(t, h.machine.Run().Visible, "the full frame stays up for the settle delay")

	h.clock.Advance(DefaultSettleDelay)
	require.Equal(t, StateCompleting, h.machine.State())
	require.False(t, h.machine.Run().Visible)
	require.Zero(t, h.machine.Run().Duration)
	require.Zero(t, h.machine.Run().Fraction)
	require.Empty(t, h.notifier.events, "host must not hear about completion before the exit ends")

	h.transition.finishExit()
	require.Equal(t, StateIdle, h.machine.State())
	require.Equal(t, []string{EventComplete}, h.notifier.events)
	require.Equal(t, []Outcome{OutcomeCompleted}, h.observer.completed)
	require.Zero(t, h.clock.Pending())
}

func TestMachine_ExitContinuationIsIdempotent(t *testing.T) {
	h := newHarness(t)
	var exit func()
	h.machine.transition = transitionFunc(func(visible bool, cb func()) {
		if !visible {
			exit = cb
		}
	})

	h.machine.Start("Loading", 200*time.Millisecond)
	h.clock.Advance(time.Second)
	require.NotNil(t, exit)

	exit()
	exit()
	require.Equal(t, []string{EventComplete}, h.notifier.events)
}

type transitionFunc func(visible bool, cb func())

func (f transitionFunc) SetVisible(visible bool, cb func()) { f(visible, cb) }

func TestMachine_CancelScenario(t *testing.T) {
	h := newHarness(t)
	h.machine.Start("X", 2*time.Second)

	h.clock.Advance(100 * time.Millisecond)
	require.Less(t, h.percent(), 100)
	require.Equal(t, 5, h.percent())

	h.machine.Cancel()
	require.Equal(t, StateCompleting, h.machine.State())
	require.False(t, h.machine.Run().Visible)
	tick, settle := h.machine.Armed()
	require.False(t, tick)
	require.False(t, settle)
	require.Zero(t, h.clock.Pending())
	require.Empty(t, h.notifier.events)

	// The exiting frame keeps the values that were on screen.
	require.Equal(t, 5, h.machine.Frame().Percent)
	require.Equal(t, "X", h.machine.Frame().Label)

	h.transition.finishExit()
	require.Equal(t, []string{EventComplete}, h.notifier.events)
	require.Equal(t, []Outcome{OutcomeCancelled}, h.observer.hidden)
	require.Equal(t, StateIdle, h.machine.State())
}

func TestMachine_CancelIsNoopOutsideRunning(t *testing.T) {
	h := newHarness(t)

	h.machine.Cancel()
	require.Equal(t, StateIdle, h.machine.State())
	require.Empty(t, h.transition.calls)

	h.machine.Start("X", time.Second)
	h.machine.Cancel()
	h.machine.Cancel()
	require.Equal(t, []bool{true, false}, h.transition.calls)

	h.transition.finishExit()
	h.machine.Cancel()
	require.Equal(t, []string{EventComplete}, h.notifier.events)
}

func TestMachine_RestartResetsRun(t *testing.T) {
	h := newHarness(t)
	h.machine.Start("first", time.Second)
	h.clock.Advance(300 * time.Millisecond)
	require.Equal(t, 30, h.percent())
	first := h.machine.Run()

	h.machine.Start("second", time.Second)
	second := h.machine.Run()
	require.NotEqual(t, first.ID, second.ID)
	require.Equal(t, "second", second.Label)
	require.Zero(t, second.Fraction)
	require.Equal(t, h.clock.Now(), second.StartedAt)
	require.Equal(t, 1, h.clock.Pending(), "the old run's timer must be gone")
	require.Len(t, h.observer.overridden, 1)
	require.Equal(t, first.ID, h.observer.overridden[0].ID)

	h.clock.Advance(100 * time.Millisecond)
	require.Equal(t, 10, h.percent())
	require.Empty(t, h.notifier.events, "an overridden run is never hidden, so the host is not notified")
}

func TestMachine_StaleTickAfterRestartIsIgnored(t *testing.T) {
	clk := clock.NewFake(time.Unix(0, 0))
	loop := &queuedLoop{}
	m := NewMachine(Config{Clock: clk, Loop: loop})

	m.Start("old", time.Second)
	clk.Advance(100 * time.Millisecond)
	require.Len(t, loop.queue, 1, "tick delivery is queued on the loop")

	m.Start("new", 10*time.Second)
	loop.flush()

	require.Equal(t, "new", m.Run().Label)
	require.Zero(t, m.Run().Fraction)
	tick, _ := m.Armed()
	require.True(t, tick)
	require.Equal(t, 1, clk.Pending())
}

type queuedLoop struct {
	queue []func()
}

func (q *queuedLoop) Post(fn func()) { q.queue = append(q.queue, fn) }

func (q *queuedLoop) flush() {
	for len(q.queue) > 0 {
		fn := q.queue[0]
		q.queue = q.queue[1:]
		fn()
	}
}

func TestMachine_StartDuringSettleCancelsSettle(t *testing.T) {
	h := newHarness(t)
	h.machine.Start("first", 500*time.Millisecond)
	h.clock.Advance(500 * time.Millisecond)
	_, settle := h.machine.Armed()
	require.True(t, settle)

	h.machine.Start("second", time.Second)
	_, settle = h.machine.Armed()
	require.False(t, settle)

	h.clock.Advance(150 * time.Millisecond)
	require.Equal(t, StateRunning, h.machine.State())
	require.True(t, h.machine.Run().Visible)
	require.Equal(t, "second", h.machine.Run().Label)
	require.Empty(t, h.observer.hidden)
}

func TestMachine_CancelDuringSettle(t *testing.T) {
	h := newHarness(t)
	h.machine.Start("first", 500*time.Millisecond)
	h.clock.Advance(500 * time.Millisecond)

	h.machine.Cancel()
	require.Equal(t, []Outcome{OutcomeCancelled}, h.observer.hidden)
	require.Zero(t, h.clock.Pending())

	h.transition.finishExit()
	require.Equal(t, []string{EventComplete}, h.notifier.events)
}

func TestMachine_NonPositiveDurationCompletesImmediately(t *testing.T) {
	for _, d := range []time.Duration{0, -time.Second} {
		t.Run(d.String(), func(t *testing.T) {
			h := newHarness(t)
			h.machine.Start("instant", d)

			require.Equal(t, 100, h.percent())
			tick, settle := h.machine.Armed()
			require.False(t, tick)
			require.True(t, settle)

			h.clock.Advance(DefaultSettleDelay)
			require.Equal(t, StateCompleting, h.machine.State())
			h.transition.finishExit()
			require.Equal(t, []string{EventComplete}, h.notifier.events)
		})
	}
}

func TestMachine_StartWhileExitingNotifiesPreviousRunFirst(t *testing.T) {
	h := newHarness(t)
	h.machine.Start("first", time.Second)
	h.machine.Cancel()
	require.Equal(t, StateCompleting, h.machine.State())

	h.machine.Start("second", time.Second)
	require.Equal(t, []string{EventComplete}, h.notifier.events)
	require.Equal(t, StateRunning, h.machine.State())
	require.Equal(t, "second", h.machine.Run().Label)
	require.Empty(t, h.observer.overridden)
}

func TestMachine_LateExitOfPreviousRunDoesNotResetNewRun(t *testing.T) {
	h := newHarness(t)
	h.transition.exitOnShow = false

	h.machine.Start("first", time.Second)
	h.machine.Cancel()
	h.machine.Start("second", time.Second)

	h.transition.finishExit()
	require.Equal(t, []string{EventComplete}, h.notifier.events)
	require.Equal(t, StateRunning, h.machine.State())
	require.Equal(t, "second", h.machine.Run().Label)
}

func TestMachine_Teardown(t *testing.T) {
	h := newHarness(t)
	h.machine.Start("X", time.Second)
	h.clock.Advance(200 * time.Millisecond)

	h.machine.Teardown()
	require.Equal(t, StateIdle, h.machine.State())
	require.Zero(t, h.clock.Pending())

	h.clock.Advance(5 * time.Second)
	h.transition.finishExit()
	require.Empty(t, h.notifier.events)
	require.Equal(t, Run{}, h.machine.Run())
}

func TestMachine_TeardownWhileExitingDropsNotification(t *testing.T) {
	h := newHarness(t)
	h.machine.Start("X", time.Second)
	h.machine.Cancel()

	h.machine.Teardown()
	h.transition.finishExit()
	require.Empty(t, h.notifier.events)
}

// TestMachine_PercentTracksElapsedTime checks the displayed percentage at
// every tick against floor(100*t/d) and that it never decreases.
func TestMachine_PercentTracksElapsedTime(t *testing.T) {
	for _, d := range []time.Duration{
		700 * time.Millisecond,
		time.Second,
		1300 * time.Millisecond,
		2900 * time.Millisecond,
		10 * time.Second,
	} {
		t.Run(d.String(), func(t *testing.T) {
			h := newHarness(t)
			h.machine.Start("prop", d)

			last := 0
			for elapsed := DefaultTickInterval; elapsed < d; elapsed += DefaultTickInterval {
				h.clock.Advance(DefaultTickInterval)
				want := int(100 * elapsed / d)
				got := h.percent()
				if got != want {
					t.Fatalf("at %v: percent = %d, want %d", elapsed, got, want)
				}
				if got < last {
					t.Fatalf("at %v: percent went from %d to %d", elapsed, last, got)
				}
				last = got
			}
		})
	}
}

func TestMachine_ReachingDurationYieldsFullFraction(t *testing.T) {
	for _, d := range []time.Duration{100 * time.Millisecond, 250 * time.Millisecond, 3 * time.Second} {
		h := newHarness(t)
		h.machine.Start("full", d)
		h.clock.Advance(d)
		// A tick lands on the first interval boundary at or past d.
		if d%DefaultTickInterval != 0 {
			h.clock.Advance(DefaultTickInterval - d%DefaultTickInterval)
		}
		require.Equal(t, 1.0, h.machine.Run().Fraction, d.String())
		require.Equal(t, 100, h.percent(), d.String())
	}
}

func TestMachine_DefaultsWithoutCollaborators(t *testing.T) {
	clk := clock.NewFake(time.Unix(0, 0))
	m := NewMachine(Config{Clock: clk})

	m.Start("bare", 100*time.Millisecond)
	clk.Advance(time.Second)
	require.Equal(t, StateIdle, m.State(), "the default transition exits instantly")
	require.Zero(t, clk.Pending())
}

func TestStateString(t *testing.T) {
	cases := map[State]string{
		StateIdle:       "idle",
		StateRunning:    "running",
		StateCompleting: "completing",
		State(9):        "state(9)",
	}
	for s, want := range cases {
		if s.String() != want {
			t.Errorf("State(%d).String(): expected %q, got %q", int(s), want, s.String())
		}
	}
}

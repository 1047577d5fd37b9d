// Package transition provides the show/hide animation wrapped around the
// progress indicator.
package transition

import (
	"time"

	"github.com/charmbracelet/harmonica"

	"nuiprogress/internal/clock"
	"nuiprogress/internal/eventloop"
)

// Phase is where a ScaleFade is in its show/hide cycle.
type Phase int

const (
	PhaseHidden Phase = iota
	PhaseEntering
	PhaseShown
	PhaseExiting
)

func (p Phase) String() string {
	switch p {
	case PhaseHidden:
		return "hidden"
	case PhaseEntering:
		return "entering"
	case PhaseShown:
		return "shown"
	case PhaseExiting:
		return "exiting"
	default:
		return "unknown"
	}
}

const (
	DefaultDuration      = 200 * time.Millisecond
	DefaultFrameInterval = 16 * time.Millisecond

	// hiddenScale is the scale the indicator shrinks to while fading out.
	hiddenScale = 0.5
)

// Config controls a ScaleFade.
type Config struct {
	Duration      time.Duration
	FrameInterval time.Duration
	Clock         clock.Clock
	Loop          eventloop.Poster
}

// ScaleFade fades the indicator in and out while springing its scale.
//
// Opacity is linear in time, so the exit always finishes after Duration; the
// scale is a critically damped spring that follows the opacity target. All
// methods must be called on the loop goroutine.
type ScaleFade struct {
	cfg    Config
	clock  clock.Clock
	frames *eventloop.Slot
	spring harmonica.Spring

	phase     Phase
	opacity   float64
	from      float64
	startedAt time.Time
	scale     float64
	velocity  float64
	pending   []func()
}

// New creates a hidden ScaleFade.
func New(cfg Config) *ScaleFade {
	if cfg.Duration < 0 {
		cfg.Duration = 0
	}
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = DefaultFrameInterval
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.NewSystem()
	}
	if cfg.Loop == nil {
		cfg.Loop = eventloop.Inline{}
	}
	fps := int(time.Second / cfg.FrameInterval)
	if fps < 1 {
		fps = 1
	}
	return &ScaleFade{
		cfg:    cfg,
		clock:  cfg.Clock,
		frames: eventloop.NewSlot(cfg.Clock, cfg.Loop),
		spring: harmonica.NewSpring(harmonica.FPS(fps), 12.0, 1.0),
		scale:  hiddenScale,
	}
}

// SetVisible starts the enter or exit animation. onExitComplete is only used
// when hiding and runs exactly once after the exit finishes. Showing while an
// exit is in flight completes that exit first.
func (s *ScaleFade) SetVisible(visible bool, onExitComplete func()) {
	if visible {
		s.show()
		return
	}
	if onExitComplete != nil {
		s.pending = append(s.pending, onExitComplete)
	}
	s.hide()
}

func (s *ScaleFade) show() {
	switch s.phase {
	case PhaseShown, PhaseEntering:
		return
	case PhaseExiting:
		s.frames.Disarm()
		s.opacity = 0
		s.phase = PhaseHidden
		s.flush()
	}
	s.begin(PhaseEntering)
}

func (s *ScaleFade) hide() {
	switch s.phase {
	case PhaseHidden:
		s.flush()
		return
	case PhaseExiting:
		return
	}
	s.begin(PhaseExiting)
}

func (s *ScaleFade) begin(phase Phase) {
	s.phase = phase
	s.from = s.opacity
	s.startedAt = s.clock.Now()
	s.step()
}

// step advances the animation to the current time and re-arms the frame
// timer while the animation is still running.
func (s *ScaleFade) step() {
	progress := 1.0
	if s.cfg.Duration > 0 {
		progress = float64(s.clock.Now().Sub(s.startedAt)) / float64(s.cfg.Duration)
	}

	switch s.phase {
	case PhaseEntering:
		s.opacity = min(1, s.from+progress)
		s.advanceSpring(1)
		if s.opacity >= 1 {
			s.phase = PhaseShown
			s.scale, s.velocity = 1, 0
			return
		}
	case PhaseExiting:
		s.opacity = max(0, s.from-progress)
		s.advanceSpring(hiddenScale)
		if s.opacity <= 0 {
			s.phase = PhaseHidden
			s.scale, s.velocity = hiddenScale, 0
			s.flush()
			return
		}
	default:
		return
	}
	s.frames.Arm(s.cfg.FrameInterval, s.step)
}

func (s *ScaleFade) advanceSpring(target float64) {
	s.scale, s.velocity = s.spring.Update(s.scale, s.velocity, target)
}

// flush runs every pending exit continuation once.
func (s *ScaleFade) flush() {
	pending := s.pending
	s.pending = nil
	for _, fn := range pending {
		fn()
	}
}

// Teardown stops the animation and drops pending continuations.
func (s *ScaleFade) Teardown() {
	s.frames.Disarm()
	s.pending = nil
	s.phase = PhaseHidden
	s.opacity = 0
	s.scale, s.velocity = hiddenScale, 0
}

// Phase returns the current phase.
func (s *ScaleFade) Phase() Phase {
	return s.phase
}

// Rendered reports whether anything should be drawn.
func (s *ScaleFade) Rendered() bool {
	return s.phase != PhaseHidden
}

// Opacity returns the current opacity in [0, 1].
func (s *ScaleFade) Opacity() float64 {
	return s.opacity
}

// Scale returns the current scale, 1 when fully shown.
func (s *ScaleFade) Scale() float64 {
	return s.scale
}

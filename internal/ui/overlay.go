package ui

import (
	"time"

	"go.uber.org/zap"

	"nuiprogress/internal/clock"
	"nuiprogress/internal/eventloop"
	"nuiprogress/internal/progress"
	"nuiprogress/internal/transition"
)

// OverlayConfig wires one Overlay. Loop is required.
type OverlayConfig struct {
	TickInterval  time.Duration
	SettleDelay   time.Duration
	Segments      int
	FadeDuration  time.Duration
	FrameInterval time.Duration

	Clock    clock.Clock
	Loop     eventloop.Poster
	Notifier progress.Notifier
	Observer progress.Observer
	Logger   *zap.Logger
}

// Overlay is one mount of the progress indicator: the state machine and the
// transition that wraps it. Everything except Mount and Unmount must be
// called on the loop.
type Overlay struct {
	loop    eventloop.Poster
	machine *progress.Machine
	fade    *transition.ScaleFade
	logger  *zap.Logger
	unmount func()
}

// NewOverlay creates an unmounted Overlay.
func NewOverlay(cfg OverlayConfig) *Overlay {
	if cfg.Clock == nil {
		cfg.Clock = clock.NewSystem()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	fade := transition.New(transition.Config{
		Duration:      cfg.FadeDuration,
		FrameInterval: cfg.FrameInterval,
		Clock:         cfg.Clock,
		Loop:          cfg.Loop,
	})
	machine := progress.NewMachine(progress.Config{
		TickInterval: cfg.TickInterval,
		SettleDelay:  cfg.SettleDelay,
		Segments:     cfg.Segments,
		Clock:        cfg.Clock,
		Loop:         cfg.Loop,
		Transition:   fade,
		Notifier:     cfg.Notifier,
		Observer:     cfg.Observer,
		Logger:       cfg.Logger,
	})
	return &Overlay{
		loop:    cfg.Loop,
		machine: machine,
		fade:    fade,
		logger:  cfg.Logger,
	}
}

// Mount subscribes the overlay to host events on bus.
func (o *Overlay) Mount(bus progress.Subscriber) {
	if o.unmount != nil {
		return
	}
	o.unmount = progress.Mount(bus, o.loop, o.machine, o.logger)
}

// Unmount unsubscribes from host events and posts a teardown to the loop.
func (o *Overlay) Unmount() {
	if o.unmount != nil {
		o.unmount()
	}
}

// Teardown releases timers immediately. Use it from the loop goroutine when
// the loop is about to stop.
func (o *Overlay) Teardown() {
	o.machine.Teardown()
}

// Machine returns the state machine.
func (o *Overlay) Machine() *progress.Machine {
	return o.machine
}

// Frame returns what the indicator shows.
func (o *Overlay) Frame() progress.Frame {
	return o.machine.Frame()
}

// Rendered reports whether anything should be drawn.
func (o *Overlay) Rendered() bool {
	return o.fade.Rendered()
}

// Opacity returns the current transition opacity in [0,1].
func (o *Overlay) Opacity() float64 {
	return o.fade.Opacity()
}

// Scale returns the current transition scale.
func (o *Overlay) Scale() float64 {
	return o.fade.Scale()
}

// Phase returns the transition phase.
func (o *Overlay) Phase() transition.Phase {
	return o.fade.Phase()
}

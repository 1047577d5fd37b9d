// Package eventloop serializes callbacks onto a single goroutine.
//
// The progress state machine and the exit transition are not safe for
// concurrent use; every mutation reaches them through a Poster. Timers armed
// through a Slot deliver their callbacks the same way, so all state changes
// of one overlay mount happen on one goroutine.
package eventloop

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// Poster enqueues fn to run on the goroutine that owns the receiving loop.
type Poster interface {
	Post(fn func())
}

// ErrClosed is returned by Run once the loop has already run to completion.
var ErrClosed = errors.New("event loop closed")

const defaultBufferSize = 256

// Loop is a standalone event loop. Callbacks run in the order they were posted.
type Loop struct {
	queue  chan func()
	done   chan struct{}
	logger *zap.Logger

	closeOnce sync.Once
	ran       bool
	mu        sync.Mutex
}

// New creates a Loop with a queue of bufferSize pending callbacks.
func New(bufferSize int, logger *zap.Logger) *Loop {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loop{
		queue:  make(chan func(), bufferSize),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Post enqueues fn. It blocks while the queue is full and silently drops fn
// once the loop has stopped.
func (l *Loop) Post(fn func()) {
	if fn == nil {
		return
	}
	select {
	case <-l.done:
	case l.queue <- fn:
	}
}

// Run executes posted callbacks until ctx is cancelled. Callbacks still queued
// when ctx is cancelled are discarded.
func (l *Loop) Run(ctx context.Context) error {
	l.mu.Lock()
	if l.ran {
		l.mu.Unlock()
		return ErrClosed
	}
	l.ran = true
	l.mu.Unlock()

	defer l.closeOnce.Do(func() { close(l.done) })
	for {
		select {
		case <-ctx.Done():
			return nil
		case fn := <-l.queue:
			l.invoke(fn)
		}
	}
}

func (l *Loop) invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("event loop callback panicked", zap.Any("panic", r))
		}
	}()
	fn()
}

// Inline runs callbacks immediately on the posting goroutine. It is only
// correct when every Post originates from one goroutine, as in tests driven
// by a fake clock.
type Inline struct{}

// Post runs fn.
func (Inline) Post(fn func()) {
	if fn != nil {
		fn()
	}
}

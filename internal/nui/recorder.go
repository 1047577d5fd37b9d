package nui

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Call is one recorded NotifyHost invocation.
type Call struct {
	Event   string
	Payload any
}

// Recorder is a Notifier that keeps every call in memory.
type Recorder struct {
	mu     sync.Mutex
	calls  []Call
	logger *zap.Logger
}

// NewRecorder creates an empty Recorder. logger may be nil.
func NewRecorder(logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{logger: logger}
}

// NotifyHost records the call.
func (r *Recorder) NotifyHost(_ context.Context, event string, payload any) error {
	r.mu.Lock()
	r.calls = append(r.calls, Call{Event: event, Payload: payload})
	r.mu.Unlock()
	r.logger.Info("host notification recorded", zap.String("event", event))
	return nil
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Count returns how many times event was sent.
func (r *Recorder) Count(event string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.Event == event {
			n++
		}
	}
	return n
}

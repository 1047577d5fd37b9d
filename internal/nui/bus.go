package nui

import (
	"sync"

	"go.uber.org/zap"
)

// Handler receives the payload of a published event.
type Handler func(payload any)

type subscription struct {
	id      uint64
	handler Handler
}

// Bus is a process-wide publish/subscribe hub keyed by event name.
// Handlers run synchronously on the publishing goroutine, in subscription
// order.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[string][]subscription
	logger *zap.Logger
}

// NewBus creates an empty Bus.
func NewBus(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		subs:   make(map[string][]subscription),
		logger: logger,
	}
}

// Subscribe registers handler for event. The returned function removes the
// subscription and may be called more than once.
func (b *Bus) Subscribe(event string, handler func(payload any)) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[event] = append(b.subs[event], subscription{id: id, handler: handler})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.unsubscribe(event, id) })
	}
}

func (b *Bus) unsubscribe(event string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[event]
	for i, s := range subs {
		if s.id != id {
			continue
		}
		kept := make([]subscription, 0, len(subs)-1)
		kept = append(kept, subs[:i]...)
		kept = append(kept, subs[i+1:]...)
		if len(kept) == 0 {
			delete(b.subs, event)
		} else {
			b.subs[event] = kept
		}
		return
	}
}

// Publish delivers payload to every handler subscribed to event and returns
// how many handlers ran. A panicking handler is logged and skipped.
func (b *Bus) Publish(event string, payload any) int {
	b.mu.RLock()
	subs := b.subs[event]
	b.mu.RUnlock()

	for _, s := range subs {
		b.deliver(event, s.handler, payload)
	}
	if len(subs) == 0 {
		b.logger.Debug("event has no subscribers", zap.String("event", event))
	}
	return len(subs)
}

func (b *Bus) deliver(event string, h Handler, payload any) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked", zap.String("event", event), zap.Any("panic", r))
		}
	}()
	h(payload)
}

// Subscribers returns the number of handlers registered for event.
func (b *Bus) Subscribers(event string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[event])
}

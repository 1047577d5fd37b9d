package progress

import (
	"sync"

	"go.uber.org/zap"

	"nuiprogress/internal/eventloop"
)

// Subscriber is the inbound half of the event bridge.
type Subscriber interface {
	Subscribe(event string, handler func(payload any)) (unsubscribe func())
}

// Mount subscribes m to the host's "progress" and "progressCancel" events for
// the lifetime of the overlay. Payloads are decoded on the publishing
// goroutine; the resulting Machine calls are posted to loop. The returned
// function unsubscribes and tears the Machine down; it is safe to call more
// than once.
func Mount(bus Subscriber, loop eventloop.Poster, m *Machine, logger *zap.Logger) (unmount func()) {
	if logger == nil {
		logger = zap.NewNop()
	}

	unsubStart := bus.Subscribe(EventStart, func(payload any) {
		evt, err := DecodeStart(payload)
		if err != nil {
			logger.Debug("ignoring progress event", zap.Error(err))
			return
		}
		loop.Post(func() { m.Start(evt.Label, evt.Duration) })
	})
	unsubCancel := bus.Subscribe(EventCancel, func(any) {
		loop.Post(m.Cancel)
	})

	var once sync.Once
	return func() {
		once.Do(func() {
			unsubStart()
			unsubCancel()
			loop.Post(m.Teardown)
		})
	}
}

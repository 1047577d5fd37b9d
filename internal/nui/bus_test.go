package nui

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBus_PublishDeliversInOrder(t *testing.T) {
	bus := NewBus(nil)
	var got []string
	bus.Subscribe("progress", func(p any) { got = append(got, "a:"+p.(string)) })
	bus.Subscribe("progress", func(p any) { got = append(got, "b:"+p.(string)) })
	bus.Subscribe("other", func(any) { got = append(got, "other") })

	n := bus.Publish("progress", "x")

	require.Equal(t, 2, n)
	require.Equal(t, []string{"a:x", "b:x"}, got)
}

func TestBus_UnsubscribeIsIdempotent(t *testing.T) {
	bus := NewBus(nil)
	calls := 0
	unsubscribe := bus.Subscribe("progress", func(any) { calls++ })
	keep := bus.Subscribe("progress", func(any) {})
	defer keep()

	unsubscribe()
	unsubscribe()

	require.Equal(t, 1, bus.Subscribers("progress"))
	bus.Publish("progress", nil)
	require.Zero(t, calls)
}

func TestBus_LastUnsubscribeRemovesEvent(t *testing.T) {
	bus := NewBus(nil)
	unsubscribe := bus.Subscribe("progressCancel", func(any) {})
	unsubscribe()

	require.Zero(t, bus.Subscribers("progressCancel"))
	require.Zero(t, bus.Publish("progressCancel", nil))
}

func TestBus_PanickingHandlerIsIsolated(t *testing.T) {
	bus := NewBus(nil)
	reached := false
	bus.Subscribe("progress", func(any) { panic("boom") })
	bus.Subscribe("progress", func(any) { reached = true })

	require.NotPanics(t, func() { bus.Publish("progress", nil) })
	require.True(t, reached)
}

package event_bus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testType EventType = "test.event"

func TestEventBus_Publish(t *testing.T) {
	t.Run("should deliver typed payloads in subscription order", func(t *testing.T) {
		// given
		bus := NewEventBus()
		var seen []string
		SubscribeTyped(bus, testType, func(e EventT[string]) error {
			seen = append(seen, "first:"+e.Data)
			return nil
		})
		SubscribeTyped(bus, testType, func(e EventT[string]) error {
			seen = append(seen, "second:"+e.Data)
			return nil
		})

		// when
		err := bus.Publish(NewEvent(context.Background(), testType, "payload"))

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"first:payload", "second:payload"}, seen)
	})

	t.Run("should skip handlers expecting another payload type", func(t *testing.T) {
		bus := NewEventBus()
		called := false
		SubscribeTyped(bus, testType, func(e EventT[int]) error {
			called = true
			return nil
		})

		err := bus.Publish(NewEvent(context.Background(), testType, "not an int"))

		require.NoError(t, err)
		assert.False(t, called)
	})

	t.Run("should collect handler errors and panics", func(t *testing.T) {
		// given
		bus := NewEventBus()
		failure := errors.New("disk full")
		bus.Subscribe(testType, func(e Event) error { return failure })
		bus.Subscribe(testType, func(e Event) error { panic("boom") })
		reached := false
		bus.Subscribe(testType, func(e Event) error {
			reached = true
			return nil
		})

		// when
		err := bus.Publish(NewEvent(context.Background(), testType, nil))

		// then
		require.Error(t, err)
		assert.ErrorIs(t, err, failure)
		assert.Contains(t, err.Error(), "panicked")
		assert.True(t, reached)
	})

	t.Run("should not dispatch with a cancelled context", func(t *testing.T) {
		bus := NewEventBus()
		called := false
		bus.Subscribe(testType, func(e Event) error {
			called = true
			return nil
		})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := bus.Publish(NewEvent(ctx, testType, nil))

		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, called)
	})

	t.Run("should stop delivering after unsubscribe", func(t *testing.T) {
		// given
		bus := NewEventBus()
		calls := 0
		unsubscribe := bus.Subscribe(testType, func(e Event) error {
			calls++
			return nil
		})
		require.NoError(t, bus.Publish(NewEvent(context.Background(), testType, nil)))

		// when
		unsubscribe()
		require.NoError(t, bus.Publish(NewEvent(context.Background(), testType, nil)))

		// then
		assert.Equal(t, 1, calls)
	})
}

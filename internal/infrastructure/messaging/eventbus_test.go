package messaging

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnhub/progress-hub/internal/domain/shared"
)

func newSyncBus() *InMemoryEventBus {
	config := DefaultInMemoryEventBusConfig()
	config.AsyncMode = false
	return NewInMemoryEventBus(config)
}

func TestEventBus_PublishToSubscriber(t *testing.T) {
	bus := newSyncBus()
	defer bus.Close()

	var received []shared.Event
	err := bus.Subscribe(shared.EventProgressCreated, func(event shared.Event) error {
		received = append(received, event)
		return nil
	})
	require.NoError(t, err)

	event := shared.NewProgressChangedEvent("p1", "u1", "l1", "c1", "", "complete", "req-1")
	require.NoError(t, bus.Publish(event))

	require.Len(t, received, 1)
	assert.Equal(t, shared.EventProgressCreated, received[0].EventType())
	assert.Equal(t, "p1", received[0].AggregateID())
}

func TestEventBus_TypeFiltering(t *testing.T) {
	bus := newSyncBus()
	defer bus.Close()

	progressCount := 0
	enrollCount := 0
	allCount := 0

	require.NoError(t, bus.Subscribe(shared.EventProgressChanged, func(shared.Event) error {
		progressCount++
		return nil
	}))
	require.NoError(t, bus.Subscribe(shared.EventUserEnrolled, func(shared.Event) error {
		enrollCount++
		return nil
	}))
	require.NoError(t, bus.SubscribeAll(func(shared.Event) error {
		allCount++
		return nil
	}))

	require.NoError(t, bus.Publish(shared.NewProgressChangedEvent("p1", "u1", "l1", "c1", "pending", "complete", "r1")))
	require.NoError(t, bus.Publish(shared.NewUserEnrolledEvent("e1", "u1", "c1", 4)))

	assert.Equal(t, 1, progressCount)
	assert.Equal(t, 1, enrollCount)
	assert.Equal(t, 2, allCount)
}

func TestEventBus_HandlerErrorDoesNotStopOthers(t *testing.T) {
	bus := newSyncBus()
	defer bus.Close()

	secondCalled := false
	require.NoError(t, bus.Subscribe(shared.EventUserEnrolled, func(shared.Event) error {
		return errors.New("observer failed")
	}))
	require.NoError(t, bus.Subscribe(shared.EventUserEnrolled, func(shared.Event) error {
		secondCalled = true
		return nil
	}))

	// Publish never reports observer failures to the caller.
	require.NoError(t, bus.Publish(shared.NewUserEnrolledEvent("e1", "u1", "c1", 4)))
	assert.True(t, secondCalled)
}

func TestEventBus_Metrics(t *testing.T) {
	bus := newSyncBus()
	defer bus.Close()

	require.NoError(t, bus.Subscribe(shared.EventUserEnrolled, func(shared.Event) error {
		return nil
	}))
	require.NoError(t, bus.Subscribe(shared.EventUserEnrolled, func(shared.Event) error {
		return errors.New("boom")
	}))

	require.NoError(t, bus.Publish(shared.NewUserEnrolledEvent("e1", "u1", "c1", 4)))

	snapshot := bus.Metrics().Snapshot()
	assert.Equal(t, int64(1), snapshot.TotalPublished)
	assert.Equal(t, int64(2), snapshot.TotalHandlerExecs)
	assert.Equal(t, 0.5, snapshot.HandlerSuccessRate)
}

func TestEventBus_AsyncDelivery(t *testing.T) {
	config := DefaultInMemoryEventBusConfig()
	config.AsyncMode = true
	config.WorkerPoolSize = 2
	bus := NewInMemoryEventBus(config)

	done := make(chan struct{}, 5)
	require.NoError(t, bus.SubscribeAll(func(shared.Event) error {
		done <- struct{}{}
		return nil
	}))

	for i := 0; i < 5; i++ {
		require.NoError(t, bus.Publish(shared.NewUserEnrolledEvent("e1", "u1", "c1", 4)))
	}

	for i := 0; i < 5; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatalf("only %d of 5 handlers ran", i)
		}
	}

	require.NoError(t, bus.Close())
}

func TestEventBus_ClosedRejectsOperations(t *testing.T) {
	bus := newSyncBus()
	require.NoError(t, bus.Close())

	err := bus.Publish(shared.NewUserEnrolledEvent("e1", "u1", "c1", 4))
	assert.ErrorIs(t, err, ErrEventBusClosed)

	err = bus.Subscribe(shared.EventUserEnrolled, func(shared.Event) error { return nil })
	assert.ErrorIs(t, err, ErrEventBusClosed)

	// Closing twice is safe.
	assert.NoError(t, bus.Close())
}

func TestEventBus_NilChecks(t *testing.T) {
	bus := newSyncBus()
	defer bus.Close()

	assert.Error(t, bus.Subscribe(shared.EventUserEnrolled, nil))
	assert.Error(t, bus.SubscribeAll(nil))
	assert.Error(t, bus.Publish(nil))
}

package eventhandler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnhub/progress-hub/internal/domain/shared"
)

type spyInvalidator struct {
	calls [][2]string
	err   error
}

func (s *spyInvalidator) Invalidate(ctx context.Context, userID, courseID string) error {
	s.calls = append(s.calls, [2]string{userID, courseID})
	return s.err
}

func TestOnProgressChanged_InvalidatesSummary(t *testing.T) {
	spy := &spyInvalidator{}
	h := NewOnProgressChangedHandler(spy, nil, DefaultProgressChangedConfig())

	event := shared.NewProgressChangedEvent("p1", "u1", "l1", "c1", "pending", "complete", "req-1")
	require.NoError(t, h.Handle(event))

	require.Len(t, spy.calls, 1)
	assert.Equal(t, "u1", spy.calls[0][0])
	assert.Equal(t, "c1", spy.calls[0][1])
}

func TestOnProgressChanged_SkipsWithoutCourseID(t *testing.T) {
	spy := &spyInvalidator{}
	h := NewOnProgressChangedHandler(spy, nil, DefaultProgressChangedConfig())

	event := shared.NewProgressChangedEvent("p1", "u1", "l1", "", "pending", "complete", "req-1")
	require.NoError(t, h.Handle(event))
	assert.Empty(t, spy.calls)
}

func TestOnProgressChanged_InvalidationDisabled(t *testing.T) {
	spy := &spyInvalidator{}
	config := DefaultProgressChangedConfig()
	config.InvalidateCache = false
	h := NewOnProgressChangedHandler(spy, nil, config)

	event := shared.NewProgressChangedEvent("p1", "u1", "l1", "c1", "pending", "complete", "req-1")
	require.NoError(t, h.Handle(event))
	assert.Empty(t, spy.calls)
}

func TestOnProgressChanged_InvalidatorErrorIsSwallowed(t *testing.T) {
	spy := &spyInvalidator{err: errors.New("redis down")}
	h := NewOnProgressChangedHandler(spy, nil, DefaultProgressChangedConfig())

	event := shared.NewProgressChangedEvent("p1", "u1", "l1", "c1", "pending", "complete", "req-1")
	assert.NoError(t, h.Handle(event))
}

func TestOnProgressChanged_NilInvalidator(t *testing.T) {
	h := NewOnProgressChangedHandler(nil, nil, DefaultProgressChangedConfig())

	event := shared.NewProgressChangedEvent("p1", "u1", "l1", "c1", "", "pending", "req-1")
	assert.NoError(t, h.Handle(event))
}

func TestOnProgressChanged_IgnoresOtherEventTypes(t *testing.T) {
	spy := &spyInvalidator{}
	h := NewOnProgressChangedHandler(spy, nil, DefaultProgressChangedConfig())

	assert.NoError(t, h.Handle(shared.NewUserEnrolledEvent("e1", "u1", "c1", 2)))
	assert.Empty(t, spy.calls)
}

func TestOnUserEnrolled_HandlesEvent(t *testing.T) {
	h := NewOnUserEnrolledHandler(nil, DefaultUserEnrolledConfig())

	assert.NoError(t, h.Handle(shared.NewUserEnrolledEvent("e1", "u1", "c1", 10)))
	// Low seats only changes the log level, never the result.
	assert.NoError(t, h.Handle(shared.NewUserEnrolledEvent("e2", "u2", "c1", 1)))
	// Mismatched event types are ignored.
	assert.NoError(t, h.Handle(shared.NewProgressChangedEvent("p1", "u1", "l1", "c1", "", "pending", "r1")))
}

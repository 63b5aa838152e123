package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnhub/progress-hub/internal/application/validation"
	"github.com/learnhub/progress-hub/internal/domain/course"
	"github.com/learnhub/progress-hub/internal/domain/enrollment"
	"github.com/learnhub/progress-hub/internal/domain/progress"
	"github.com/learnhub/progress-hub/internal/domain/shared"
	"github.com/learnhub/progress-hub/internal/domain/user"
)

// progressFixture wires a CreateProgressHandler against in-memory fakes with
// one enrolled user and a two-lesson course.
type progressFixture struct {
	handler *CreateProgressHandler
	store   *memProgressStore
	bus     *capturePublisher
	users   *stubUserRepo

	user    *user.User
	course  *course.Course
	lesson1 *course.Lesson
	lesson2 *course.Lesson
}

func newProgressFixture(t *testing.T) *progressFixture {
	t.Helper()

	u, err := user.New("aidana@example.com", "Aidana")
	require.NoError(t, err)

	c, err := course.New("Go Fundamentals", "", 10)
	require.NoError(t, err)

	l1, err := course.NewLesson(c.ID, "Intro", "", 1)
	require.NoError(t, err)
	l2, err := course.NewLesson(c.ID, "Types", "", 2)
	require.NoError(t, err)

	users := newStubUserRepo(u)
	courses := newStubCourseRepo(c)
	lessons := &stubLessonRepo{lessons: []*course.Lesson{l1, l2}}

	enrollments := newMemEnrollmentStore(courses)
	e, err := enrollment.New(u.ID, c.ID)
	require.NoError(t, err)
	require.NoError(t, enrollments.Insert(context.Background(), e))

	store := newMemProgressStore()
	bus := &capturePublisher{}

	validator := validation.NewService(users, courses, lessons, enrollments)
	prereqs := validation.NewPrerequisiteChecker(lessons, store)
	handler := NewCreateProgressHandler(validator, prereqs, store, store, bus, nil)

	return &progressFixture{
		handler: handler,
		store:   store,
		bus:     bus,
		users:   users,
		user:    u,
		course:  c,
		lesson1: l1,
		lesson2: l2,
	}
}

func TestCreateProgress_CreatesNewRow(t *testing.T) {
	f := newProgressFixture(t)

	result, err := f.handler.Handle(context.Background(), CreateProgressCommand{
		UserID:    f.user.ID,
		LessonID:  f.lesson1.ID,
		RequestID: "req-1",
		Status:    "complete",
	})
	require.NoError(t, err)

	assert.True(t, result.Created)
	assert.False(t, result.Replayed)
	assert.False(t, result.NoOp)
	assert.Equal(t, progress.StatusComplete, result.Progress.Status)
	assert.NotNil(t, result.Progress.CompletedAt)

	// Creation history entry has no old status.
	history, err := f.store.ListByProgress(context.Background(), result.Progress.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Nil(t, history[0].OldStatus)
	assert.Equal(t, progress.StatusComplete, history[0].NewStatus)
	assert.Equal(t, "req-1", history[0].RequestID)

	// The post-commit event carries the course ID for cache invalidation.
	require.Len(t, f.bus.events, 1)
	event, ok := f.bus.events[0].(shared.ProgressChangedEvent)
	require.True(t, ok)
	assert.Equal(t, shared.EventProgressCreated, event.EventType())
	assert.Equal(t, f.course.ID, event.CourseID)
	assert.Empty(t, event.OldStatus)
	assert.Equal(t, "complete", event.NewStatus)
}

func TestCreateProgress_ReplaySameRequestID(t *testing.T) {
	f := newProgressFixture(t)
	cmd := CreateProgressCommand{
		UserID:    f.user.ID,
		LessonID:  f.lesson1.ID,
		RequestID: "req-1",
		Status:    "complete",
	}

	first, err := f.handler.Handle(context.Background(), cmd)
	require.NoError(t, err)
	require.True(t, first.Created)

	second, err := f.handler.Handle(context.Background(), cmd)
	require.NoError(t, err)

	assert.True(t, second.Replayed)
	assert.False(t, second.Created)
	assert.Equal(t, first.Progress.ID, second.Progress.ID)

	// The replay must not write anything.
	history, err := f.store.ListByProgress(context.Background(), first.Progress.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
	assert.Len(t, f.bus.events, 1)
}

func TestCreateProgress_RequestIDConflict(t *testing.T) {
	f := newProgressFixture(t)

	_, err := f.handler.Handle(context.Background(), CreateProgressCommand{
		UserID:    f.user.ID,
		LessonID:  f.lesson1.ID,
		RequestID: "req-1",
		Status:    "complete",
	})
	require.NoError(t, err)

	// Same request ID against a different lesson.
	_, err = f.handler.Handle(context.Background(), CreateProgressCommand{
		UserID:    f.user.ID,
		LessonID:  f.lesson2.ID,
		RequestID: "req-1",
		Status:    "complete",
	})
	require.Error(t, err)

	var conflict *shared.RequestIDConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "req-1", conflict.RequestID)
	assert.Equal(t, f.lesson1.ID, conflict.LessonID)
	assert.True(t, shared.IsConflict(err))
}

func TestCreateProgress_TransitionExistingRow(t *testing.T) {
	f := newProgressFixture(t)
	ctx := context.Background()

	_, err := f.handler.Handle(ctx, CreateProgressCommand{
		UserID: f.user.ID, LessonID: f.lesson1.ID, RequestID: "req-1", Status: "pending",
	})
	require.NoError(t, err)

	result, err := f.handler.Handle(ctx, CreateProgressCommand{
		UserID: f.user.ID, LessonID: f.lesson1.ID, RequestID: "req-2", Status: "complete",
	})
	require.NoError(t, err)

	assert.False(t, result.Created)
	assert.False(t, result.NoOp)
	assert.Equal(t, progress.StatusComplete, result.Progress.Status)
	// The row keeps the request ID that created it.
	assert.Equal(t, "req-1", result.Progress.RequestID)

	history, err := f.store.ListByProgress(ctx, result.Progress.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.NotNil(t, history[1].OldStatus)
	assert.Equal(t, progress.StatusPending, *history[1].OldStatus)
	assert.Equal(t, "req-2", history[1].RequestID)
}

func TestCreateProgress_SameStatusIsNoOp(t *testing.T) {
	f := newProgressFixture(t)
	ctx := context.Background()

	_, err := f.handler.Handle(ctx, CreateProgressCommand{
		UserID: f.user.ID, LessonID: f.lesson1.ID, RequestID: "req-1", Status: "failed",
	})
	require.NoError(t, err)

	result, err := f.handler.Handle(ctx, CreateProgressCommand{
		UserID: f.user.ID, LessonID: f.lesson1.ID, RequestID: "req-2", Status: "failed",
	})
	require.NoError(t, err)

	assert.True(t, result.NoOp)
	assert.False(t, result.Created)

	history, err := f.store.ListByProgress(ctx, result.Progress.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1, "a no-op must not append history")
	assert.Len(t, f.bus.events, 1, "a no-op must not publish")
}

func TestCreateProgress_ForbiddenTransition(t *testing.T) {
	f := newProgressFixture(t)
	ctx := context.Background()

	_, err := f.handler.Handle(ctx, CreateProgressCommand{
		UserID: f.user.ID, LessonID: f.lesson1.ID, RequestID: "req-1", Status: "complete",
	})
	require.NoError(t, err)

	_, err = f.handler.Handle(ctx, CreateProgressCommand{
		UserID: f.user.ID, LessonID: f.lesson1.ID, RequestID: "req-2", Status: "failed",
	})
	require.Error(t, err)

	var transitionErr *shared.StatusTransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, "complete", transitionErr.From)
	assert.Equal(t, "failed", transitionErr.To)
}

func TestCreateProgress_PrerequisitesNotMet(t *testing.T) {
	f := newProgressFixture(t)

	_, err := f.handler.Handle(context.Background(), CreateProgressCommand{
		UserID: f.user.ID, LessonID: f.lesson2.ID, RequestID: "req-1", Status: "complete",
	})
	require.Error(t, err)

	var prereqErr *shared.PrerequisitesNotMetError
	require.ErrorAs(t, err, &prereqErr)
	assert.Equal(t, f.lesson1.ID, prereqErr.PrerequisiteID)
}

func TestCreateProgress_NotEnrolled(t *testing.T) {
	f := newProgressFixture(t)
	ctx := context.Background()

	stranger, err := user.New("timur@example.com", "Timur")
	require.NoError(t, err)
	require.NoError(t, f.users.Create(ctx, stranger))

	_, err = f.handler.Handle(ctx, CreateProgressCommand{
		UserID: stranger.ID, LessonID: f.lesson1.ID, RequestID: "req-1", Status: "pending",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrNotEnrolled)
}

func TestCreateProgress_UnknownUserAndLesson(t *testing.T) {
	f := newProgressFixture(t)
	ctx := context.Background()

	_, err := f.handler.Handle(ctx, CreateProgressCommand{
		UserID: "nope", LessonID: f.lesson1.ID, RequestID: "req-1", Status: "pending",
	})
	assert.ErrorIs(t, err, shared.ErrUserNotFound)

	_, err = f.handler.Handle(ctx, CreateProgressCommand{
		UserID: f.user.ID, LessonID: "nope", RequestID: "req-2", Status: "pending",
	})
	assert.ErrorIs(t, err, shared.ErrLessonNotFound)
}

func TestCreateProgress_UnknownStatusRejected(t *testing.T) {
	f := newProgressFixture(t)

	_, err := f.handler.Handle(context.Background(), CreateProgressCommand{
		UserID: f.user.ID, LessonID: f.lesson1.ID, RequestID: "req-1", Status: "done",
	})
	require.Error(t, err)
	assert.True(t, shared.IsValidation(err))
}

func TestCreateProgress_InsertRaceRetriesAsTransition(t *testing.T) {
	f := newProgressFixture(t)
	ctx := context.Background()

	// A concurrent request commits a pending row between our existence check
	// and our insert.
	raced, err := progress.NewProgress(f.user.ID, f.lesson1.ID, "req-other", progress.StatusPending)
	require.NoError(t, err)
	f.store.insertRace = raced

	result, err := f.handler.Handle(ctx, CreateProgressCommand{
		UserID: f.user.ID, LessonID: f.lesson1.ID, RequestID: "req-1", Status: "complete",
	})
	require.NoError(t, err, "the race must never surface to the caller")

	assert.False(t, result.Created)
	assert.Equal(t, progress.StatusComplete, result.Progress.Status)
	assert.Equal(t, raced.ID, result.Progress.ID)
}

func TestCreateProgress_InsertRaceOnRequestID(t *testing.T) {
	f := newProgressFixture(t)
	ctx := context.Background()

	// A concurrent request commits the same request ID against another lesson
	// between our existence check and our insert. That is a conflict, not a
	// transition retry.
	raced, err := progress.NewProgress(f.user.ID, f.lesson2.ID, "req-1", progress.StatusPending)
	require.NoError(t, err)
	f.store.insertRace = raced

	_, err = f.handler.Handle(ctx, CreateProgressCommand{
		UserID: f.user.ID, LessonID: f.lesson1.ID, RequestID: "req-1", Status: "pending",
	})
	require.Error(t, err)

	var conflict *shared.RequestIDConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "req-1", conflict.RequestID)
	assert.Equal(t, f.lesson2.ID, conflict.LessonID)
	assert.True(t, shared.IsConflict(err))
}

func TestCreateProgress_InsertRaceReplaysSameRequestID(t *testing.T) {
	f := newProgressFixture(t)
	ctx := context.Background()

	// The concurrent writer was a duplicate of this very request.
	raced, err := progress.NewProgress(f.user.ID, f.lesson1.ID, "req-1", progress.StatusPending)
	require.NoError(t, err)
	f.store.insertRace = raced

	result, err := f.handler.Handle(ctx, CreateProgressCommand{
		UserID: f.user.ID, LessonID: f.lesson1.ID, RequestID: "req-1", Status: "pending",
	})
	require.NoError(t, err)

	assert.True(t, result.Replayed)
	assert.False(t, result.Created)
	assert.Equal(t, raced.ID, result.Progress.ID)
}

func TestCreateProgress_IsIdempotentRequest(t *testing.T) {
	f := newProgressFixture(t)
	ctx := context.Background()

	seen, err := f.handler.IsIdempotentRequest(ctx, "req-1")
	require.NoError(t, err)
	assert.False(t, seen)

	_, err = f.handler.Handle(ctx, CreateProgressCommand{
		UserID: f.user.ID, LessonID: f.lesson1.ID, RequestID: "req-1", Status: "pending",
	})
	require.NoError(t, err)

	seen, err = f.handler.IsIdempotentRequest(ctx, "req-1")
	require.NoError(t, err)
	assert.True(t, seen)

	_, err = f.handler.IsIdempotentRequest(ctx, "")
	assert.Error(t, err)
}

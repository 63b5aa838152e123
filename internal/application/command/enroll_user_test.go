package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnhub/progress-hub/internal/application/validation"
	"github.com/learnhub/progress-hub/internal/domain/course"
	"github.com/learnhub/progress-hub/internal/domain/shared"
	"github.com/learnhub/progress-hub/internal/domain/user"
)

type enrollFixture struct {
	handler     *EnrollUserHandler
	enrollments *memEnrollmentStore
	bus         *capturePublisher
	users       *stubUserRepo

	user   *user.User
	course *course.Course
}

func newEnrollFixture(t *testing.T, maxSeats int) *enrollFixture {
	t.Helper()

	u, err := user.New("aidana@example.com", "Aidana")
	require.NoError(t, err)

	c, err := course.New("Go Fundamentals", "", maxSeats)
	require.NoError(t, err)

	users := newStubUserRepo(u)
	courses := newStubCourseRepo(c)
	enrollments := newMemEnrollmentStore(courses)
	bus := &capturePublisher{}

	validator := validation.NewService(users, courses, &stubLessonRepo{}, enrollments)
	handler := NewEnrollUserHandler(validator, enrollments, enrollments, bus, nil)

	return &enrollFixture{
		handler:     handler,
		enrollments: enrollments,
		bus:         bus,
		users:       users,
		user:        u,
		course:      c,
	}
}

func TestEnrollUser_Success(t *testing.T) {
	f := newEnrollFixture(t, 3)

	result, err := f.handler.Handle(context.Background(), EnrollUserCommand{
		UserID:   f.user.ID,
		CourseID: f.course.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, f.user.ID, result.Enrollment.UserID)
	assert.Equal(t, f.course.ID, result.Enrollment.CourseID)
	assert.Equal(t, 2, result.SeatsRemaining)

	enrolled, err := f.enrollments.Exists(context.Background(), f.user.ID, f.course.ID)
	require.NoError(t, err)
	assert.True(t, enrolled)

	require.Len(t, f.bus.events, 1)
	event, ok := f.bus.events[0].(shared.UserEnrolledEvent)
	require.True(t, ok)
	assert.Equal(t, shared.EventUserEnrolled, event.EventType())
	assert.Equal(t, 2, event.SeatsRemaining)
}

func TestEnrollUser_CourseFull(t *testing.T) {
	f := newEnrollFixture(t, 1)
	ctx := context.Background()

	first, err := user.New("timur@example.com", "Timur")
	require.NoError(t, err)
	require.NoError(t, f.users.Create(ctx, first))

	_, err = f.handler.Handle(ctx, EnrollUserCommand{UserID: first.ID, CourseID: f.course.ID})
	require.NoError(t, err)

	// The single seat is taken.
	_, err = f.handler.Handle(ctx, EnrollUserCommand{UserID: f.user.ID, CourseID: f.course.ID})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrCourseFull)
	assert.True(t, shared.IsConflict(err))

	assert.Len(t, f.bus.events, 1, "a rejected enrollment must not publish")
}

func TestEnrollUser_AlreadyEnrolled(t *testing.T) {
	f := newEnrollFixture(t, 3)
	ctx := context.Background()

	_, err := f.handler.Handle(ctx, EnrollUserCommand{UserID: f.user.ID, CourseID: f.course.ID})
	require.NoError(t, err)

	_, err = f.handler.Handle(ctx, EnrollUserCommand{UserID: f.user.ID, CourseID: f.course.ID})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrAlreadyEnrolled)
}

func TestEnrollUser_CourseNotFound(t *testing.T) {
	f := newEnrollFixture(t, 3)

	_, err := f.handler.Handle(context.Background(), EnrollUserCommand{
		UserID:   f.user.ID,
		CourseID: "nope",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrCourseNotFound)
}

func TestEnrollUser_UserNotFound(t *testing.T) {
	f := newEnrollFixture(t, 3)

	_, err := f.handler.Handle(context.Background(), EnrollUserCommand{
		UserID:   "nope",
		CourseID: f.course.ID,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrUserNotFound)
}

func TestEnrollUser_Validation(t *testing.T) {
	f := newEnrollFixture(t, 3)

	_, err := f.handler.Handle(context.Background(), EnrollUserCommand{CourseID: f.course.ID})
	assert.True(t, shared.IsValidation(err))

	_, err = f.handler.Handle(context.Background(), EnrollUserCommand{UserID: f.user.ID})
	assert.True(t, shared.IsValidation(err))
}

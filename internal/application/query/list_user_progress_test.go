package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnhub/progress-hub/internal/application/validation"
	"github.com/learnhub/progress-hub/internal/domain/course"
	"github.com/learnhub/progress-hub/internal/domain/progress"
	"github.com/learnhub/progress-hub/internal/domain/shared"
	"github.com/learnhub/progress-hub/internal/domain/user"
)

func newListUserProgressFixture(t *testing.T) (*ListUserProgressHandler, *user.User, *course.Course, *fakeProgressRepo) {
	t.Helper()

	u, err := user.New("aidana@example.com", "Aidana")
	require.NoError(t, err)
	c, err := course.New("Go Fundamentals", "", 10)
	require.NoError(t, err)

	repo := &fakeProgressRepo{}
	service := validation.NewService(
		&fakeUserRepo{users: []*user.User{u}},
		&fakeCourseRepo{courses: []*course.Course{c}},
		&fakeLessonRepo{},
		&fakeEnrollmentRepo{},
	)

	return NewListUserProgressHandler(service, repo), u, c, repo
}

func TestListUserProgress(t *testing.T) {
	handler, u, c, repo := newListUserProgressFixture(t)

	p1, err := progress.NewProgress(u.ID, "lesson-1", "req-1", progress.StatusComplete)
	require.NoError(t, err)
	p2, err := progress.NewProgress(u.ID, "lesson-2", "req-2", progress.StatusFailed)
	require.NoError(t, err)
	repo.rows = []*progress.Progress{p1, p2}

	rows, err := handler.Handle(context.Background(), ListUserProgressQuery{
		UserID:   u.ID,
		CourseID: c.ID,
	})
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, progress.StatusComplete, rows[0].Status)
	assert.Equal(t, progress.StatusFailed, rows[1].Status)
}

func TestListUserProgress_EmptyIsNotAnError(t *testing.T) {
	handler, u, c, _ := newListUserProgressFixture(t)

	rows, err := handler.Handle(context.Background(), ListUserProgressQuery{
		UserID:   u.ID,
		CourseID: c.ID,
	})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestListUserProgress_UnknownUserOrCourse(t *testing.T) {
	handler, u, c, _ := newListUserProgressFixture(t)

	_, err := handler.Handle(context.Background(), ListUserProgressQuery{
		UserID:   "nope",
		CourseID: c.ID,
	})
	assert.ErrorIs(t, err, shared.ErrUserNotFound)

	_, err = handler.Handle(context.Background(), ListUserProgressQuery{
		UserID:   u.ID,
		CourseID: "nope",
	})
	assert.ErrorIs(t, err, shared.ErrCourseNotFound)
}

func TestListUserProgress_Validation(t *testing.T) {
	handler, u, _, _ := newListUserProgressFixture(t)

	_, err := handler.Handle(context.Background(), ListUserProgressQuery{UserID: u.ID})
	assert.True(t, shared.IsValidation(err))
}

package query

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnhub/progress-hub/internal/application/validation"
	"github.com/learnhub/progress-hub/internal/domain/course"
	"github.com/learnhub/progress-hub/internal/domain/progress"
	"github.com/learnhub/progress-hub/internal/domain/shared"
	"github.com/learnhub/progress-hub/internal/domain/user"
)

// fakeSummaryCache records interactions; Get misses until a Set happens.
type fakeSummaryCache struct {
	stored  map[string]*ProgressSummary
	getErr  error
	gets    int
	sets    int
}

func newFakeSummaryCache() *fakeSummaryCache {
	return &fakeSummaryCache{stored: make(map[string]*ProgressSummary)}
}

func (c *fakeSummaryCache) key(userID, courseID string) string { return userID + ":" + courseID }

func (c *fakeSummaryCache) Get(ctx context.Context, userID, courseID string) (*ProgressSummary, error) {
	c.gets++
	if c.getErr != nil {
		return nil, c.getErr
	}
	if s, ok := c.stored[c.key(userID, courseID)]; ok {
		return s, nil
	}
	return nil, shared.ErrNotFound
}

func (c *fakeSummaryCache) Set(ctx context.Context, summary *ProgressSummary) error {
	c.sets++
	c.stored[c.key(summary.UserID, summary.CourseID)] = summary
	return nil
}

func (c *fakeSummaryCache) Invalidate(ctx context.Context, userID, courseID string) error {
	delete(c.stored, c.key(userID, courseID))
	return nil
}

type summaryFixture struct {
	user    *user.User
	course  *course.Course
	lessons []*course.Lesson
	rows    *fakeProgressRepo
	service *validation.Service
}

func newSummaryFixture(t *testing.T, lessonCount int) *summaryFixture {
	t.Helper()

	u, err := user.New("aidana@example.com", "Aidana")
	require.NoError(t, err)

	c, err := course.New("Go Fundamentals", "", 10)
	require.NoError(t, err)

	lessons := &fakeLessonRepo{}
	all := make([]*course.Lesson, 0, lessonCount)
	titles := []string{"Intro", "Types", "Functions", "Interfaces", "Errors"}
	for i := 0; i < lessonCount; i++ {
		l, err := course.NewLesson(c.ID, titles[i%len(titles)], "", i+1)
		require.NoError(t, err)
		lessons.lessons = append(lessons.lessons, l)
		all = append(all, l)
	}

	rows := &fakeProgressRepo{}
	service := validation.NewService(
		&fakeUserRepo{users: []*user.User{u}},
		&fakeCourseRepo{courses: []*course.Course{c}},
		lessons,
		&fakeEnrollmentRepo{},
	)

	return &summaryFixture{user: u, course: c, lessons: all, rows: rows, service: service}
}

func (f *summaryFixture) addProgress(t *testing.T, lessonID string, status progress.Status) {
	t.Helper()
	p, err := progress.NewProgress(f.user.ID, lessonID, "req-"+lessonID, status)
	require.NoError(t, err)
	f.rows.rows = append(f.rows.rows, p)
}

func TestGetProgressSummary_ComputesFromDatabase(t *testing.T) {
	f := newSummaryFixture(t, 3)
	f.addProgress(t, f.lessons[0].ID, progress.StatusComplete)
	f.addProgress(t, f.lessons[1].ID, progress.StatusFailed)
	// Lesson 3 has no row at all.

	handler := NewGetProgressSummaryHandler(f.service, f.rows, nil, nil)
	summary, err := handler.Handle(context.Background(), GetProgressSummaryQuery{
		UserID:   f.user.ID,
		CourseID: f.course.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.CompletedLessons)
	assert.Equal(t, 3, summary.TotalLessons)
	assert.InDelta(t, 33.33, summary.Percent, 0.001)

	require.Len(t, summary.Lessons, 3)
	assert.Equal(t, "complete", summary.Lessons[0].Status)
	assert.Equal(t, "failed", summary.Lessons[1].Status)
	// A missing row reads as pending.
	assert.Equal(t, "pending", summary.Lessons[2].Status)
	assert.Equal(t, 3, summary.Lessons[2].OrderIndex)
}

func TestGetProgressSummary_PercentRounding(t *testing.T) {
	tests := []struct {
		lessons   int
		completed int
		want      float64
	}{
		{3, 1, 33.33},
		{3, 2, 66.67},
		{4, 3, 75},
		{5, 5, 100},
		{2, 0, 0},
	}

	for _, tt := range tests {
		f := newSummaryFixture(t, tt.lessons)
		for i := 0; i < tt.completed; i++ {
			f.addProgress(t, f.lessons[i].ID, progress.StatusComplete)
		}

		handler := NewGetProgressSummaryHandler(f.service, f.rows, nil, nil)
		summary, err := handler.Handle(context.Background(), GetProgressSummaryQuery{
			UserID:   f.user.ID,
			CourseID: f.course.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, tt.want, summary.Percent, "%d of %d lessons", tt.completed, tt.lessons)
	}
}

func TestGetProgressSummary_EmptyCourse(t *testing.T) {
	f := newSummaryFixture(t, 0)

	handler := NewGetProgressSummaryHandler(f.service, f.rows, nil, nil)
	summary, err := handler.Handle(context.Background(), GetProgressSummaryQuery{
		UserID:   f.user.ID,
		CourseID: f.course.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, 0, summary.TotalLessons)
	assert.Equal(t, float64(0), summary.Percent)
	assert.Empty(t, summary.Lessons)
}

func TestGetProgressSummary_CacheHitSkipsCompute(t *testing.T) {
	f := newSummaryFixture(t, 2)
	cache := newFakeSummaryCache()

	handler := NewGetProgressSummaryHandler(f.service, f.rows, cache, nil)
	q := GetProgressSummaryQuery{UserID: f.user.ID, CourseID: f.course.ID}

	first, err := handler.Handle(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets, "a miss stores the computed summary")

	second, err := handler.Handle(context.Background(), q)
	require.NoError(t, err)

	assert.Same(t, first, second, "the second read must come from cache")
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, 2, cache.gets)
}

func TestGetProgressSummary_CacheErrorDegradesToCompute(t *testing.T) {
	f := newSummaryFixture(t, 2)
	cache := newFakeSummaryCache()
	cache.getErr = errors.New("connection refused")

	handler := NewGetProgressSummaryHandler(f.service, f.rows, cache, nil)
	summary, err := handler.Handle(context.Background(), GetProgressSummaryQuery{
		UserID:   f.user.ID,
		CourseID: f.course.ID,
	})
	require.NoError(t, err, "cache trouble must not fail the read")
	assert.Equal(t, 2, summary.TotalLessons)
}

func TestGetProgressSummary_UnknownUserOrCourse(t *testing.T) {
	f := newSummaryFixture(t, 2)
	handler := NewGetProgressSummaryHandler(f.service, f.rows, nil, nil)

	_, err := handler.Handle(context.Background(), GetProgressSummaryQuery{
		UserID:   "nope",
		CourseID: f.course.ID,
	})
	assert.ErrorIs(t, err, shared.ErrUserNotFound)

	_, err = handler.Handle(context.Background(), GetProgressSummaryQuery{
		UserID:   f.user.ID,
		CourseID: "nope",
	})
	assert.ErrorIs(t, err, shared.ErrCourseNotFound)
}

package query

import (
	"context"

	"github.com/learnhub/progress-hub/internal/domain/course"
	"github.com/learnhub/progress-hub/internal/domain/enrollment"
	"github.com/learnhub/progress-hub/internal/domain/progress"
	"github.com/learnhub/progress-hub/internal/domain/shared"
	"github.com/learnhub/progress-hub/internal/domain/user"
)

// In-memory fakes shared by the query handler tests.

type fakeUserRepo struct {
	users []*user.User
}

func (r *fakeUserRepo) Create(ctx context.Context, u *user.User) error {
	r.users = append(r.users, u)
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*user.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, shared.ErrUserNotFound
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email shared.Email) (*user.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, shared.ErrUserNotFound
}

func (r *fakeUserRepo) Exists(ctx context.Context, id string) (bool, error) {
	_, err := r.GetByID(ctx, id)
	return err == nil, nil
}

func (r *fakeUserRepo) List(ctx context.Context, p shared.Pagination) ([]*user.User, error) {
	return r.users, nil
}

type fakeCourseRepo struct {
	courses []*course.Course
	seats   []*course.CourseWithSeats
}

func (r *fakeCourseRepo) Create(ctx context.Context, c *course.Course) error {
	r.courses = append(r.courses, c)
	return nil
}

func (r *fakeCourseRepo) GetByID(ctx context.Context, id string) (*course.Course, error) {
	for _, c := range r.courses {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, shared.ErrCourseNotFound
}

func (r *fakeCourseRepo) Exists(ctx context.Context, id string) (bool, error) {
	_, err := r.GetByID(ctx, id)
	return err == nil, nil
}

func (r *fakeCourseRepo) ListWithRemainingSeats(ctx context.Context, p shared.Pagination) ([]*course.CourseWithSeats, error) {
	start := p.Offset()
	if start >= len(r.seats) {
		return []*course.CourseWithSeats{}, nil
	}
	end := start + p.Limit()
	if end > len(r.seats) {
		end = len(r.seats)
	}
	return r.seats[start:end], nil
}

type fakeLessonRepo struct {
	lessons []*course.Lesson
}

func (r *fakeLessonRepo) Create(ctx context.Context, l *course.Lesson) error {
	r.lessons = append(r.lessons, l)
	return nil
}

func (r *fakeLessonRepo) GetByID(ctx context.Context, id string) (*course.Lesson, error) {
	for _, l := range r.lessons {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, shared.ErrLessonNotFound
}

func (r *fakeLessonRepo) ListByCourse(ctx context.Context, courseID string) ([]*course.Lesson, error) {
	var out []*course.Lesson
	for _, l := range r.lessons {
		if l.CourseID == courseID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakeLessonRepo) ListBefore(ctx context.Context, courseID string, orderIndex int) ([]*course.Lesson, error) {
	var out []*course.Lesson
	for _, l := range r.lessons {
		if l.CourseID == courseID && l.OrderIndex < orderIndex {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakeLessonRepo) CountByCourse(ctx context.Context, courseID string) (int, error) {
	list, _ := r.ListByCourse(ctx, courseID)
	return len(list), nil
}

type fakeEnrollmentRepo struct {
	rows []*enrollment.Enrollment
}

func (r *fakeEnrollmentRepo) Exists(ctx context.Context, userID, courseID string) (bool, error) {
	for _, e := range r.rows {
		if e.UserID == userID && e.CourseID == courseID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeEnrollmentRepo) CountByCourse(ctx context.Context, courseID string) (int, error) {
	count := 0
	for _, e := range r.rows {
		if e.CourseID == courseID {
			count++
		}
	}
	return count, nil
}

func (r *fakeEnrollmentRepo) ListByUser(ctx context.Context, userID string) ([]*enrollment.Enrollment, error) {
	var out []*enrollment.Enrollment
	for _, e := range r.rows {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeProgressRepo struct {
	rows []*progress.Progress
}

func (r *fakeProgressRepo) GetByID(ctx context.Context, id string) (*progress.Progress, error) {
	for _, p := range r.rows {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, shared.ErrProgressNotFound
}

func (r *fakeProgressRepo) GetByRequestID(ctx context.Context, requestID string) (*progress.Progress, error) {
	for _, p := range r.rows {
		if p.RequestID == requestID {
			return p, nil
		}
	}
	return nil, shared.ErrProgressNotFound
}

func (r *fakeProgressRepo) GetByUserAndLesson(ctx context.Context, userID, lessonID string) (*progress.Progress, error) {
	for _, p := range r.rows {
		if p.UserID == userID && p.LessonID == lessonID {
			return p, nil
		}
	}
	return nil, shared.ErrProgressNotFound
}

func (r *fakeProgressRepo) ListByUserAndCourse(ctx context.Context, userID, courseID string) ([]*progress.Progress, error) {
	var out []*progress.Progress
	for _, p := range r.rows {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProgressRepo) ExistsByRequestID(ctx context.Context, requestID string) (bool, error) {
	_, err := r.GetByRequestID(ctx, requestID)
	return err == nil, nil
}

type fakeHistoryRepo struct {
	history []progress.HistoryEntry
}

func (r *fakeHistoryRepo) ListByUserAndLesson(ctx context.Context, userID, lessonID string) ([]progress.HistoryEntry, error) {
	var out []progress.HistoryEntry
	for _, h := range r.history {
		if h.UserID == userID && h.LessonID == lessonID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (r *fakeHistoryRepo) ListByProgress(ctx context.Context, progressID string) ([]progress.HistoryEntry, error) {
	var out []progress.HistoryEntry
	for _, h := range r.history {
		if h.ProgressID == progressID {
			out = append(out, h)
		}
	}
	return out, nil
}

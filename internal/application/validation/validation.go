// Package validation consolidates the entity lookups and business checks that
// commands share: user/course/lesson existence, enrollment membership, and
// prerequisite gating.
package validation

import (
	"context"
	"fmt"

	"github.com/learnhub/progress-hub/internal/domain/course"
	"github.com/learnhub/progress-hub/internal/domain/enrollment"
	"github.com/learnhub/progress-hub/internal/domain/shared"
	"github.com/learnhub/progress-hub/internal/domain/user"
)

// Service performs validate-and-get lookups. Every method either returns the
// entity or the domain's not-found error, so command handlers never branch on
// nil entities.
type Service struct {
	users       user.Repository
	courses     course.Repository
	lessons     course.LessonRepository
	enrollments enrollment.Repository
}

// NewService creates a new validation Service.
func NewService(
	users user.Repository,
	courses course.Repository,
	lessons course.LessonRepository,
	enrollments enrollment.Repository,
) *Service {
	return &Service{
		users:       users,
		courses:     courses,
		lessons:     lessons,
		enrollments: enrollments,
	}
}

// User returns the user or shared.ErrUserNotFound.
func (s *Service) User(ctx context.Context, userID string) (*user.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.ErrUserNotFound
		}
		return nil, fmt.Errorf("validation: get user: %w", err)
	}
	return u, nil
}

// Course returns the course or shared.ErrCourseNotFound.
func (s *Service) Course(ctx context.Context, courseID string) (*course.Course, error) {
	c, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.ErrCourseNotFound
		}
		return nil, fmt.Errorf("validation: get course: %w", err)
	}
	return c, nil
}

// Lesson returns the lesson or shared.ErrLessonNotFound.
func (s *Service) Lesson(ctx context.Context, lessonID string) (*course.Lesson, error) {
	l, err := s.lessons.GetByID(ctx, lessonID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.ErrLessonNotFound
		}
		return nil, fmt.Errorf("validation: get lesson: %w", err)
	}
	return l, nil
}

// CourseLessons returns the course's lessons ordered by order index.
func (s *Service) CourseLessons(ctx context.Context, courseID string) ([]*course.Lesson, error) {
	lessons, err := s.lessons.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("validation: list lessons: %w", err)
	}
	return lessons, nil
}

// Enrollment verifies that the user is enrolled in the course.
// Returns shared.ErrNotEnrolled otherwise.
func (s *Service) Enrollment(ctx context.Context, userID, courseID string) error {
	enrolled, err := s.enrollments.Exists(ctx, userID, courseID)
	if err != nil {
		return fmt.Errorf("validation: check enrollment: %w", err)
	}
	if !enrolled {
		return shared.ErrNotEnrolled
	}
	return nil
}

package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/learnhub/progress-hub/internal/application/validation"
	"github.com/learnhub/progress-hub/internal/domain/enrollment"
	"github.com/learnhub/progress-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET USER COURSES QUERY
// Returns the courses a user is enrolled in, oldest enrollment first.
// ══════════════════════════════════════════════════════════════════════════════

// UserCourse is one enrollment joined with its course details.
type UserCourse struct {
	CourseID    string    `json:"course_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	EnrolledAt  time.Time `json:"enrolled_at"`
}

// GetUserCoursesQuery contains the query parameters.
type GetUserCoursesQuery struct {
	UserID string
}

// Validate validates the query.
func (q GetUserCoursesQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("get_user_courses: user_id is required")
	}
	return nil
}

// GetUserCoursesHandler handles the GetUserCoursesQuery.
type GetUserCoursesHandler struct {
	validator   *validation.Service
	enrollments enrollment.Repository
}

// NewGetUserCoursesHandler creates a new GetUserCoursesHandler.
func NewGetUserCoursesHandler(validator *validation.Service, enrollments enrollment.Repository) *GetUserCoursesHandler {
	return &GetUserCoursesHandler{
		validator:   validator,
		enrollments: enrollments,
	}
}

// Handle executes the query.
func (h *GetUserCoursesHandler) Handle(ctx context.Context, q GetUserCoursesQuery) ([]UserCourse, error) {
	if err := q.Validate(); err != nil {
		return nil, shared.WrapError("enrollment", "UserCourses", shared.ErrInvalidInput, "validation failed", err)
	}

	if _, err := h.validator.User(ctx, q.UserID); err != nil {
		return nil, err
	}

	rows, err := h.enrollments.ListByUser(ctx, q.UserID)
	if err != nil {
		return nil, fmt.Errorf("get_user_courses: list enrollments: %w", err)
	}

	result := make([]UserCourse, 0, len(rows))
	for _, e := range rows {
		c, err := h.validator.Course(ctx, e.CourseID)
		if err != nil {
			return nil, err
		}
		result = append(result, UserCourse{
			CourseID:    c.ID,
			Title:       string(c.Title),
			Description: c.Description,
			EnrolledAt:  e.EnrolledAt,
		})
	}
	return result, nil
}

package query

import (
	"context"
	"fmt"

	"github.com/learnhub/progress-hub/internal/domain/course"
	"github.com/learnhub/progress-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST COURSES QUERY
// Returns the course catalog with live seat availability.
// ══════════════════════════════════════════════════════════════════════════════

// ListCoursesQuery contains the query parameters.
type ListCoursesQuery struct {
	Pagination shared.Pagination
}

// ListCoursesHandler handles the ListCoursesQuery.
type ListCoursesHandler struct {
	courses course.Repository
}

// NewListCoursesHandler creates a new ListCoursesHandler.
func NewListCoursesHandler(courses course.Repository) *ListCoursesHandler {
	return &ListCoursesHandler{courses: courses}
}

// Handle executes the query.
func (h *ListCoursesHandler) Handle(ctx context.Context, q ListCoursesQuery) ([]*course.CourseWithSeats, error) {
	p := shared.NewPagination(q.Pagination.Page, q.Pagination.PageSize)

	courses, err := h.courses.ListWithRemainingSeats(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("list_courses: list: %w", err)
	}
	return courses, nil
}

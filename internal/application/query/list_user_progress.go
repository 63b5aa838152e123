package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/learnhub/progress-hub/internal/application/validation"
	"github.com/learnhub/progress-hub/internal/domain/progress"
	"github.com/learnhub/progress-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST USER PROGRESS QUERY
// Returns the raw progress rows a user has in one course, in lesson order.
// Unlike the summary this reports only lessons with a row; untouched lessons
// are absent.
// ══════════════════════════════════════════════════════════════════════════════

// ListUserProgressQuery contains the query parameters.
type ListUserProgressQuery struct {
	UserID   string
	CourseID string
}

// Validate validates the query.
func (q ListUserProgressQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("list_user_progress: user_id is required")
	}
	if q.CourseID == "" {
		return errors.New("list_user_progress: course_id is required")
	}
	return nil
}

// ListUserProgressHandler handles the ListUserProgressQuery.
type ListUserProgressHandler struct {
	validator    *validation.Service
	progressRepo progress.Repository
}

// NewListUserProgressHandler creates a new ListUserProgressHandler.
func NewListUserProgressHandler(validator *validation.Service, progressRepo progress.Repository) *ListUserProgressHandler {
	return &ListUserProgressHandler{
		validator:    validator,
		progressRepo: progressRepo,
	}
}

// Handle executes the query. An enrolled user with no rows yet gets an empty
// list, not an error.
func (h *ListUserProgressHandler) Handle(ctx context.Context, q ListUserProgressQuery) ([]*progress.Progress, error) {
	if err := q.Validate(); err != nil {
		return nil, shared.WrapError("progress", "List", shared.ErrInvalidInput, "validation failed", err)
	}

	if _, err := h.validator.User(ctx, q.UserID); err != nil {
		return nil, err
	}
	if _, err := h.validator.Course(ctx, q.CourseID); err != nil {
		return nil, err
	}

	rows, err := h.progressRepo.ListByUserAndCourse(ctx, q.UserID, q.CourseID)
	if err != nil {
		return nil, fmt.Errorf("list_user_progress: list: %w", err)
	}
	return rows, nil
}

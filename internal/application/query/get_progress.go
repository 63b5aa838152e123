package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/learnhub/progress-hub/internal/domain/progress"
	"github.com/learnhub/progress-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET PROGRESS QUERY
// Returns a single progress row for a user and lesson.
// ══════════════════════════════════════════════════════════════════════════════

// GetProgressQuery contains the query parameters.
type GetProgressQuery struct {
	UserID   string
	LessonID string
}

// Validate validates the query.
func (q GetProgressQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("get_progress: user_id is required")
	}
	if q.LessonID == "" {
		return errors.New("get_progress: lesson_id is required")
	}
	return nil
}

// GetProgressHandler handles the GetProgressQuery.
type GetProgressHandler struct {
	progressRepo progress.Repository
}

// NewGetProgressHandler creates a new GetProgressHandler.
func NewGetProgressHandler(progressRepo progress.Repository) *GetProgressHandler {
	return &GetProgressHandler{progressRepo: progressRepo}
}

// Handle executes the query. Returns shared.ErrProgressNotFound when the user
// has no row for the lesson.
func (h *GetProgressHandler) Handle(ctx context.Context, q GetProgressQuery) (*progress.Progress, error) {
	if err := q.Validate(); err != nil {
		return nil, shared.WrapError("progress", "Get", shared.ErrInvalidInput, "validation failed", err)
	}

	p, err := h.progressRepo.GetByUserAndLesson(ctx, q.UserID, q.LessonID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.ErrProgressNotFound
		}
		return nil, fmt.Errorf("get_progress: lookup: %w", err)
	}
	return p, nil
}

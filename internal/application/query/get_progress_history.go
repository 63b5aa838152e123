package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/learnhub/progress-hub/internal/domain/progress"
	"github.com/learnhub/progress-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET PROGRESS HISTORY QUERY
// Returns the append-only status trail for a user and lesson, oldest first.
// ══════════════════════════════════════════════════════════════════════════════

// GetProgressHistoryQuery contains the query parameters.
type GetProgressHistoryQuery struct {
	UserID   string
	LessonID string
}

// Validate validates the query.
func (q GetProgressHistoryQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("get_progress_history: user_id is required")
	}
	if q.LessonID == "" {
		return errors.New("get_progress_history: lesson_id is required")
	}
	return nil
}

// GetProgressHistoryHandler handles the GetProgressHistoryQuery.
type GetProgressHistoryHandler struct {
	historyRepo progress.HistoryRepository
}

// NewGetProgressHistoryHandler creates a new GetProgressHistoryHandler.
func NewGetProgressHistoryHandler(historyRepo progress.HistoryRepository) *GetProgressHistoryHandler {
	return &GetProgressHistoryHandler{historyRepo: historyRepo}
}

// Handle executes the query. An empty slice means no progress was ever
// recorded for the pair, which is not an error.
func (h *GetProgressHistoryHandler) Handle(ctx context.Context, q GetProgressHistoryQuery) ([]progress.HistoryEntry, error) {
	if err := q.Validate(); err != nil {
		return nil, shared.WrapError("progress", "History", shared.ErrInvalidInput, "validation failed", err)
	}

	entries, err := h.historyRepo.ListByUserAndLesson(ctx, q.UserID, q.LessonID)
	if err != nil {
		return nil, fmt.Errorf("get_progress_history: list: %w", err)
	}
	return entries, nil
}

package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/learnhub/progress-hub/internal/application/validation"
	"github.com/learnhub/progress-hub/internal/domain/progress"
	"github.com/learnhub/progress-hub/internal/domain/shared"
	"github.com/learnhub/progress-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// RESET PROGRESS COMMAND
// Moves a finished lesson (complete or failed) back to pending so it can be
// retaken. A row already in pending is a no-op, and so is a missing row:
// there is nothing to reset either way.
// ══════════════════════════════════════════════════════════════════════════════

// ResetProgressCommand contains the data to reset progress.
type ResetProgressCommand struct {
	UserID   string
	LessonID string
}

// Validate validates the command.
func (c ResetProgressCommand) Validate() error {
	if c.UserID == "" {
		return errors.New("reset_progress: user_id is required")
	}
	if c.LessonID == "" {
		return errors.New("reset_progress: lesson_id is required")
	}
	return nil
}

// ResetProgressResult contains the result of the reset.
type ResetProgressResult struct {
	// Progress is the row after the operation, nil when no row exists.
	Progress *progress.Progress

	// Reset is false when nothing changed (row missing or already pending).
	Reset bool
}

// ResetProgressHandler handles the ResetProgressCommand.
type ResetProgressHandler struct {
	validator    *validation.Service
	progressRepo progress.Repository
	atomic       progress.Atomic
	publisher    shared.EventPublisher
	logger       *logger.Logger
}

// NewResetProgressHandler creates a new ResetProgressHandler.
func NewResetProgressHandler(
	validator *validation.Service,
	progressRepo progress.Repository,
	atomic progress.Atomic,
	publisher shared.EventPublisher,
	log *logger.Logger,
) *ResetProgressHandler {
	if log == nil {
		log = logger.Default()
	}
	return &ResetProgressHandler{
		validator:    validator,
		progressRepo: progressRepo,
		atomic:       atomic,
		publisher:    publisher,
		logger:       log,
	}
}

// Handle executes the reset progress command.
func (h *ResetProgressHandler) Handle(ctx context.Context, cmd ResetProgressCommand) (*ResetProgressResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, shared.WrapError("progress", "Reset", shared.ErrInvalidInput, "validation failed", err)
	}

	current, err := h.progressRepo.GetByUserAndLesson(ctx, cmd.UserID, cmd.LessonID)
	if err != nil {
		if shared.IsNotFound(err) {
			// No row means nothing to reset. Deliberately not an error: the
			// lesson is already in its untouched state.
			return &ResetProgressResult{Reset: false}, nil
		}
		return nil, fmt.Errorf("reset_progress: lookup: %w", err)
	}

	if current.Status == progress.StatusPending {
		return &ResetProgressResult{Progress: current, Reset: false}, nil
	}

	oldStatus := current.Status
	if err := current.TransitionTo(progress.StatusPending); err != nil {
		return nil, err
	}

	err = h.atomic.WithinTx(ctx, func(tx progress.TxStore) error {
		if err := tx.Update(ctx, current); err != nil {
			return err
		}
		old := oldStatus
		return tx.AppendHistory(ctx, progress.NewHistoryEntry(current, &old, ""))
	})
	if err != nil {
		return nil, fmt.Errorf("reset_progress: reset: %w", err)
	}

	courseID := ""
	if lesson, err := h.validator.Lesson(ctx, current.LessonID); err == nil {
		courseID = lesson.CourseID
	}

	event := shared.NewProgressChangedEvent(current.ID, current.UserID, current.LessonID, courseID, string(oldStatus), string(current.Status), "")
	if err := h.publisher.Publish(event); err != nil {
		h.logger.Warn("failed to publish progress event",
			logger.Err(err),
			logger.String("progress_id", current.ID),
		)
	}

	return &ResetProgressResult{Progress: current, Reset: true}, nil
}

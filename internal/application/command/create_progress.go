// Package command contains write operations (CQRS - Commands).
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
// CREATE PROGRESS COMMAND
// Records a user's progress on a lesson. The client request ID makes the
// operation idempotent: replays return the stored row, reuse against a
// different target is rejected. The progress write and its history entry
// commit in one transaction.
// ══════════════════════════════════════════════════════════════════════════════

// CreateProgressCommand contains the data to record progress.
type CreateProgressCommand struct {
	// UserID is the learner's ID.
	UserID string

	// LessonID is the target lesson's ID.
	LessonID string

	// RequestID is the client-generated idempotency token.
	RequestID string

	// Status is the requested status as raw input ("pending", "complete", "failed").
	Status string
}

// Validate validates the command.
func (c CreateProgressCommand) Validate() error {
	if c.UserID == "" {
		return errors.New("create_progress: user_id is required")
	}
	if c.LessonID == "" {
		return errors.New("create_progress: lesson_id is required")
	}
	if c.RequestID == "" {
		return errors.New("create_progress: request_id is required")
	}
	if c.Status == "" {
		return errors.New("create_progress: status is required")
	}
	return nil
}

// CreateProgressResult contains the result of recording progress.
type CreateProgressResult struct {
	// Progress is the row after the operation.
	Progress *progress.Progress

	// Created is true when a new row was inserted.
	Created bool

	// Replayed is true when the request ID was seen before and the stored
	// row was returned without any write.
	Replayed bool

	// NoOp is true when the requested status equals the current one.
	NoOp bool
}

// CreateProgressHandler handles the CreateProgressCommand.
type CreateProgressHandler struct {
	validator    *validation.Service
	prereqs      *validation.PrerequisiteChecker
	progressRepo progress.Repository
	atomic       progress.Atomic
	publisher    shared.EventPublisher
	logger       *logger.Logger
}

// NewCreateProgressHandler creates a new CreateProgressHandler.
func NewCreateProgressHandler(
	validator *validation.Service,
	prereqs *validation.PrerequisiteChecker,
	progressRepo progress.Repository,
	atomic progress.Atomic,
	publisher shared.EventPublisher,
	log *logger.Logger,
) *CreateProgressHandler {
	if log == nil {
		log = logger.Default()
	}
	return &CreateProgressHandler{
		validator:    validator,
		prereqs:      prereqs,
		progressRepo: progressRepo,
		atomic:       atomic,
		publisher:    publisher,
		logger:       log,
	}
}

// Handle executes the create progress command.
func (h *CreateProgressHandler) Handle(ctx context.Context, cmd CreateProgressCommand) (*CreateProgressResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, shared.WrapError("progress", "Create", shared.ErrInvalidInput, "validation failed", err)
	}

	target, err := progress.ParseStatus(cmd.Status)
	if err != nil {
		return nil, err
	}

	// Request ID replay / conflict check comes first: a replayed request must
	// short-circuit before any business validation re-runs.
	stored, err := h.progressRepo.GetByRequestID(ctx, cmd.RequestID)
	switch {
	case err == nil:
		if stored.BelongsTo(cmd.UserID, cmd.LessonID) {
			return &CreateProgressResult{Progress: stored, Replayed: true}, nil
		}
		return nil, &shared.RequestIDConflictError{
			RequestID: cmd.RequestID,
			UserID:    stored.UserID,
			LessonID:  stored.LessonID,
		}
	case !shared.IsNotFound(err):
		return nil, fmt.Errorf("create_progress: lookup by request id: %w", err)
	}

	// Existing (user, lesson) row: same status is a business no-op, anything
	// else goes through the status machine.
	current, err := h.progressRepo.GetByUserAndLesson(ctx, cmd.UserID, cmd.LessonID)
	if err == nil {
		return h.applyTransition(ctx, current, target, cmd.RequestID)
	}
	if !shared.IsNotFound(err) {
		return nil, fmt.Errorf("create_progress: lookup by user and lesson: %w", err)
	}

	result, err := h.createNew(ctx, cmd, target)
	if err != nil && shared.IsAlreadyExists(err) {
		// Lost the insert race to a concurrent request. The unique violation
		// may be on either key, so check the request ID first: a concurrent
		// reuse of this ID against another lesson is a conflict, not a retry.
		stored, rerr := h.progressRepo.GetByRequestID(ctx, cmd.RequestID)
		switch {
		case rerr == nil:
			if stored.BelongsTo(cmd.UserID, cmd.LessonID) {
				return &CreateProgressResult{Progress: stored, Replayed: true}, nil
			}
			return nil, &shared.RequestIDConflictError{
				RequestID: cmd.RequestID,
				UserID:    stored.UserID,
				LessonID:  stored.LessonID,
			}
		case !shared.IsNotFound(rerr):
			return nil, fmt.Errorf("create_progress: re-read after insert race: %w", rerr)
		}

		// The race was on (user, lesson); retry once as a transition.
		// Never surfaced to the caller.
		current, rerr := h.progressRepo.GetByUserAndLesson(ctx, cmd.UserID, cmd.LessonID)
		if rerr != nil {
			return nil, fmt.Errorf("create_progress: re-read after insert race: %w", rerr)
		}
		return h.applyTransition(ctx, current, target, cmd.RequestID)
	}
	return result, err
}

// IsIdempotentRequest reports whether a progress row created by this request
// ID already exists. Read-only probe, no side effects.
func (h *CreateProgressHandler) IsIdempotentRequest(ctx context.Context, requestID string) (bool, error) {
	if requestID == "" {
		return false, errors.New("create_progress: request_id is required")
	}
	exists, err := h.progressRepo.ExistsByRequestID(ctx, requestID)
	if err != nil {
		return false, fmt.Errorf("create_progress: probe request id: %w", err)
	}
	return exists, nil
}

// createNew validates the business preconditions and inserts a fresh row
// together with its creation history entry.
func (h *CreateProgressHandler) createNew(ctx context.Context, cmd CreateProgressCommand, target progress.Status) (*CreateProgressResult, error) {
	if _, err := h.validator.User(ctx, cmd.UserID); err != nil {
		return nil, err
	}

	lesson, err := h.validator.Lesson(ctx, cmd.LessonID)
	if err != nil {
		return nil, err
	}

	if err := h.validator.Enrollment(ctx, cmd.UserID, lesson.CourseID); err != nil {
		return nil, err
	}

	if err := h.prereqs.Check(ctx, cmd.UserID, lesson); err != nil {
		return nil, err
	}

	p, err := progress.NewProgress(cmd.UserID, cmd.LessonID, cmd.RequestID, target)
	if err != nil {
		return nil, err
	}

	err = h.atomic.WithinTx(ctx, func(tx progress.TxStore) error {
		if err := tx.Insert(ctx, p); err != nil {
			return err
		}
		return tx.AppendHistory(ctx, progress.NewHistoryEntry(p, nil, cmd.RequestID))
	})
	if err != nil {
		if shared.IsAlreadyExists(err) {
			return nil, err
		}
		return nil, fmt.Errorf("create_progress: insert: %w", err)
	}

	h.publishChange(ctx, p, "", cmd.RequestID)

	return &CreateProgressResult{Progress: p, Created: true}, nil
}

// applyTransition moves an existing row through the status machine and appends
// the history entry in the same transaction.
func (h *CreateProgressHandler) applyTransition(ctx context.Context, current *progress.Progress, target progress.Status, requestID string) (*CreateProgressResult, error) {
	if current.Status == target {
		return &CreateProgressResult{Progress: current, NoOp: true}, nil
	}

	oldStatus := current.Status
	if err := current.TransitionTo(target); err != nil {
		return nil, err
	}

	err := h.atomic.WithinTx(ctx, func(tx progress.TxStore) error {
		if err := tx.Update(ctx, current); err != nil {
			return err
		}
		old := oldStatus
		return tx.AppendHistory(ctx, progress.NewHistoryEntry(current, &old, requestID))
	})
	if err != nil {
		return nil, fmt.Errorf("create_progress: apply transition: %w", err)
	}

	h.publishChange(ctx, current, string(oldStatus), requestID)

	return &CreateProgressResult{Progress: current}, nil
}

// publishChange emits the post-commit event. Publish failures are logged and
// swallowed: observers must never fail a committed write.
func (h *CreateProgressHandler) publishChange(ctx context.Context, p *progress.Progress, oldStatus, requestID string) {
	courseID := ""
	if lesson, err := h.validator.Lesson(ctx, p.LessonID); err == nil {
		courseID = lesson.CourseID
	}

	event := shared.NewProgressChangedEvent(p.ID, p.UserID, p.LessonID, courseID, oldStatus, string(p.Status), requestID)
	if err := h.publisher.Publish(event); err != nil {
		h.logger.Warn("failed to publish progress event",
			logger.Err(err),
			logger.String("progress_id", p.ID),
		)
	}
}

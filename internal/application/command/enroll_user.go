package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/learnhub/progress-hub/internal/application/validation"
	"github.com/learnhub/progress-hub/internal/domain/enrollment"
	"github.com/learnhub/progress-hub/internal/domain/shared"
	"github.com/learnhub/progress-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENROLL USER COMMAND
// Enrolls a user into a course while enforcing the seat limit. The course row
// is locked FOR UPDATE and the seat count is re-checked inside the same
// transaction, so two concurrent enrollments into the last seat cannot both
// succeed.
// ══════════════════════════════════════════════════════════════════════════════

// EnrollUserCommand contains the data to enroll a user.
type EnrollUserCommand struct {
	UserID   string
	CourseID string
}

// Validate validates the command.
func (c EnrollUserCommand) Validate() error {
	if c.UserID == "" {
		return errors.New("enroll_user: user_id is required")
	}
	if c.CourseID == "" {
		return errors.New("enroll_user: course_id is required")
	}
	return nil
}

// EnrollUserResult contains the result of the enrollment.
type EnrollUserResult struct {
	Enrollment *enrollment.Enrollment

	// SeatsRemaining is the number of free seats after this enrollment.
	SeatsRemaining int
}

// EnrollUserHandler handles the EnrollUserCommand.
type EnrollUserHandler struct {
	validator   *validation.Service
	enrollments enrollment.Repository
	atomic      enrollment.Atomic
	publisher   shared.EventPublisher
	logger      *logger.Logger
}

// NewEnrollUserHandler creates a new EnrollUserHandler.
func NewEnrollUserHandler(
	validator *validation.Service,
	enrollments enrollment.Repository,
	atomic enrollment.Atomic,
	publisher shared.EventPublisher,
	log *logger.Logger,
) *EnrollUserHandler {
	if log == nil {
		log = logger.Default()
	}
	return &EnrollUserHandler{
		validator:   validator,
		enrollments: enrollments,
		atomic:      atomic,
		publisher:   publisher,
		logger:      log,
	}
}

// Handle executes the enroll user command.
func (h *EnrollUserHandler) Handle(ctx context.Context, cmd EnrollUserCommand) (*EnrollUserResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, shared.WrapError("enrollment", "Enroll", shared.ErrInvalidInput, "validation failed", err)
	}

	if _, err := h.validator.User(ctx, cmd.UserID); err != nil {
		return nil, err
	}

	// Cheap pre-checks outside the lock. Both are re-verified inside the
	// transaction; these only short-circuit the obvious failures.
	enrolled, err := h.enrollments.Exists(ctx, cmd.UserID, cmd.CourseID)
	if err != nil {
		return nil, fmt.Errorf("enroll_user: check enrollment: %w", err)
	}
	if enrolled {
		return nil, shared.ErrAlreadyEnrolled
	}

	e, err := enrollment.New(cmd.UserID, cmd.CourseID)
	if err != nil {
		return nil, err
	}

	seatsRemaining := 0
	err = h.atomic.WithinTx(ctx, func(tx enrollment.TxStore) error {
		c, err := tx.LockCourse(ctx, cmd.CourseID)
		if err != nil {
			return err
		}

		count, err := tx.CountByCourse(ctx, cmd.CourseID)
		if err != nil {
			return err
		}
		if c.IsFull(count) {
			return shared.ErrCourseFull
		}

		if err := tx.Insert(ctx, e); err != nil {
			return err
		}

		seatsRemaining = c.RemainingSeats(count + 1)
		return nil
	})
	if err != nil {
		if shared.IsConflict(err) || shared.IsNotFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("enroll_user: enroll: %w", err)
	}

	event := shared.NewUserEnrolledEvent(e.ID, e.UserID, e.CourseID, seatsRemaining)
	if err := h.publisher.Publish(event); err != nil {
		h.logger.Warn("failed to publish enrollment event",
			logger.Err(err),
			logger.String("enrollment_id", e.ID),
		)
	}

	return &EnrollUserResult{Enrollment: e, SeatsRemaining: seatsRemaining}, nil
}

// Package enrollment contains the enrollment entity and the transactional
// contracts used to enforce course capacity under concurrency.
package enrollment

import (
	"time"

	"github.com/google/uuid"

	"github.com/learnhub/progress-hub/internal/domain/shared"
)

// Enrollment links a user to a course. The (UserID, CourseID) pair is unique.
type Enrollment struct {
	ID         string
	UserID     string
	CourseID   string
	EnrolledAt time.Time
}

// New creates a new Enrollment.
func New(userID, courseID string) (*Enrollment, error) {
	if userID == "" {
		return nil, shared.NewDomainError("enrollment", "New", shared.ErrEmptyValue, "user ID is required")
	}
	if courseID == "" {
		return nil, shared.NewDomainError("enrollment", "New", shared.ErrEmptyValue, "course ID is required")
	}

	return &Enrollment{
		ID:         uuid.NewString(),
		UserID:     userID,
		CourseID:   courseID,
		EnrolledAt: time.Now().UTC(),
	}, nil
}

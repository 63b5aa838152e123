package progress

import (
	"time"

	"github.com/google/uuid"

	"github.com/learnhub/progress-hub/internal/domain/shared"
)

// Progress is one user's state on one lesson. The (UserID, LessonID) pair is
// unique; RequestID is the client token of the request that created the row.
type Progress struct {
	ID        string
	UserID    string
	LessonID  string
	Status    Status
	RequestID string

	// CompletedAt is set while Status is complete, nil otherwise.
	CompletedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewProgress creates a new Progress row in the given initial status.
func NewProgress(userID, lessonID, requestID string, status Status) (*Progress, error) {
	if userID == "" {
		return nil, shared.NewDomainError("progress", "New", shared.ErrEmptyValue, "user ID is required")
	}
	if lessonID == "" {
		return nil, shared.NewDomainError("progress", "New", shared.ErrEmptyValue, "lesson ID is required")
	}
	if requestID == "" {
		return nil, shared.NewDomainError("progress", "New", shared.ErrEmptyValue, "request ID is required")
	}
	if !status.IsValid() {
		return nil, shared.NewDomainError("progress", "New", shared.ErrInvalidInput, "invalid initial status")
	}

	now := time.Now().UTC()
	p := &Progress{
		ID:        uuid.NewString(),
		UserID:    userID,
		LessonID:  lessonID,
		Status:    status,
		RequestID: requestID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if status == StatusComplete {
		p.CompletedAt = &now
	}
	return p, nil
}

// TransitionTo moves the progress to a new status, enforcing the status
// machine. Same-status writes are rejected here; the caller decides whether
// they are a business no-op.
func (p *Progress) TransitionTo(to Status) error {
	if !to.IsValid() {
		return shared.NewDomainError("progress", "Transition", shared.ErrInvalidInput, "invalid target status")
	}
	if !p.Status.CanTransitionTo(to) {
		return &shared.StatusTransitionError{From: string(p.Status), To: string(to)}
	}

	now := time.Now().UTC()
	p.Status = to
	p.UpdatedAt = now

	if to == StatusComplete {
		p.CompletedAt = &now
	} else {
		p.CompletedAt = nil
	}

	return nil
}

// BelongsTo reports whether the row targets the given user/lesson pair.
// Used for request ID replay detection.
func (p *Progress) BelongsTo(userID, lessonID string) bool {
	return p.UserID == userID && p.LessonID == lessonID
}

// HistoryEntry is one append-only record of an accepted progress change.
// OldStatus is nil for the creating write. User and lesson IDs are denormalized
// so history stays queryable without joining the progress table.
type HistoryEntry struct {
	ID         string
	ProgressID string
	UserID     string
	LessonID   string
	OldStatus  *Status
	NewStatus  Status
	RequestID  string
	ChangedAt  time.Time
}

// NewHistoryEntry builds the history record for a change that is about to be
// written in the same transaction as the progress row itself.
func NewHistoryEntry(p *Progress, oldStatus *Status, requestID string) HistoryEntry {
	return HistoryEntry{
		ID:         uuid.NewString(),
		ProgressID: p.ID,
		UserID:     p.UserID,
		LessonID:   p.LessonID,
		OldStatus:  oldStatus,
		NewStatus:  p.Status,
		RequestID:  requestID,
		ChangedAt:  time.Now().UTC(),
	}
}

// Package course contains the course and lesson entities and their
// repository contracts. A course owns an ordered list of lessons; the order
// index drives prerequisite gating.
package course

import (
	"time"

	"github.com/google/uuid"

	"github.com/learnhub/progress-hub/internal/domain/shared"
)

// Course is a unit of study with a bounded number of seats.
type Course struct {
	ID          string
	Title       shared.CourseTitle
	Description string
	MaxSeats    int
	CreatedAt   time.Time
}

// New creates a new Course with a validated title and positive capacity.
func New(title, description string, maxSeats int) (*Course, error) {
	t, err := shared.NewCourseTitle(title)
	if err != nil {
		return nil, err
	}
	if maxSeats <= 0 {
		return nil, shared.ErrInvalidMaxSeats
	}

	return &Course{
		ID:          uuid.NewString(),
		Title:       t,
		Description: description,
		MaxSeats:    maxSeats,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// RemainingSeats returns how many seats are left given the current enrollment
// count. Never negative.
func (c *Course) RemainingSeats(enrolled int) int {
	remaining := c.MaxSeats - enrolled
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IsFull reports whether the course has no seats left.
func (c *Course) IsFull(enrolled int) bool {
	return enrolled >= c.MaxSeats
}

// Lesson is one step of a course. OrderIndex is 1-based and unique within
// the course.
type Lesson struct {
	ID         string
	CourseID   string
	Title      string
	Content    string
	OrderIndex int
	CreatedAt  time.Time
}

// NewLesson creates a new Lesson attached to a course.
func NewLesson(courseID, title, content string, orderIndex int) (*Lesson, error) {
	if courseID == "" {
		return nil, shared.NewDomainError("course", "NewLesson", shared.ErrEmptyValue, "course ID is required")
	}
	if title == "" {
		return nil, shared.NewDomainError("course", "NewLesson", shared.ErrEmptyValue, "lesson title is required")
	}
	if orderIndex < 1 {
		return nil, shared.ErrInvalidOrderIndex
	}

	return &Lesson{
		ID:         uuid.NewString(),
		CourseID:   courseID,
		Title:      title,
		Content:    content,
		OrderIndex: orderIndex,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// IsFirst reports whether the lesson has no prerequisites.
func (l *Lesson) IsFirst() bool {
	return l.OrderIndex == 1
}

// CourseWithSeats is a catalog read model: a course plus its live seat count.
type CourseWithSeats struct {
	Course         Course
	EnrolledCount  int
	RemainingSeats int
}

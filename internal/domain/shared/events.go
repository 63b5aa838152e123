// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types. Events are published AFTER the owning transaction has
// committed and only drive side observers (logging, cache invalidation).
// They are never part of the write path itself.
const (
	// Progress events
	EventProgressCreated EventType = "progress.created"
	EventProgressChanged EventType = "progress.status_changed"

	// Enrollment events
	EventUserEnrolled EventType = "enrollment.created"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type        EventType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	AggregateId string    `json:"aggregate_id"`
	Version     int       `json:"version"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Progress Events
// ═══════════════════════════════════════════════════════════════════════════

// ProgressChangedEvent is emitted after a committed progress write, both for
// creations (OldStatus empty) and status transitions.
type ProgressChangedEvent struct {
	BaseEvent
	ProgressID string `json:"progress_id"`
	UserID     string `json:"user_id"`
	LessonID   string `json:"lesson_id"`
	CourseID   string `json:"course_id"`
	OldStatus  string `json:"old_status,omitempty"`
	NewStatus  string `json:"new_status"`
	RequestID  string `json:"request_id"`
}

// Payload implements Event interface.
func (e ProgressChangedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"progress_id": e.ProgressID,
		"user_id":     e.UserID,
		"lesson_id":   e.LessonID,
		"course_id":   e.CourseID,
		"old_status":  e.OldStatus,
		"new_status":  e.NewStatus,
		"request_id":  e.RequestID,
	}
}

// NewProgressChangedEvent creates an event for a progress creation or transition.
// oldStatus is empty for creations.
func NewProgressChangedEvent(progressID, userID, lessonID, courseID, oldStatus, newStatus, requestID string) ProgressChangedEvent {
	eventType := EventProgressChanged
	if oldStatus == "" {
		eventType = EventProgressCreated
	}
	return ProgressChangedEvent{
		BaseEvent:  NewBaseEvent(eventType, progressID),
		ProgressID: progressID,
		UserID:     userID,
		LessonID:   lessonID,
		CourseID:   courseID,
		OldStatus:  oldStatus,
		NewStatus:  newStatus,
		RequestID:  requestID,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Enrollment Events
// ═══════════════════════════════════════════════════════════════════════════

// UserEnrolledEvent is emitted after an enrollment transaction commits.
type UserEnrolledEvent struct {
	BaseEvent
	EnrollmentID   string `json:"enrollment_id"`
	UserID         string `json:"user_id"`
	CourseID       string `json:"course_id"`
	SeatsRemaining int    `json:"seats_remaining"`
}

// Payload implements Event interface.
func (e UserEnrolledEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"enrollment_id":   e.EnrollmentID,
		"user_id":         e.UserID,
		"course_id":       e.CourseID,
		"seats_remaining": e.SeatsRemaining,
	}
}

// NewUserEnrolledEvent creates a new UserEnrolledEvent.
func NewUserEnrolledEvent(enrollmentID, userID, courseID string, seatsRemaining int) UserEnrolledEvent {
	return UserEnrolledEvent{
		BaseEvent:      NewBaseEvent(EventUserEnrolled, enrollmentID),
		EnrollmentID:   enrollmentID,
		UserID:         userID,
		CourseID:       courseID,
		SeatsRemaining: seatsRemaining,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Event Bus Contracts
// ═══════════════════════════════════════════════════════════════════════════

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}

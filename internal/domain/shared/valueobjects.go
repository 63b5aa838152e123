// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"regexp"
	"strings"
)

// ═══════════════════════════════════════════════════════════════════════════
// ID Value Object
// ═══════════════════════════════════════════════════════════════════════════

// ID represents an entity identifier (UUID format).
type ID string

// UUID validation regex (simple version).
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// IsValid checks if the ID is a valid UUID.
func (id ID) IsValid() bool {
	return uuidRegex.MatchString(string(id))
}

// String returns the string representation.
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty.
func (id ID) IsEmpty() bool {
	return id == ""
}

// NewID creates a new ID with validation.
func NewID(raw string) (ID, error) {
	id := ID(strings.ToLower(strings.TrimSpace(raw)))
	if !id.IsValid() {
		return "", NewDomainError("shared", "NewID", ErrInvalidID, "invalid ID format")
	}
	return id, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Email Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Email represents a validated e-mail address.
type Email string

// Deliberately loose: full RFC 5322 validation belongs to the mail server.
var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// IsValid checks if the email format is valid.
func (e Email) IsValid() bool {
	s := string(e)
	return len(s) <= 254 && emailRegex.MatchString(s)
}

// String returns the string representation.
func (e Email) String() string {
	return string(e)
}

// NewEmail creates a new Email with validation. The address is normalized to
// lowercase so the unique index on users.email behaves case-insensitively.
func NewEmail(raw string) (Email, error) {
	e := Email(strings.ToLower(strings.TrimSpace(raw)))
	if !e.IsValid() {
		return "", ErrInvalidEmail
	}
	return e, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// CourseTitle Value Object
// ═══════════════════════════════════════════════════════════════════════════

// CourseTitle represents a course title.
type CourseTitle string

const (
	MinCourseTitleLen = 3
	MaxCourseTitleLen = 255
)

// IsValid checks if the title length is within bounds.
func (t CourseTitle) IsValid() bool {
	n := len(strings.TrimSpace(string(t)))
	return n >= MinCourseTitleLen && n <= MaxCourseTitleLen
}

// String returns the string representation.
func (t CourseTitle) String() string {
	return string(t)
}

// NewCourseTitle creates a new CourseTitle with validation.
func NewCourseTitle(raw string) (CourseTitle, error) {
	t := CourseTitle(strings.TrimSpace(raw))
	if !t.IsValid() {
		return "", ErrInvalidCourseTitle
	}
	return t, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Pagination Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Pagination represents pagination parameters.
type Pagination struct {
	Page     int
	PageSize int
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Offset returns the offset for database queries.
func (p Pagination) Offset() int {
	if p.Page <= 0 {
		return 0
	}
	return (p.Page - 1) * p.Limit()
}

// Limit returns the limit for database queries.
func (p Pagination) Limit() int {
	if p.PageSize <= 0 {
		return DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		return MaxPageSize
	}
	return p.PageSize
}

// NewPagination creates a new Pagination with defaults.
func NewPagination(page, pageSize int) Pagination {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return Pagination{Page: page, PageSize: pageSize}
}

// DefaultPagination returns default pagination.
func DefaultPagination() Pagination {
	return NewPagination(1, DefaultPageSize)
}

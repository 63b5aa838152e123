package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/learnhub/progress-hub/internal/domain/course"
	"github.com/learnhub/progress-hub/internal/domain/enrollment"
	"github.com/learnhub/progress-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENROLLMENT STORE IMPLEMENTATION
// Implements enrollment.Repository and enrollment.Atomic. Capacity enforcement
// lives in the TxStore: the course row is locked FOR UPDATE so that the seat
// recount and the insert are serialized per course.
// ══════════════════════════════════════════════════════════════════════════════

// EnrollmentStore implements enrollment reads and transactional writes
// for PostgreSQL.
type EnrollmentStore struct {
	conn *Connection
}

// NewEnrollmentStore creates a new EnrollmentStore.
func NewEnrollmentStore(conn *Connection) *EnrollmentStore {
	return &EnrollmentStore{conn: conn}
}

// Exists checks whether the user is enrolled in the course.
func (s *EnrollmentStore) Exists(ctx context.Context, userID, courseID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM enrollments WHERE user_id = $1 AND course_id = $2)`

	var exists bool
	if err := s.conn.QueryRow(ctx, query, userID, courseID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check enrollment: %w", err)
	}
	return exists, nil
}

// CountByCourse returns the current enrollment count for a course.
func (s *EnrollmentStore) CountByCourse(ctx context.Context, courseID string) (int, error) {
	query := `SELECT COUNT(*) FROM enrollments WHERE course_id = $1`

	var count int
	if err := s.conn.QueryRow(ctx, query, courseID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count enrollments: %w", err)
	}
	return count, nil
}

// ListByUser returns the user's enrollments, oldest first.
func (s *EnrollmentStore) ListByUser(ctx context.Context, userID string) ([]*enrollment.Enrollment, error) {
	query := `
		SELECT id, user_id, course_id, enrolled_at
		FROM enrollments
		WHERE user_id = $1
		ORDER BY enrolled_at
	`

	rows, err := s.conn.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	defer rows.Close()

	result := make([]*enrollment.Enrollment, 0)
	for rows.Next() {
		var e enrollment.Enrollment
		if err := rows.Scan(&e.ID, &e.UserID, &e.CourseID, &e.EnrolledAt); err != nil {
			return nil, fmt.Errorf("failed to scan enrollment row: %w", err)
		}
		result = append(result, &e)
	}
	return result, rows.Err()
}

// WithinTx implements enrollment.Atomic over a single database transaction.
func (s *EnrollmentStore) WithinTx(ctx context.Context, fn func(tx enrollment.TxStore) error) error {
	return s.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		return fn(&enrollmentTx{q: tx})
	})
}

// enrollmentTx is the write handle bound to one open transaction.
type enrollmentTx struct {
	q Querier
}

// LockCourse loads the course row under SELECT ... FOR UPDATE.
func (t *enrollmentTx) LockCourse(ctx context.Context, courseID string) (*course.Course, error) {
	query := `
		SELECT id, title, description, max_seats, created_at
		FROM courses
		WHERE id = $1
		FOR UPDATE
	`

	row := t.q.QueryRow(ctx, query, courseID)
	return scanCourse(row)
}

// CountByCourse recounts enrollments inside the transaction. The count runs
// after LockCourse, so it sees every committed enrollment for the course.
func (t *enrollmentTx) CountByCourse(ctx context.Context, courseID string) (int, error) {
	query := `SELECT COUNT(*) FROM enrollments WHERE course_id = $1`

	var count int
	if err := t.q.QueryRow(ctx, query, courseID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count enrollments in tx: %w", err)
	}
	return count, nil
}

// Insert creates the enrollment row.
func (t *enrollmentTx) Insert(ctx context.Context, e *enrollment.Enrollment) error {
	query := `
		INSERT INTO enrollments (id, user_id, course_id, enrolled_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := t.q.Exec(ctx, query, e.ID, e.UserID, e.CourseID, e.EnrolledAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrAlreadyEnrolled
		}
		return fmt.Errorf("failed to insert enrollment: %w", err)
	}
	return nil
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/learnhub/progress-hub/internal/domain/course"
	"github.com/learnhub/progress-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// COURSE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// CourseRepository implements course.Repository for PostgreSQL.
type CourseRepository struct {
	conn *Connection
}

// NewCourseRepository creates a new CourseRepository.
func NewCourseRepository(conn *Connection) *CourseRepository {
	return &CourseRepository{conn: conn}
}

// Create creates a new course.
func (r *CourseRepository) Create(ctx context.Context, c *course.Course) error {
	query := `
		INSERT INTO courses (id, title, description, max_seats, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.conn.Exec(ctx, query,
		c.ID,
		string(c.Title),
		c.Description,
		c.MaxSeats,
		c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}
	return nil
}

// GetByID returns a course by ID.
func (r *CourseRepository) GetByID(ctx context.Context, id string) (*course.Course, error) {
	query := `
		SELECT id, title, description, max_seats, created_at
		FROM courses
		WHERE id = $1
	`

	row := r.conn.QueryRow(ctx, query, id)
	return scanCourse(row)
}

// Exists checks whether a course exists.
func (r *CourseRepository) Exists(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM courses WHERE id = $1)`

	var exists bool
	if err := r.conn.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check course existence: %w", err)
	}
	return exists, nil
}

// ListWithRemainingSeats returns the course catalog with live enrollment counts.
func (r *CourseRepository) ListWithRemainingSeats(ctx context.Context, p shared.Pagination) ([]*course.CourseWithSeats, error) {
	query := `
		SELECT c.id, c.title, c.description, c.max_seats, c.created_at,
			   COUNT(e.id) AS enrolled_count
		FROM courses c
		LEFT JOIN enrollments e ON e.course_id = c.id
		GROUP BY c.id
		ORDER BY c.created_at
		LIMIT $1 OFFSET $2
	`

	rows, err := r.conn.Query(ctx, query, p.Limit(), p.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	defer rows.Close()

	result := make([]*course.CourseWithSeats, 0)
	for rows.Next() {
		var c course.Course
		var title string
		var enrolled int

		if err := rows.Scan(&c.ID, &title, &c.Description, &c.MaxSeats, &c.CreatedAt, &enrolled); err != nil {
			return nil, fmt.Errorf("failed to scan course row: %w", err)
		}
		c.Title = shared.CourseTitle(title)

		result = append(result, &course.CourseWithSeats{
			Course:         c,
			EnrolledCount:  enrolled,
			RemainingSeats: c.RemainingSeats(enrolled),
		})
	}
	return result, rows.Err()
}

func scanCourse(row pgx.Row) (*course.Course, error) {
	var c course.Course
	var title string

	err := row.Scan(&c.ID, &title, &c.Description, &c.MaxSeats, &c.CreatedAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to scan course: %w", err)
	}

	c.Title = shared.CourseTitle(title)
	return &c, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// LESSON REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// LessonRepository implements course.LessonRepository for PostgreSQL.
type LessonRepository struct {
	conn *Connection
}

// NewLessonRepository creates a new LessonRepository.
func NewLessonRepository(conn *Connection) *LessonRepository {
	return &LessonRepository{conn: conn}
}

// Create creates a new lesson.
func (r *LessonRepository) Create(ctx context.Context, l *course.Lesson) error {
	query := `
		INSERT INTO lessons (id, course_id, title, content, order_index, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.conn.Exec(ctx, query,
		l.ID,
		l.CourseID,
		l.Title,
		l.Content,
		l.OrderIndex,
		l.CreatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.NewDomainError("course", "CreateLesson", shared.ErrAlreadyExists,
				fmt.Sprintf("order index %d is taken in course %s", l.OrderIndex, l.CourseID))
		}
		return fmt.Errorf("failed to create lesson: %w", err)
	}
	return nil
}

// GetByID returns a lesson by ID.
func (r *LessonRepository) GetByID(ctx context.Context, id string) (*course.Lesson, error) {
	query := `
		SELECT id, course_id, title, content, order_index, created_at
		FROM lessons
		WHERE id = $1
	`

	row := r.conn.QueryRow(ctx, query, id)
	return scanLesson(row)
}

// ListByCourse returns the course's lessons in order.
func (r *LessonRepository) ListByCourse(ctx context.Context, courseID string) ([]*course.Lesson, error) {
	query := `
		SELECT id, course_id, title, content, order_index, created_at
		FROM lessons
		WHERE course_id = $1
		ORDER BY order_index
	`

	return r.queryLessons(ctx, query, courseID)
}

// ListBefore returns lessons with a smaller order index, in order.
func (r *LessonRepository) ListBefore(ctx context.Context, courseID string, orderIndex int) ([]*course.Lesson, error) {
	query := `
		SELECT id, course_id, title, content, order_index, created_at
		FROM lessons
		WHERE course_id = $1 AND order_index < $2
		ORDER BY order_index
	`

	return r.queryLessons(ctx, query, courseID, orderIndex)
}

// CountByCourse returns the number of lessons in a course.
func (r *LessonRepository) CountByCourse(ctx context.Context, courseID string) (int, error) {
	query := `SELECT COUNT(*) FROM lessons WHERE course_id = $1`

	var count int
	if err := r.conn.QueryRow(ctx, query, courseID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count lessons: %w", err)
	}
	return count, nil
}

func (r *LessonRepository) queryLessons(ctx context.Context, query string, args ...interface{}) ([]*course.Lesson, error) {
	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query lessons: %w", err)
	}
	defer rows.Close()

	lessons := make([]*course.Lesson, 0)
	for rows.Next() {
		var l course.Lesson
		if err := rows.Scan(&l.ID, &l.CourseID, &l.Title, &l.Content, &l.OrderIndex, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan lesson row: %w", err)
		}
		lessons = append(lessons, &l)
	}
	return lessons, rows.Err()
}

func scanLesson(row pgx.Row) (*course.Lesson, error) {
	var l course.Lesson

	err := row.Scan(&l.ID, &l.CourseID, &l.Title, &l.Content, &l.OrderIndex, &l.CreatedAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrLessonNotFound
		}
		return nil, fmt.Errorf("failed to scan lesson: %w", err)
	}
	return &l, nil
}

package enrollment

import (
	"context"

	"github.com/learnhub/progress-hub/internal/domain/course"
)

// Repository определяет операции чтения записей о зачислении.
type Repository interface {
	// Exists проверяет, зачислен ли пользователь на курс.
	Exists(ctx context.Context, userID, courseID string) (bool, error)

	// CountByCourse возвращает текущее количество зачислений на курс.
	CountByCourse(ctx context.Context, courseID string) (int, error)

	// ListByUser возвращает зачисления пользователя по возрастанию даты.
	ListByUser(ctx context.Context, userID string) ([]*Enrollment, error)
}

// TxStore is the write handle scoped to one open enrollment transaction.
// LockCourse must be called before counting: the FOR UPDATE lock on the course
// row serializes concurrent enrollments into the same course, so the recount
// that follows sees every committed row.
type TxStore interface {
	// LockCourse loads the course row under SELECT ... FOR UPDATE.
	// Returns shared.ErrCourseNotFound if the course does not exist.
	LockCourse(ctx context.Context, courseID string) (*course.Course, error)

	// CountByCourse recounts enrollments inside the transaction.
	CountByCourse(ctx context.Context, courseID string) (int, error)

	// Insert creates the enrollment row.
	// Returns shared.ErrAlreadyEnrolled on a (user, course) unique violation.
	Insert(ctx context.Context, e *Enrollment) error
}

// Atomic runs a function inside one database transaction.
type Atomic interface {
	// WithinTx commits if fn returns nil, rolls back otherwise.
	WithinTx(ctx context.Context, fn func(tx TxStore) error) error
}

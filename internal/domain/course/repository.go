package course

import (
	"context"

	"github.com/learnhub/progress-hub/internal/domain/shared"
)

// Repository определяет контракт хранилища курсов.
type Repository interface {
	// Create создаёт новый курс.
	Create(ctx context.Context, c *Course) error

	// GetByID возвращает курс по ID.
	// Возвращает shared.ErrCourseNotFound, если курс не найден.
	GetByID(ctx context.Context, id string) (*Course, error)

	// Exists проверяет существование курса по ID.
	Exists(ctx context.Context, id string) (bool, error)

	// ListWithRemainingSeats возвращает каталог курсов с количеством
	// свободных мест, отсортированный по дате создания.
	ListWithRemainingSeats(ctx context.Context, p shared.Pagination) ([]*CourseWithSeats, error)
}

// LessonRepository определяет контракт хранилища уроков.
type LessonRepository interface {
	// Create создаёт новый урок.
	Create(ctx context.Context, l *Lesson) error

	// GetByID возвращает урок по ID.
	// Возвращает shared.ErrLessonNotFound, если урок не найден.
	GetByID(ctx context.Context, id string) (*Lesson, error)

	// ListByCourse возвращает уроки курса по возрастанию order_index.
	ListByCourse(ctx context.Context, courseID string) ([]*Lesson, error)

	// ListBefore возвращает уроки курса с order_index меньше указанного,
	// по возрастанию order_index.
	ListBefore(ctx context.Context, courseID string, orderIndex int) ([]*Lesson, error)

	// CountByCourse возвращает количество уроков в курсе.
	CountByCourse(ctx context.Context, courseID string) (int, error)
}

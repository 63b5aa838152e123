package progress

import (
	"context"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Эти интерфейсы определяют контракт для работы с хранилищем данных.
// Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет операции чтения прогресса.
type Repository interface {
	// GetByID возвращает прогресс по ID.
	// Возвращает shared.ErrProgressNotFound, если запись не найдена.
	GetByID(ctx context.Context, id string) (*Progress, error)

	// GetByRequestID возвращает прогресс, созданный запросом с данным request ID.
	// Возвращает shared.ErrProgressNotFound, если запись не найдена.
	GetByRequestID(ctx context.Context, requestID string) (*Progress, error)

	// GetByUserAndLesson возвращает прогресс пары (user, lesson).
	// Возвращает shared.ErrProgressNotFound, если запись не найдена.
	GetByUserAndLesson(ctx context.Context, userID, lessonID string) (*Progress, error)

	// ListByUserAndCourse возвращает прогресс пользователя по всем урокам курса.
	ListByUserAndCourse(ctx context.Context, userID, courseID string) ([]*Progress, error)

	// ExistsByRequestID проверяет, был ли request ID уже использован.
	ExistsByRequestID(ctx context.Context, requestID string) (bool, error)
}

// HistoryRepository определяет операции чтения истории прогресса.
type HistoryRepository interface {
	// ListByUserAndLesson возвращает историю в хронологическом порядке.
	ListByUserAndLesson(ctx context.Context, userID, lessonID string) ([]HistoryEntry, error)

	// ListByProgress возвращает историю одной записи прогресса.
	ListByProgress(ctx context.Context, progressID string) ([]HistoryEntry, error)
}

// TxStore is the write handle scoped to one open transaction. A progress write
// and its history entry always travel through the same TxStore instance, so
// they commit or roll back together.
type TxStore interface {
	// Insert creates a new progress row.
	// Returns shared.ErrAlreadyExists on a (user, lesson) unique violation.
	Insert(ctx context.Context, p *Progress) error

	// Update persists a status transition on an existing row.
	Update(ctx context.Context, p *Progress) error

	// AppendHistory appends one history entry.
	AppendHistory(ctx context.Context, entry HistoryEntry) error
}

// Atomic runs a function inside one database transaction.
type Atomic interface {
	// WithinTx commits if fn returns nil, rolls back otherwise.
	WithinTx(ctx context.Context, fn func(tx TxStore) error) error
}

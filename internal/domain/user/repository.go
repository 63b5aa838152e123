package user

import (
	"context"

	"github.com/learnhub/progress-hub/internal/domain/shared"
)

// Repository определяет контракт хранилища пользователей.
// Реализация находится в infrastructure/persistence.
type Repository interface {
	// Create создаёт нового пользователя.
	// Возвращает shared.ErrUserAlreadyExists при конфликте email.
	Create(ctx context.Context, u *User) error

	// GetByID возвращает пользователя по ID.
	// Возвращает shared.ErrUserNotFound, если пользователь не найден.
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByEmail возвращает пользователя по email.
	// Возвращает shared.ErrUserNotFound, если пользователь не найден.
	GetByEmail(ctx context.Context, email shared.Email) (*User, error)

	// Exists проверяет существование пользователя по ID.
	Exists(ctx context.Context, id string) (bool, error)

	// List возвращает пользователей с пагинацией.
	List(ctx context.Context, p shared.Pagination) ([]*User, error)
}

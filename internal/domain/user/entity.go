// Package user contains the user entity and its repository contract.
package user

import (
	"time"

	"github.com/google/uuid"

	"github.com/learnhub/progress-hub/internal/domain/shared"
)

// User is a learner account. Authentication is out of scope; the entity
// carries no credential.
type User struct {
	ID        string
	Email     shared.Email
	Name      string
	CreatedAt time.Time
}

// New creates a new User with a validated, normalized email.
func New(email, name string) (*User, error) {
	addr, err := shared.NewEmail(email)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, shared.NewDomainError("user", "New", shared.ErrEmptyValue, "name is required")
	}

	return &User{
		ID:        uuid.NewString(),
		Email:     addr,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}, nil
}

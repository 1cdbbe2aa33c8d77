package repository

import (
	"context"

	"github.com/ErlanBelekov/diary-service/internal/domain"
)

type UserRepository interface {
	// Create stores a new user. Returns domain.ErrEmailTaken when the email
	// is already registered.
	Create(ctx context.Context, email, passwordHash string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	// Delete removes the user together with every diary they own.
	Delete(ctx context.Context, id int64) error
}

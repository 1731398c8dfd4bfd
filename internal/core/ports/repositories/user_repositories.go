package repositories

import (
	"context"

	"github.com/paydesk/paydesk_backend/internal/core/domain"
)

// UserReader defines read operations for user data
type UserReader interface {
	// FindUserByID retrieves a user by their unique identifier.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	// FindUserByEmail retrieves a user by their login email.
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// ListUsers retrieves all users ordered by name.
	ListUsers(ctx context.Context) ([]domain.User, error)

	// FindFirstActiveAdmin retrieves the lowest-id admin that is not blocked.
	// Used as the acting user for system-initiated changes like file pruning.
	FindFirstActiveAdmin(ctx context.Context) (*domain.User, error)
}

// UserWriter defines write operations for user data
type UserWriter interface {
	// SaveUser persists a new user.
	SaveUser(ctx context.Context, user domain.User) error

	// UpdateUser updates an existing user.
	UpdateUser(ctx context.Context, user domain.User) error
}

// UserRepositoryFacade combines all user-related repository interfaces
type UserRepositoryFacade interface {
	UserReader
	UserWriter
}
